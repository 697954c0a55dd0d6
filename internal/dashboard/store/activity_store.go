package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rdmelo/perdesk/internal/dashboard/gateway"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"go.uber.org/zap"
)

// ActivityPageSize matches the five-row activity widget on the dashboard
// home page.
const ActivityPageSize = 5

// ActivityState is a point-in-time copy of the activity store.
type ActivityState struct {
	Entries     []*models.ActivityLog
	Loading     bool
	Err         string
	CurrentPage int
	PageSize    int
	TotalCount  int64
	TotalPages  int
}

// ActivityStore is the read-only paginated store over the activity log.
// FetchPage is its only entry point; entries are immutable once fetched.
type ActivityStore struct {
	mu     sync.Mutex
	gw     gateway.ActivityGateway
	logger *zap.Logger
	psize  int

	seq uint64

	entries     []*models.ActivityLog
	loading     bool
	errMsg      string
	currentPage int
	totalCount  int64
	totalPages  int
}

// NewActivityStore constructs an ActivityStore over the activity gateway.
func NewActivityStore(gw gateway.ActivityGateway, logger *zap.Logger) *ActivityStore {
	return &ActivityStore{
		gw:          gw,
		logger:      logger.Named("activity_store"),
		psize:       ActivityPageSize,
		currentPage: 1,
	}
}

// FetchPage loads one page of activity entries, newest first. The same
// sequencing rule as the entity stores applies: only the latest issued
// fetch may update the state.
func (s *ActivityStore) FetchPage(ctx context.Context, page int) ([]*models.ActivityLog, error) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	entries, total, err := s.gw.ListActivities(ctx, (page-1)*s.psize, s.psize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.logger.Debug("discarding stale activity fetch", zap.Int("page", page))
		return entries, err
	}
	s.loading = false
	if err != nil {
		s.errMsg = "failed to fetch activity"
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	s.entries = entries
	s.totalCount = total
	s.totalPages = pages(total, s.psize)
	s.currentPage = page
	return entries, nil
}

// PageSize returns the fixed page size of the activity store.
func (s *ActivityStore) PageSize() int {
	return s.psize
}

// Snapshot returns a copy of the current activity state.
func (s *ActivityStore) Snapshot() ActivityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*models.ActivityLog, len(s.entries))
	copy(entries, s.entries)
	return ActivityState{
		Entries:     entries,
		Loading:     s.loading,
		Err:         s.errMsg,
		CurrentPage: s.currentPage,
		PageSize:    s.psize,
		TotalCount:  s.totalCount,
		TotalPages:  s.totalPages,
	}
}

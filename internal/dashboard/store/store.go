// Package store implements the view-state layer behind the dashboard: one
// paginated, searchable container per entity type, a read-only activity
// store, and the client-to-filings relationship view. Stores talk to the
// backend only through the gateway interfaces and are the single source of
// truth for the currently visible page.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	e "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"github.com/rdmelo/perdesk/internal/dashboard/gateway"
	"go.uber.org/zap"
)

// Mode distinguishes a paged listing from an unpaged search result, so the
// presentation layer never has to guess what Items currently holds.
type Mode string

const (
	// ModePaged means Items is the slice of the current page and the
	// pagination fields are authoritative.
	ModePaged Mode = "paged"
	// ModeSearch means Items is an unpaginated search result; CurrentPage
	// and TotalPages describe the last paged fetch, not Items.
	ModeSearch Mode = "search"
)

// State is a point-in-time copy of a store for the presentation layer.
type State[T gateway.Entity] struct {
	Items       []T
	Selected    T
	HasSelected bool
	Loading     bool
	Err         string
	Mode        Mode
	CurrentPage int
	PageSize    int
	TotalCount  int64
	TotalPages  int
}

// Store is a generic paginated entity container. Fetch and search
// completions carry a sequence number and only apply while still the
// latest issued, so a slow page-1 response can never overwrite a newer
// page-2 response.
type Store[T gateway.Entity, P gateway.Entity] struct {
	mu     sync.Mutex
	coll   gateway.Collection[T, P]
	logger *zap.Logger
	name   string
	psize  int

	seq uint64 // latest issued fetch/search sequence

	items       []T
	selected    T
	hasSelected bool
	loading     bool
	errMsg      string
	mode        Mode
	currentPage int
	totalCount  int64
	totalPages  int
}

// New constructs a Store over the given collection. name is the plural
// entity name used in error messages ("clients", "perdcomps").
func New[T gateway.Entity, P gateway.Entity](
	coll gateway.Collection[T, P],
	name string,
	pageSize int,
	logger *zap.Logger,
) *Store[T, P] {
	return &Store[T, P]{
		coll:        coll,
		logger:      logger.Named(name + "_store"),
		name:        name,
		psize:       pageSize,
		mode:        ModePaged,
		currentPage: 1,
	}
}

// Snapshot returns a copy of the current store state.
func (s *Store[T, P]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return State[T]{
		Items:       items,
		Selected:    s.selected,
		HasSelected: s.hasSelected,
		Loading:     s.loading,
		Err:         s.errMsg,
		Mode:        s.mode,
		CurrentPage: s.currentPage,
		PageSize:    s.psize,
		TotalCount:  s.totalCount,
		TotalPages:  s.totalPages,
	}
}

// CurrentPage returns the page of the last applied paged fetch.
func (s *Store[T, P]) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// PageSize returns the fixed page size of this store.
func (s *Store[T, P]) PageSize() int {
	return s.psize
}

// FetchPage loads one page of entities together with the total count and
// replaces the visible slice. An out-of-range page yields an empty slice
// without error. On failure the previous items stay visible and the error
// is both recorded in state and returned.
func (s *Store[T, P]) FetchPage(ctx context.Context, page int) ([]T, error) {
	if page < 1 {
		page = 1
	}
	seq := s.begin()

	items, total, err := s.coll.List(ctx, (page-1)*s.psize, s.psize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		// A newer fetch or search was issued while this one was in
		// flight; its result must not overwrite the newer state.
		s.logger.Debug("discarding stale fetch", zap.Int("page", page))
		return items, err
	}
	s.loading = false
	if err != nil {
		s.errMsg = fmt.Sprintf("failed to fetch %s", s.name)
		return nil, fmt.Errorf("failed to list %s: %w", s.name, err)
	}
	s.items = items
	s.totalCount = total
	s.totalPages = pages(total, s.psize)
	s.currentPage = page
	s.mode = ModePaged
	return items, nil
}

// Search performs a backend substring match and switches the store into
// search mode. An empty query falls back to re-fetching the current page.
func (s *Store[T, P]) Search(ctx context.Context, query string) ([]T, error) {
	if strings.TrimSpace(query) == "" {
		return s.FetchPage(ctx, s.CurrentPage())
	}
	seq := s.begin()

	items, err := s.coll.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.logger.Debug("discarding stale search", zap.String("query", query))
		return items, err
	}
	s.loading = false
	if err != nil {
		s.errMsg = "search failed"
		return nil, fmt.Errorf("failed to search %s: %w", s.name, err)
	}
	s.items = items
	s.mode = ModeSearch
	return items, nil
}

// FetchByID loads a single entity into the selection.
func (s *Store[T, P]) FetchByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	s.setLoading()

	item, err := s.coll.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = fmt.Sprintf("failed to fetch %s", s.name)
		if errors.Is(err, e.ErrNotFound) {
			return zero, err
		}
		return zero, fmt.Errorf("failed to get %s: %w", s.name, err)
	}
	s.selected = item
	s.hasSelected = true
	return item, nil
}

// Create inserts the entity, makes it visible in the current slice and
// re-derives the pagination counters from a fresh backend count.
func (s *Store[T, P]) Create(ctx context.Context, row T) (T, error) {
	var zero T
	s.setLoading()

	if err := s.coll.Insert(ctx, row); err != nil {
		s.fail(fmt.Sprintf("failed to create %s", s.name))
		if errors.Is(err, e.ErrDuplicateCNPJ) || errors.Is(err, e.ErrInvalidInput) {
			return zero, err
		}
		return zero, fmt.Errorf("failed to create %s: %w", s.name, err)
	}

	total, countErr := s.coll.Count(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = ""
	s.items = append(s.items, row)
	if countErr != nil {
		s.logger.Warn("count refresh after create failed", zap.Error(countErr))
	} else {
		s.totalCount = total
		s.totalPages = pages(total, s.psize)
	}
	return row, nil
}

// Update applies a partial patch and refreshes the matching item and the
// selection.
func (s *Store[T, P]) Update(ctx context.Context, patch P) (T, error) {
	var zero T
	if patch.EntityID() == uuid.Nil {
		return zero, fmt.Errorf("%w: missing id", e.ErrInvalidInput)
	}
	s.setLoading()

	updated, err := s.coll.Update(ctx, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = fmt.Sprintf("failed to update %s", s.name)
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrDuplicateCNPJ) {
			return zero, err
		}
		return zero, fmt.Errorf("failed to update %s: %w", s.name, err)
	}
	s.errMsg = ""
	for i, item := range s.items {
		if item.EntityID() == updated.EntityID() {
			s.items[i] = updated
			break
		}
	}
	if s.hasSelected && s.selected.EntityID() == updated.EntityID() {
		s.selected = updated
	}
	return updated, nil
}

// Delete removes the entity, drops it from the visible slice, clears a
// matching selection and re-derives the pagination counters.
func (s *Store[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	s.setLoading()

	if err := s.coll.Delete(ctx, id); err != nil {
		s.fail(fmt.Sprintf("failed to delete %s", s.name))
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete %s: %w", s.name, err)
	}

	total, countErr := s.coll.Count(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = ""
	kept := s.items[:0]
	for _, item := range s.items {
		if item.EntityID() != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	if s.hasSelected && s.selected.EntityID() == id {
		var zero T
		s.selected = zero
		s.hasSelected = false
	}
	if countErr != nil {
		s.logger.Warn("count refresh after delete failed", zap.Error(countErr))
	} else {
		s.totalCount = total
		s.totalPages = pages(total, s.psize)
	}
	return nil
}

// SetSelected replaces the selection without a backend call.
func (s *Store[T, P]) SetSelected(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = item
	s.hasSelected = true
}

// ClearSelected drops the selection.
func (s *Store[T, P]) ClearSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.selected = zero
	s.hasSelected = false
}

// begin issues a new fetch/search sequence number and flips the store into
// its loading state.
func (s *Store[T, P]) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.loading = true
	s.errMsg = ""
	return s.seq
}

func (s *Store[T, P]) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
}

func (s *Store[T, P]) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = msg
}

func pages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

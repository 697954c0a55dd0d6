package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"github.com/rdmelo/perdesk/internal/dashboard/store"
	"go.uber.org/zap"
)

// ActivityController is the read-only store surface behind /api/activity.
type ActivityController interface {
	FetchPage(ctx context.Context, page int) ([]*models.ActivityLog, error)
	Snapshot() store.ActivityState
}

// ActivityHandler serves the activity log feed.
type ActivityHandler struct {
	store  ActivityController
	logger *zap.Logger
}

// NewActivityHandler constructs an ActivityHandler with the given store
// and logger.
func NewActivityHandler(store ActivityController, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		store:  store,
		logger: logger.Named("activity_handler"),
	}
}

// List returns one page of activity entries, newest first.
func (h *ActivityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	entries, err := h.store.FetchPage(c.Request.Context(), page)
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, listResponse{
		Results:    entries,
		Count:      snap.TotalCount,
		Page:       page,
		TotalPages: snap.TotalPages,
		Mode:       string(store.ModePaged),
	})
}

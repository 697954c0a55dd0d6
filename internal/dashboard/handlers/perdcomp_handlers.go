package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"github.com/rdmelo/perdesk/internal/dashboard/store"
	"go.uber.org/zap"
)

// PerdCompController is the store surface the filing handlers invoke.
type PerdCompController interface {
	FetchPage(ctx context.Context, page int) ([]*models.PerdComp, error)
	Search(ctx context.Context, query string) ([]*models.PerdComp, error)
	FetchByID(ctx context.Context, id uuid.UUID) (*models.PerdComp, error)
	Create(ctx context.Context, filing *models.PerdComp) (*models.PerdComp, error)
	Update(ctx context.Context, patch *models.PerdCompUpdate) (*models.PerdComp, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FilingsForClient(ctx context.Context, clientID uuid.UUID) ([]*models.PerdComp, error)
	Snapshot() store.State[*models.PerdComp]
}

// PerdCompHandler serves the /api/perdcomps routes and the per-client
// filings view.
type PerdCompHandler struct {
	store  PerdCompController
	logger *zap.Logger
}

// NewPerdCompHandler constructs a PerdCompHandler with the given store and
// logger.
func NewPerdCompHandler(store PerdCompController, logger *zap.Logger) *PerdCompHandler {
	return &PerdCompHandler{
		store:  store,
		logger: logger.Named("perdcomp_handler"),
	}
}

// List returns one page of filings, or an unpaged search result when the
// search query parameter is present.
func (h *PerdCompHandler) List(c *gin.Context) {
	if query := c.Query("search"); query != "" {
		results, err := h.store.Search(c.Request.Context(), query)
		if err != nil {
			mapServiceError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{
			Results:    results,
			Count:      int64(len(results)),
			Page:       1,
			TotalPages: 1,
			Mode:       string(store.ModeSearch),
		})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	results, err := h.store.FetchPage(c.Request.Context(), page)
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, listResponse{
		Results:    results,
		Count:      snap.TotalCount,
		Page:       page,
		TotalPages: snap.TotalPages,
		Mode:       string(store.ModePaged),
	})
}

// ListByClient returns every filing of one client, newest first.
func (h *PerdCompHandler) ListByClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	filings, err := h.store.FilingsForClient(c.Request.Context(), id)
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{
		Results:    filings,
		Count:      int64(len(filings)),
		Page:       1,
		TotalPages: 1,
		Mode:       string(store.ModePaged),
	})
}

// Get fetches a single filing by id.
func (h *PerdCompHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	filing, err := h.store.FetchByID(c.Request.Context(), id)
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, filing)
}

// Create registers a new filing.
func (h *PerdCompHandler) Create(c *gin.Context) {
	var req perdcompRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filing, err := req.toModel()
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	created, err := h.store.Create(c.Request.Context(), filing)
	if err != nil {
		h.logger.Error("Create perdcomp failed", zap.Error(err))
		mapServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update applies a partial patch to an existing filing.
func (h *PerdCompHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req perdcompUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch, err := req.toModel(id)
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	updated, err := h.store.Update(c.Request.Context(), patch)
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a filing by id.
func (h *PerdCompHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

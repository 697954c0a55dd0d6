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

// ClientController is the store surface the client handlers invoke.
type ClientController interface {
	FetchPage(ctx context.Context, page int) ([]*models.Client, error)
	Search(ctx context.Context, query string) ([]*models.Client, error)
	FetchByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	Update(ctx context.Context, patch *models.ClientUpdate) (*models.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Snapshot() store.State[*models.Client]
}

// ClientHandler serves the /api/clients routes.
type ClientHandler struct {
	store  ClientController
	logger *zap.Logger
}

// NewClientHandler constructs a ClientHandler with the given store and
// logger.
func NewClientHandler(store ClientController, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		store:  store,
		logger: logger.Named("client_handler"),
	}
}

// List returns one page of clients, or an unpaged search result when the
// search query parameter is present.
func (h *ClientHandler) List(c *gin.Context) {
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

// Get fetches a single client by id.
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	client, err := h.store.FetchByID(c.Request.Context(), id)
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// Create registers a new client.
func (h *ClientHandler) Create(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.store.Create(c.Request.Context(), req.toModel())
	if err != nil {
		h.logger.Error("Create client failed", zap.Error(err))
		mapServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update applies a partial patch to an existing client.
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req clientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.store.Update(c.Request.Context(), req.toModel(id))
	if err != nil {
		mapServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a client by id.
func (h *ClientHandler) Delete(c *gin.Context) {
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

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	e "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"github.com/rdmelo/perdesk/internal/dashboard/events"
	"github.com/rdmelo/perdesk/internal/dashboard/gateway"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"go.uber.org/zap"
)

// PerdCompStore manages the visible page of PER/DCOMP filings. Filings are
// ordered newest first; each one belongs to exactly one client.
type PerdCompStore struct {
	*Store[*models.PerdComp, *models.PerdCompUpdate]
	gw       gateway.PerdCompGateway
	producer EventProducer
	logger   *zap.Logger
}

// NewPerdCompStore constructs a PerdCompStore with a gateway binding, an
// event producer and a logger.
func NewPerdCompStore(gw gateway.PerdCompGateway, producer EventProducer, logger *zap.Logger) *PerdCompStore {
	return &PerdCompStore{
		Store:    New[*models.PerdComp, *models.PerdCompUpdate](gw, "perdcomps", DefaultPageSize, logger),
		gw:       gw,
		producer: producer,
		logger:   logger.Named("perdcomp_store"),
	}
}

// Create validates the filing, defaults its status to PENDENTE, assigns an
// id and inserts it.
func (s *PerdCompStore) Create(ctx context.Context, filing *models.PerdComp) (*models.PerdComp, error) {
	if filing.ClientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client_id required", e.ErrInvalidInput)
	}
	if filing.Numero == "" {
		return nil, fmt.Errorf("%w: numero required", e.ErrInvalidInput)
	}
	if filing.Imposto == "" {
		return nil, fmt.Errorf("%w: imposto required", e.ErrInvalidInput)
	}
	if filing.Competencia == "" {
		return nil, fmt.Errorf("%w: competencia required", e.ErrInvalidInput)
	}
	if filing.Status == "" {
		filing.Status = models.StatusPendente
	}
	if !models.ValidStatus(filing.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, filing.Status)
	}

	filing.ID = uuid.New()
	created, err := s.Store.Create(ctx, filing)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.PerdCompCreated, filingRef(created), filingMetadata(created))
	}()
	return created, nil
}

// Update applies a partial patch to a filing.
func (s *PerdCompStore) Update(ctx context.Context, patch *models.PerdCompUpdate) (*models.PerdComp, error) {
	if patch.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid perdcomp ID", e.ErrInvalidInput)
	}
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, *patch.Status)
	}
	if patch.ClientID != nil && *patch.ClientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client_id cannot be cleared", e.ErrInvalidInput)
	}

	updated, err := s.Store.Update(ctx, patch)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.PerdCompUpdated, filingRef(updated), filingMetadata(updated))
	}()
	return updated, nil
}

// Delete removes a filing by id and fires a deletion event.
func (s *PerdCompStore) Delete(ctx context.Context, id uuid.UUID) error {
	filing, err := s.gw.Get(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get perdcomp for deletion: %w", err)
	}

	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}

	go func() {
		s.producer.Produce(events.PerdCompDeleted, filingRef(filing), filingMetadata(filing))
	}()
	return nil
}

// FilingsForClient is the client-detail relationship view: every filing of
// one client, newest first, without pagination. A client with no filings
// yields an empty slice, not an error. The paged store state is left
// untouched.
func (s *PerdCompStore) FilingsForClient(ctx context.Context, clientID uuid.UUID) ([]*models.PerdComp, error) {
	filings, err := s.gw.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list filings for client: %w", err)
	}
	if filings == nil {
		filings = []*models.PerdComp{}
	}
	return filings, nil
}

func filingRef(filing *models.PerdComp) events.EntityRef {
	return events.EntityRef{
		Type: "perdcomp",
		ID:   filing.ID,
		Name: filing.Numero,
	}
}

func filingMetadata(filing *models.PerdComp) map[string]string {
	return map[string]string{
		"client_id": filing.ClientID.String(),
		"status":    string(filing.Status),
	}
}

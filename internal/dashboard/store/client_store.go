package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	e "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"github.com/rdmelo/perdesk/internal/dashboard/events"
	"github.com/rdmelo/perdesk/internal/dashboard/gateway"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"go.uber.org/zap"
)

// EventProducer publishes audit events for store mutations.
type EventProducer interface {
	Produce(eventType events.EventType, entity events.EntityRef, metadata map[string]string)
}

// DefaultPageSize is the page size of the client and filing stores.
const DefaultPageSize = 10

var cnpjPattern = regexp.MustCompile(`^[0-9]{14}$`)

// ClientStore manages the visible page of clients and validates mutations
// before they reach the gateway. Every successful mutation emits an audit
// event.
type ClientStore struct {
	*Store[*models.Client, *models.ClientUpdate]
	gw       gateway.ClientGateway
	producer EventProducer
	logger   *zap.Logger
}

// NewClientStore constructs a ClientStore with a gateway binding, an event
// producer and a logger.
func NewClientStore(gw gateway.ClientGateway, producer EventProducer, logger *zap.Logger) *ClientStore {
	return &ClientStore{
		Store:    New[*models.Client, *models.ClientUpdate](gw, "clients", DefaultPageSize, logger),
		gw:       gw,
		producer: producer,
		logger:   logger.Named("client_store"),
	}
}

// Create validates the new client, enforces CNPJ uniqueness, assigns an id
// and inserts it through the gateway.
func (s *ClientStore) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := validateClient(client); err != nil {
		return nil, err
	}

	exists, err := s.gw.ExistsByCNPJ(ctx, client.CNPJ)
	if err != nil {
		return nil, fmt.Errorf("failed to check cnpj existence: %w", err)
	}
	if exists {
		return nil, e.ErrDuplicateCNPJ
	}

	client.ID = uuid.New()
	created, err := s.Store.Create(ctx, client)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.ClientCreated, clientRef(created), nil)
	}()
	return created, nil
}

// Update applies a partial patch to a client.
func (s *ClientStore) Update(ctx context.Context, patch *models.ClientUpdate) (*models.Client, error) {
	if patch.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid client ID", e.ErrInvalidInput)
	}
	if patch.CNPJ != nil && !cnpjPattern.MatchString(*patch.CNPJ) {
		return nil, fmt.Errorf("%w: malformed cnpj", e.ErrInvalidInput)
	}
	if patch.RazaoSocial != nil && *patch.RazaoSocial == "" {
		return nil, fmt.Errorf("%w: razao_social cannot be empty", e.ErrInvalidInput)
	}

	updated, err := s.Store.Update(ctx, patch)
	if err != nil {
		return nil, err
	}
	go func() {
		s.producer.Produce(events.ClientUpdated, clientRef(updated), nil)
	}()
	return updated, nil
}

// Delete removes a client by id and fires a deletion event carrying the
// client's name.
func (s *ClientStore) Delete(ctx context.Context, id uuid.UUID) error {
	client, err := s.gw.Get(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get client for deletion: %w", err)
	}

	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}

	go func() {
		s.producer.Produce(events.ClientDeleted, clientRef(client), nil)
	}()
	return nil
}

func validateClient(client *models.Client) error {
	if !cnpjPattern.MatchString(client.CNPJ) {
		return fmt.Errorf("%w: cnpj must be 14 digits", e.ErrInvalidInput)
	}
	if client.RazaoSocial == "" || len(client.RazaoSocial) > 255 {
		return fmt.Errorf("%w: invalid razao_social", e.ErrInvalidInput)
	}
	if client.NomeFantasia == "" {
		return fmt.Errorf("%w: nome_fantasia required", e.ErrInvalidInput)
	}
	if client.TipoEmpresa == "" {
		return fmt.Errorf("%w: tipo_empresa required", e.ErrInvalidInput)
	}
	return nil
}

func clientRef(client *models.Client) events.EntityRef {
	return events.EntityRef{
		Type: "client",
		ID:   client.ID,
		Name: client.DisplayName(),
	}
}

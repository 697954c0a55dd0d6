// Package gateway defines the abstract backend-access contract the store
// layer is written against. Two concrete bindings exist: a GORM/Postgres
// repository (internal/dashboard/db) and a token-authenticated REST client
// (internal/dashboard/rest). Stores must depend only on these interfaces.
package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
)

// Entity is anything with a stable UUID identity.
type Entity interface {
	EntityID() uuid.UUID
}

// Collection is the per-entity surface every binding must expose.
// List returns the requested slice together with the total row count so
// callers can derive pagination without a second round trip. Update applies
// a partial patch and returns the resulting row.
type Collection[T Entity, P Entity] interface {
	List(ctx context.Context, offset, limit int) ([]T, int64, error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Insert(ctx context.Context, row T) error
	Update(ctx context.Context, patch P) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]T, error)
	Count(ctx context.Context) (int64, error)
}

// ClientGateway is the Collection contract for clients plus the CNPJ
// uniqueness probe used on create.
type ClientGateway interface {
	Collection[*models.Client, *models.ClientUpdate]
	ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error)
}

// PerdCompGateway is the Collection contract for filings plus the
// client-detail relationship view: every filing of one client, newest
// first, unpaginated.
type PerdCompGateway interface {
	Collection[*models.PerdComp, *models.PerdCompUpdate]
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.PerdComp, error)
}

// ActivityGateway exposes the append-only activity log. The log has no
// update or delete operations.
type ActivityGateway interface {
	ListActivities(ctx context.Context, offset, limit int) ([]*models.ActivityLog, int64, error)
	AppendActivity(ctx context.Context, entry *models.ActivityLog) error
}

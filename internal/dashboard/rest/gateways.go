package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/rdmelo/perdesk/internal/dashboard/gateway"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
)

// listEnvelope is the shape every list endpoint of the API returns.
type listEnvelope[T any] struct {
	Results []T   `json:"results"`
	Count   int64 `json:"count"`
}

// collection implements the generic Collection contract over one API
// resource. The API is page based, so List translates offset/limit into a
// page number; stores always request whole pages, which keeps the division
// exact.
type collection[T gateway.Entity, P gateway.Entity] struct {
	b    *Binding
	path string
}

func (c *collection[T, P]) List(ctx context.Context, offset, limit int) ([]T, int64, error) {
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	query := url.Values{"page": {strconv.Itoa(page)}}
	var env listEnvelope[T]
	if err := c.b.do(ctx, http.MethodGet, c.path, query, nil, &env); err != nil {
		return nil, 0, err
	}
	return env.Results, env.Count, nil
}

func (c *collection[T, P]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var row T
	if err := c.b.do(ctx, http.MethodGet, c.path+"/"+id.String(), nil, nil, &row); err != nil {
		return row, err
	}
	return row, nil
}

func (c *collection[T, P]) Insert(ctx context.Context, row T) error {
	return c.b.do(ctx, http.MethodPost, c.path, nil, row, row)
}

func (c *collection[T, P]) Update(ctx context.Context, patch P) (T, error) {
	var row T
	id := patch.EntityID()
	if err := c.b.do(ctx, http.MethodPut, c.path+"/"+id.String(), nil, patch, &row); err != nil {
		return row, err
	}
	return row, nil
}

func (c *collection[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	return c.b.do(ctx, http.MethodDelete, c.path+"/"+id.String(), nil, nil, nil)
}

func (c *collection[T, P]) Search(ctx context.Context, query string) ([]T, error) {
	values := url.Values{"search": {query}}
	var env listEnvelope[T]
	if err := c.b.do(ctx, http.MethodGet, c.path, values, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (c *collection[T, P]) Count(ctx context.Context) (int64, error) {
	query := url.Values{"page": {"1"}}
	var env listEnvelope[T]
	if err := c.b.do(ctx, http.MethodGet, c.path, query, nil, &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

type clientCollection struct {
	collection[*models.Client, *models.ClientUpdate]
}

// ExistsByCNPJ probes for an exact CNPJ match through the search endpoint.
// Search matches substrings, so results are compared field for field.
func (c *clientCollection) ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error) {
	rows, err := c.Search(ctx, cnpj)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.CNPJ == cnpj {
			return true, nil
		}
	}
	return false, nil
}

type perdcompCollection struct {
	collection[*models.PerdComp, *models.PerdCompUpdate]
}

// ListByClient returns every filing of one client, newest first.
func (c *perdcompCollection) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.PerdComp, error) {
	path := "/api/clients/" + clientID.String() + "/perdcomps"
	var env listEnvelope[*models.PerdComp]
	if err := c.b.do(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

type activityCollection struct {
	b *Binding
}

func (c *activityCollection) ListActivities(ctx context.Context, offset, limit int) ([]*models.ActivityLog, int64, error) {
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	query := url.Values{"page": {strconv.Itoa(page)}}
	var env listEnvelope[*models.ActivityLog]
	if err := c.b.do(ctx, http.MethodGet, "/api/activity", query, nil, &env); err != nil {
		return nil, 0, err
	}
	return env.Results, env.Count, nil
}

// AppendActivity is not exposed over the API. Entries are recorded server
// side from the event stream, never by clients.
func (c *activityCollection) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	return fmt.Errorf("append activity over rest: %w", errors.ErrUnsupported)
}

// Clients returns the client resource of the API.
func (b *Binding) Clients() gateway.ClientGateway {
	return &clientCollection{collection[*models.Client, *models.ClientUpdate]{b: b, path: "/api/clients"}}
}

// Perdcomps returns the filing resource of the API.
func (b *Binding) Perdcomps() gateway.PerdCompGateway {
	return &perdcompCollection{collection[*models.PerdComp, *models.PerdCompUpdate]{b: b, path: "/api/perdcomps"}}
}

// Activities returns the read side of the activity log.
func (b *Binding) Activities() gateway.ActivityGateway {
	return &activityCollection{b: b}
}

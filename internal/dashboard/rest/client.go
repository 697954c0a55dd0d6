// Package rest is the token-authenticated HTTP binding of the gateway
// contract. It talks to a dashboard API server, sends the access token on
// every request, and on a 401 performs a single transparent refresh before
// retrying the original request once. A failed refresh surfaces as
// ErrUnauthorized; callers decide whether to re-authenticate.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	errs "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"go.uber.org/zap"
)

const (
	refreshPath    = "/api/auth/refresh"
	defaultTimeout = 15 * time.Second
)

// Config carries the connection settings of the REST binding.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Binding is a client of the dashboard API. It is safe for concurrent use;
// token state is guarded by a mutex and the refresh path is serialized.
type Binding struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger

	mu      sync.Mutex
	access  string
	refresh string
}

// New constructs a Binding against the given base URL.
func New(cfg Config, logger *zap.Logger) *Binding {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Binding{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		logger:     logger.Named("rest"),
	}
}

// SetTokens installs the access/refresh pair obtained from the
// authentication service.
func (b *Binding) SetTokens(access, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = access
	b.refresh = refresh
}

// AccessToken returns the current access token. It changes after a
// transparent refresh.
func (b *Binding) AccessToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.access
}

// do performs one API call and decodes the response into out when out is
// non-nil. Exactly one refresh-and-retry is attempted on a 401.
func (b *Binding) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	payload, err := b.roundTrip(ctx, method, path, query, body, true)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (b *Binding) roundTrip(ctx context.Context, method, path string, query url.Values, body any, allowRefresh bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Content-Type", "application/json")
	if access := b.AccessToken(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh {
		if err := b.refreshAccess(ctx); err != nil {
			return nil, err
		}
		return b.roundTrip(ctx, method, path, query, body, false)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(resp.StatusCode, method, path)
	}
	return payload, nil
}

// refreshAccess exchanges the stored refresh token for a new access token.
func (b *Binding) refreshAccess(ctx context.Context) error {
	b.mu.Lock()
	refresh := b.refresh
	b.mu.Unlock()
	if refresh == "" {
		return fmt.Errorf("no refresh token: %w", errs.ErrUnauthorized)
	}

	data, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+refreshPath, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected: %w", errs.ErrUnauthorized)
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}

	b.mu.Lock()
	b.access = out.Access
	b.mu.Unlock()
	b.logger.Debug("access token refreshed")
	return nil
}

// statusError maps an API status code onto the shared error taxonomy.
func statusError(code int, method, path string) error {
	switch code {
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrDuplicateCNPJ
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errs.ErrInvalidInput
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.ErrUnauthorized
	default:
		return fmt.Errorf("%s %s returned status %d", method, path, code)
	}
}

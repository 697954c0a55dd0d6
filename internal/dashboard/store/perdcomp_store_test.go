package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	e "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"github.com/rdmelo/perdesk/internal/dashboard/events"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"github.com/rdmelo/perdesk/internal/pkg/utils"
	"go.uber.org/zap/zaptest"
)

// mockPerdCompGateway implements the filing gateway with function fields.
type mockPerdCompGateway struct {
	list         func(context.Context, int, int) ([]*models.PerdComp, int64, error)
	get          func(context.Context, uuid.UUID) (*models.PerdComp, error)
	insert       func(context.Context, *models.PerdComp) error
	update       func(context.Context, *models.PerdCompUpdate) (*models.PerdComp, error)
	delete       func(context.Context, uuid.UUID) error
	search       func(context.Context, string) ([]*models.PerdComp, error)
	count        func(context.Context) (int64, error)
	listByClient func(context.Context, uuid.UUID) ([]*models.PerdComp, error)
}

func (m *mockPerdCompGateway) List(ctx context.Context, offset, limit int) ([]*models.PerdComp, int64, error) {
	return m.list(ctx, offset, limit)
}

func (m *mockPerdCompGateway) Get(ctx context.Context, id uuid.UUID) (*models.PerdComp, error) {
	return m.get(ctx, id)
}

func (m *mockPerdCompGateway) Insert(ctx context.Context, row *models.PerdComp) error {
	return m.insert(ctx, row)
}

func (m *mockPerdCompGateway) Update(ctx context.Context, patch *models.PerdCompUpdate) (*models.PerdComp, error) {
	return m.update(ctx, patch)
}

func (m *mockPerdCompGateway) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

func (m *mockPerdCompGateway) Search(ctx context.Context, query string) ([]*models.PerdComp, error) {
	return m.search(ctx, query)
}

func (m *mockPerdCompGateway) Count(ctx context.Context) (int64, error) {
	return m.count(ctx)
}

func (m *mockPerdCompGateway) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.PerdComp, error) {
	return m.listByClient(ctx, clientID)
}

func validNewFiling() *models.PerdComp {
	return &models.PerdComp{
		ClientID:    uuid.New(),
		Numero:      "PD-2024-0001",
		Imposto:     models.ImpostoPIS,
		Competencia: "01/2024",
	}
}

func TestPerdCompStore_Create(t *testing.T) {
	tests := []struct {
		name          string
		input         *models.PerdComp
		mockSetup     func(*mockPerdCompGateway)
		expectError   bool
		expectedError error
	}{
		{
			name:  "successful creation defaults status",
			input: validNewFiling(),
			mockSetup: func(mg *mockPerdCompGateway) {
				mg.insert = func(_ context.Context, _ *models.PerdComp) error {
					return nil
				}
				mg.count = func(_ context.Context) (int64, error) {
					return 1, nil
				}
			},
			expectError: false,
		},
		{
			name: "missing client id",
			input: func() *models.PerdComp {
				f := validNewFiling()
				f.ClientID = uuid.Nil
				return f
			}(),
			mockSetup:     func(_ *mockPerdCompGateway) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "missing numero",
			input: func() *models.PerdComp {
				f := validNewFiling()
				f.Numero = ""
				return f
			}(),
			mockSetup:     func(_ *mockPerdCompGateway) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "unknown status",
			input: func() *models.PerdComp {
				f := validNewFiling()
				f.Status = "DEFERIDO"
				return f
			}(),
			mockSetup:     func(_ *mockPerdCompGateway) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name:  "gateway error",
			input: validNewFiling(),
			mockSetup: func(mg *mockPerdCompGateway) {
				mg.insert = func(_ context.Context, _ *models.PerdComp) error {
					return errors.New("database error")
				}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zaptest.NewLogger(t)
			mockGw := &mockPerdCompGateway{}
			mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
			tt.mockSetup(mockGw)
			store := NewPerdCompStore(mockGw, mockProducer, logger)

			if !tt.expectError {
				mockProducer.wg.Add(1)
			}

			result, err := store.Create(context.Background(), tt.input)

			if !tt.expectError {
				mockProducer.wg.Wait()
			}

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.expectedError != nil && !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.ID == uuid.Nil {
					t.Error("expected filing ID to be set")
				}
				if result.Status != models.StatusPendente {
					t.Errorf("expected status defaulted to PENDENTE, got %q", result.Status)
				}
				produced := mockProducer.events()
				if len(produced) != 1 || produced[0] != events.PerdCompCreated {
					t.Errorf("expected creation event, got %v", produced)
				}
			}
		})
	}
}

func TestPerdCompStore_Update(t *testing.T) {
	testID := uuid.New()

	tests := []struct {
		name          string
		input         *models.PerdCompUpdate
		mockSetup     func(*mockPerdCompGateway)
		expectError   bool
		expectedError error
	}{
		{
			name: "successful status transition",
			input: &models.PerdCompUpdate{
				ID:     testID,
				Status: utils.Ptr(models.StatusAprovado),
			},
			mockSetup: func(mg *mockPerdCompGateway) {
				mg.update = func(_ context.Context, patch *models.PerdCompUpdate) (*models.PerdComp, error) {
					return &models.PerdComp{ID: patch.ID, ClientID: uuid.New(), Status: *patch.Status}, nil
				}
			},
			expectError: false,
		},
		{
			name:          "missing id",
			input:         &models.PerdCompUpdate{},
			mockSetup:     func(_ *mockPerdCompGateway) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "unknown status",
			input: &models.PerdCompUpdate{
				ID:     testID,
				Status: utils.Ptr(models.FilingStatus("INDEFERIDO")),
			},
			mockSetup:     func(_ *mockPerdCompGateway) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "client id cannot be cleared",
			input: &models.PerdCompUpdate{
				ID:       testID,
				ClientID: utils.Ptr(uuid.Nil),
			},
			mockSetup:     func(_ *mockPerdCompGateway) {},
			expectError:   true,
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "not found",
			input: &models.PerdCompUpdate{
				ID:     testID,
				Status: utils.Ptr(models.StatusRecusado),
			},
			mockSetup: func(mg *mockPerdCompGateway) {
				mg.update = func(_ context.Context, _ *models.PerdCompUpdate) (*models.PerdComp, error) {
					return nil, e.ErrNotFound
				}
			},
			expectError:   true,
			expectedError: e.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zaptest.NewLogger(t)
			mockGw := &mockPerdCompGateway{}
			mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
			tt.mockSetup(mockGw)
			store := NewPerdCompStore(mockGw, mockProducer, logger)

			if !tt.expectError {
				mockProducer.wg.Add(1)
			}

			_, err := store.Update(context.Background(), tt.input)

			if !tt.expectError {
				mockProducer.wg.Wait()
			}

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				produced := mockProducer.events()
				if len(produced) != 1 || produced[0] != events.PerdCompUpdated {
					t.Errorf("expected update event, got %v", produced)
				}
			}
		})
	}
}

func TestPerdCompStore_Delete(t *testing.T) {
	testID := uuid.New()
	mockGw := &mockPerdCompGateway{}
	mockGw.get = func(_ context.Context, _ uuid.UUID) (*models.PerdComp, error) {
		return &models.PerdComp{ID: testID, ClientID: uuid.New(), Numero: "PD-1"}, nil
	}
	mockGw.delete = func(_ context.Context, _ uuid.UUID) error { return nil }
	mockGw.count = func(_ context.Context) (int64, error) { return 0, nil }

	mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
	mockProducer.wg.Add(1)
	store := NewPerdCompStore(mockGw, mockProducer, zaptest.NewLogger(t))

	if err := store.Delete(context.Background(), testID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mockProducer.wg.Wait()

	produced := mockProducer.events()
	if len(produced) != 1 || produced[0] != events.PerdCompDeleted {
		t.Errorf("expected deletion event, got %v", produced)
	}
}

func TestPerdCompStore_FilingsForClient(t *testing.T) {
	clientID := uuid.New()

	t.Run("returns filings", func(t *testing.T) {
		mockGw := &mockPerdCompGateway{}
		mockGw.listByClient = func(_ context.Context, id uuid.UUID) ([]*models.PerdComp, error) {
			if id != clientID {
				t.Errorf("expected client id %v, got %v", clientID, id)
			}
			return []*models.PerdComp{
				{ID: uuid.New(), ClientID: clientID, Numero: "PD-2"},
				{ID: uuid.New(), ClientID: clientID, Numero: "PD-1"},
			}, nil
		}
		store := NewPerdCompStore(mockGw, &MockProducer{}, zaptest.NewLogger(t))

		filings, err := store.FilingsForClient(context.Background(), clientID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(filings) != 2 {
			t.Errorf("expected 2 filings, got %d", len(filings))
		}
	})

	t.Run("no filings yields empty slice", func(t *testing.T) {
		mockGw := &mockPerdCompGateway{}
		mockGw.listByClient = func(_ context.Context, _ uuid.UUID) ([]*models.PerdComp, error) {
			return nil, nil
		}
		store := NewPerdCompStore(mockGw, &MockProducer{}, zaptest.NewLogger(t))

		filings, err := store.FilingsForClient(context.Background(), clientID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filings == nil {
			t.Fatal("expected empty slice, got nil")
		}
		if len(filings) != 0 {
			t.Errorf("expected no filings, got %d", len(filings))
		}
	})

	// The paged state must not change when the relationship view loads.
	t.Run("paged state untouched", func(t *testing.T) {
		mockGw := &mockPerdCompGateway{}
		mockGw.list = func(_ context.Context, _, _ int) ([]*models.PerdComp, int64, error) {
			return []*models.PerdComp{{ID: uuid.New(), Numero: "PD-9"}}, 1, nil
		}
		mockGw.listByClient = func(_ context.Context, _ uuid.UUID) ([]*models.PerdComp, error) {
			return []*models.PerdComp{{ID: uuid.New(), Numero: "PD-5"}}, nil
		}
		store := NewPerdCompStore(mockGw, &MockProducer{}, zaptest.NewLogger(t))

		if _, err := store.FetchPage(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		before := store.Snapshot()

		if _, err := store.FilingsForClient(context.Background(), clientID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		after := store.Snapshot()

		if len(after.Items) != len(before.Items) || after.Items[0].Numero != "PD-9" {
			t.Error("expected visible page to survive the relationship view")
		}
	})
}

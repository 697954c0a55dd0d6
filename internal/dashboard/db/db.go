// Package db implements the gateway contract on top of GORM/Postgres.
// Tests run the same code against an in-memory SQLite database, so all SQL
// here sticks to the portable subset (lower(...) LIKE instead of ILIKE).
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	e "github.com/rdmelo/perdesk/internal/dashboard/errors"
	"github.com/rdmelo/perdesk/internal/dashboard/gateway"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Client{}, &models.PerdComp{}, &models.ActivityLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Clients returns the client collection binding.
func (r *Repository) Clients() gateway.ClientGateway {
	return &clientCollection{db: r.db}
}

// Perdcomps returns the filing collection binding.
func (r *Repository) Perdcomps() gateway.PerdCompGateway {
	return &perdcompCollection{db: r.db}
}

// Activities returns the activity log binding.
func (r *Repository) Activities() gateway.ActivityGateway {
	return &activityCollection{db: r.db}
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// clientCollection implements gateway.ClientGateway.
type clientCollection struct {
	db *gorm.DB
}

func (c *clientCollection) List(ctx context.Context, offset, limit int) ([]*models.Client, int64, error) {
	var total int64
	if err := c.db.WithContext(ctx).Model(&models.Client{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	clients := []*models.Client{}
	result := c.db.WithContext(ctx).
		Order("razao_social").
		Limit(limit).
		Offset(offset).
		Find(&clients)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return clients, total, nil
}

func (c *clientCollection) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	result := c.db.WithContext(ctx).First(&client, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &client, nil
}

func (c *clientCollection) Insert(ctx context.Context, client *models.Client) error {
	result := c.db.WithContext(ctx).Create(client)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateCNPJ
		}
		return result.Error
	}
	return nil
}

func (c *clientCollection) Update(ctx context.Context, patch *models.ClientUpdate) (*models.Client, error) {
	values := clientPatchValues(patch)
	if len(values) > 0 {
		result := c.db.WithContext(ctx).Model(&models.Client{}).
			Where("id = ?", patch.ID).
			Updates(values)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return nil, e.ErrDuplicateCNPJ
			}
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, e.ErrNotFound
		}
	}
	return c.Get(ctx, patch.ID)
}

func (c *clientCollection) Delete(ctx context.Context, id uuid.UUID) error {
	result := c.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (c *clientCollection) Search(ctx context.Context, query string) ([]*models.Client, error) {
	like := "%" + lower(query) + "%"
	clients := []*models.Client{}
	result := c.db.WithContext(ctx).
		Where("lower(razao_social) LIKE ? OR lower(nome_fantasia) LIKE ? OR lower(cnpj) LIKE ? OR lower(municipio) LIKE ?",
			like, like, like, like).
		Order("razao_social").
		Find(&clients)
	if result.Error != nil {
		return nil, result.Error
	}
	return clients, nil
}

func (c *clientCollection) Count(ctx context.Context) (int64, error) {
	var total int64
	result := c.db.WithContext(ctx).Model(&models.Client{}).Count(&total)
	return total, result.Error
}

func (c *clientCollection) ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error) {
	var count int64
	result := c.db.WithContext(ctx).Model(&models.Client{}).
		Where("cnpj = ?", cnpj).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// perdcompCollection implements gateway.PerdCompGateway.
type perdcompCollection struct {
	db *gorm.DB
}

func (c *perdcompCollection) List(ctx context.Context, offset, limit int) ([]*models.PerdComp, int64, error) {
	var total int64
	if err := c.db.WithContext(ctx).Model(&models.PerdComp{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filings := []*models.PerdComp{}
	result := c.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&filings)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return filings, total, nil
}

func (c *perdcompCollection) Get(ctx context.Context, id uuid.UUID) (*models.PerdComp, error) {
	var filing models.PerdComp
	result := c.db.WithContext(ctx).First(&filing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &filing, nil
}

func (c *perdcompCollection) Insert(ctx context.Context, filing *models.PerdComp) error {
	return c.db.WithContext(ctx).Create(filing).Error
}

func (c *perdcompCollection) Update(ctx context.Context, patch *models.PerdCompUpdate) (*models.PerdComp, error) {
	values := perdcompPatchValues(patch)
	if len(values) > 0 {
		result := c.db.WithContext(ctx).Model(&models.PerdComp{}).
			Where("id = ?", patch.ID).
			Updates(values)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, e.ErrNotFound
		}
	}
	return c.Get(ctx, patch.ID)
}

func (c *perdcompCollection) Delete(ctx context.Context, id uuid.UUID) error {
	result := c.db.WithContext(ctx).Delete(&models.PerdComp{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (c *perdcompCollection) Search(ctx context.Context, query string) ([]*models.PerdComp, error) {
	like := "%" + lower(query) + "%"
	filings := []*models.PerdComp{}
	result := c.db.WithContext(ctx).
		Where("lower(numero) LIKE ? OR lower(nr_perdcomp) LIKE ? OR lower(imposto) LIKE ? OR lower(competencia) LIKE ?",
			like, like, like, like).
		Order("created_at desc").
		Find(&filings)
	if result.Error != nil {
		return nil, result.Error
	}
	return filings, nil
}

func (c *perdcompCollection) Count(ctx context.Context) (int64, error) {
	var total int64
	result := c.db.WithContext(ctx).Model(&models.PerdComp{}).Count(&total)
	return total, result.Error
}

func (c *perdcompCollection) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.PerdComp, error) {
	filings := []*models.PerdComp{}
	result := c.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&filings)
	if result.Error != nil {
		return nil, result.Error
	}
	return filings, nil
}

// activityCollection implements gateway.ActivityGateway.
type activityCollection struct {
	db *gorm.DB
}

func (c *activityCollection) ListActivities(ctx context.Context, offset, limit int) ([]*models.ActivityLog, int64, error) {
	var total int64
	if err := c.db.WithContext(ctx).Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := []*models.ActivityLog{}
	result := c.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&entries)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return entries, total, nil
}

func (c *activityCollection) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return c.db.WithContext(ctx).Create(entry).Error
}

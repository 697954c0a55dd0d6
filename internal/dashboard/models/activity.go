package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is an append-only audit record of a mutation performed
// through the dashboard. Rows are never updated or deleted.
type ActivityLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Actor      string            `gorm:"size:100" json:"actor"`
	Action     string            `gorm:"size:100" json:"action"`
	EntityType string            `gorm:"size:50;index" json:"entity_type"`
	EntityID   *uuid.UUID        `gorm:"type:uuid" json:"entity_id"`
	EntityName string            `gorm:"size:255" json:"entity_name"`
	Metadata   map[string]string `gorm:"serializer:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// LogID returns the log entry's unique identifier.
func (a *ActivityLog) LogID() uuid.UUID { return a.ID }

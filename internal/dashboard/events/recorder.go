package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rdmelo/perdesk/internal/dashboard/gateway"
	"github.com/rdmelo/perdesk/internal/dashboard/models"
	"go.uber.org/zap"
)

// AuditRecorder turns consumed audit events into activity log rows.
type AuditRecorder struct {
	activities gateway.ActivityGateway
	logger     *zap.Logger
}

func NewAuditRecorder(activities gateway.ActivityGateway, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{
		activities: activities,
		logger:     logger.Named("audit_recorder"),
	}
}

// Handle appends one activity log entry per consumed event.
func (r *AuditRecorder) Handle(ctx context.Context, event Event) error {
	entityID := event.Entity.ID
	entry := activityEntry(event, &entityID)
	if err := r.activities.AppendActivity(ctx, entry); err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	r.logger.Debug("recorded activity",
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
	)
	return nil
}

func activityEntry(event Event, entityID *uuid.UUID) *models.ActivityLog {
	return &models.ActivityLog{
		ID:         uuid.New(),
		Actor:      event.Actor,
		Action:     string(event.Type),
		EntityType: event.Entity.Type,
		EntityID:   entityID,
		EntityName: event.Entity.Name,
		Metadata:   event.Metadata,
		CreatedAt:  event.OccurredAt,
	}
}

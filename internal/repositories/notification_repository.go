package repositories

import (
	"context"

	"github.com/helmar/backend/internal/models"
)

// NotificationRepository persists notifications scoped to their recipient.
type NotificationRepository interface {
	Create(ctx context.Context, notification models.Notification) error
	ListForRecipient(ctx context.Context, principal string) ([]models.Notification, error)
	Find(ctx context.Context, id string) (models.Notification, error)
	SetRead(ctx context.Context, id string, isRead bool) error
}

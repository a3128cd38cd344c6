package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/helmar/backend/internal/models"
)

// Store persists dispatched notifications.
type Store interface {
	Create(ctx context.Context, notification models.Notification) error
}

// UsernameResolver maps a principal to its display username.
type UsernameResolver interface {
	Username(ctx context.Context, principal string) (string, error)
}

// Dispatcher derives and stores notification records from social actions.
// It is invoked by the content and social-graph surfaces and is never
// reachable as a client call.
type Dispatcher struct {
	store     Store
	usernames UsernameResolver
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher constructs a Dispatcher writing through the provided store.
func NewDispatcher(store Store, usernames UsernameResolver, logger *slog.Logger) *Dispatcher {
	if store == nil {
		panic("notify: notification store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:     store,
		usernames: usernames,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch records a notification for the recipient about the actor's action.
// Self-actions are suppressed uniformly across all notification kinds.
func (d *Dispatcher) Dispatch(ctx context.Context, kind models.NotificationKind, actor, recipient string) error {
	if recipient == "" || actor == recipient {
		return nil
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Kind:      kind,
		Message:   d.message(ctx, kind, actor),
		CreatedAt: d.now(),
	}

	if err := d.store.Create(ctx, notification); err != nil {
		return fmt.Errorf("store %s notification: %w", kind, err)
	}

	return nil
}

func (d *Dispatcher) message(ctx context.Context, kind models.NotificationKind, actor string) string {
	name := "Someone"
	if d.usernames != nil {
		if username, err := d.usernames.Username(ctx, actor); err == nil && username != "" {
			name = username
		} else if err != nil {
			d.logger.Warn("resolve actor username", "actor", actor, "error", err)
		}
	}

	switch kind {
	case models.NotificationLike:
		return fmt.Sprintf("%s liked your video", name)
	case models.NotificationComment:
		return fmt.Sprintf("%s commented on your video", name)
	case models.NotificationFollow:
		return fmt.Sprintf("%s started following you", name)
	case models.NotificationMessage:
		return fmt.Sprintf("%s sent you a message", name)
	default:
		return fmt.Sprintf("%s interacted with you", name)
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (d *Dispatcher) WithNowFunc(now func() time.Time) {
	if now != nil {
		d.now = now
	}
}

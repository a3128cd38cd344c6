package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helmar/backend/internal/db"
	"github.com/helmar/backend/internal/models"
)

// PostgresNotificationRepository provides PostgreSQL-backed persistence for notifications.
type PostgresNotificationRepository struct {
	pool db.Pool
}

// NewPostgresNotificationRepository constructs a notification repository backed by PostgreSQL.
func NewPostgresNotificationRepository(pool db.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

// Create persists a new notification record.
func (r *PostgresNotificationRepository) Create(ctx context.Context, notification models.Notification) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO notifications (id, recipient, kind, message, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, notification.ID, notification.Recipient, notification.Kind, notification.Message, notification.IsRead, notification.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListForRecipient returns the recipient's notifications, newest first.
func (r *PostgresNotificationRepository) ListForRecipient(ctx context.Context, principal string) ([]models.Notification, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, recipient, kind, message, is_read, created_at
        FROM notifications
        WHERE recipient = $1
        ORDER BY created_at DESC, id
    `, principal)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Kind, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// Find fetches a notification by id.
func (r *PostgresNotificationRepository) Find(ctx context.Context, id string) (models.Notification, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Notification{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, recipient, kind, message, is_read, created_at
        FROM notifications
        WHERE id = $1
    `, id)

	var n models.Notification
	if err := row.Scan(&n.ID, &n.Recipient, &n.Kind, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Notification{}, ErrNotFound
		}
		return models.Notification{}, fmt.Errorf("select notification: %w", err)
	}

	return n, nil
}

// SetRead updates the read flag on a notification.
func (r *PostgresNotificationRepository) SetRead(ctx context.Context, id string, isRead bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE notifications
        SET is_read = $2
        WHERE id = $1
    `, id, isRead)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ NotificationRepository = (*PostgresNotificationRepository)(nil)

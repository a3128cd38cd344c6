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

// PostgresProfileRepository provides PostgreSQL-backed persistence for profiles.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Upsert replaces the caller-editable profile fields, creating the row on
// first save. Phone fields are server-owned and survive the replace.
func (r *PostgresProfileRepository) Upsert(ctx context.Context, profile models.UserProfile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO profiles (principal, username, bio, profile_picture, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
        ON CONFLICT (principal)
        DO UPDATE SET username = EXCLUDED.username,
                      bio = EXCLUDED.bio,
                      profile_picture = EXCLUDED.profile_picture,
                      updated_at = EXCLUDED.updated_at
    `, profile.Principal, profile.Username, profile.Bio, profile.ProfilePicture, profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// Find fetches the profile for a principal.
func (r *PostgresProfileRepository) Find(ctx context.Context, principal string) (models.UserProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT principal, username, bio, profile_picture, phone_number, phone_verified, created_at, updated_at
        FROM profiles
        WHERE principal = $1
    `, principal)

	var profile models.UserProfile
	if err := row.Scan(&profile.Principal, &profile.Username, &profile.Bio, &profile.ProfilePicture,
		&profile.PhoneNumber, &profile.PhoneVerified, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, fmt.Errorf("select profile: %w", err)
	}

	return profile, nil
}

// Search returns profiles whose username contains the query, case-insensitive,
// ordered by username for a deterministic result. The exclude principal is
// filtered out before the limit applies, so a caller matching their own query
// never costs a result slot.
func (r *PostgresProfileRepository) Search(ctx context.Context, query, exclude string, limit int) ([]models.UserProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if limit <= 0 {
		limit = 25
	}

	rows, err := conn.Query(ctx, `
        SELECT principal, username, bio, profile_picture, phone_number, phone_verified, created_at, updated_at
        FROM profiles
        WHERE username ILIKE '%' || $1 || '%' AND principal <> $2
        ORDER BY username, principal
        LIMIT $3
    `, query, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		var profile models.UserProfile
		if err := rows.Scan(&profile.Principal, &profile.Username, &profile.Bio, &profile.ProfilePicture,
			&profile.PhoneNumber, &profile.PhoneVerified, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// SetPhoneVerified records a successfully verified phone number on the profile.
func (r *PostgresProfileRepository) SetPhoneVerified(ctx context.Context, principal, phoneNumber string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE profiles
        SET phone_number = $2, phone_verified = TRUE, updated_at = NOW()
        WHERE principal = $1
    `, principal, phoneNumber)
	if err != nil {
		return fmt.Errorf("update phone verification: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)

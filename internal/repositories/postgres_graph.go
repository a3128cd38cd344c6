package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helmar/backend/internal/db"
)

// PostgresGraphRepository provides PostgreSQL-backed persistence for follow edges.
type PostgresGraphRepository struct {
	pool db.Pool
}

// NewPostgresGraphRepository constructs a social graph repository backed by PostgreSQL.
func NewPostgresGraphRepository(pool db.Pool) *PostgresGraphRepository {
	return &PostgresGraphRepository{pool: pool}
}

// Follow inserts the edge if absent. The primary key on (follower, followee)
// makes repeated and concurrent calls converge on a single edge.
func (r *PostgresGraphRepository) Follow(ctx context.Context, follower, followee string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO follows (follower, followee, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (follower, followee) DO NOTHING
    `, follower, followee)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("insert follow edge: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Unfollow removes the edge if present. Removing an absent edge is a no-op.
func (r *PostgresGraphRepository) Unfollow(ctx context.Context, follower, followee string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM follows
        WHERE follower = $1 AND followee = $2
    `, follower, followee); err != nil {
		return fmt.Errorf("delete follow edge: %w", err)
	}

	return nil
}

// Followers returns the principals following the given principal.
func (r *PostgresGraphRepository) Followers(ctx context.Context, principal string) ([]string, error) {
	return r.listEdges(ctx, `
        SELECT follower
        FROM follows
        WHERE followee = $1
        ORDER BY created_at, follower
    `, principal, "followers")
}

// Following returns the principals the given principal follows.
func (r *PostgresGraphRepository) Following(ctx context.Context, principal string) ([]string, error) {
	return r.listEdges(ctx, `
        SELECT followee
        FROM follows
        WHERE follower = $1
        ORDER BY created_at, followee
    `, principal, "following")
}

func (r *PostgresGraphRepository) listEdges(ctx context.Context, query, principal, op string) ([]string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, principal)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	principals := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		principals = append(principals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}

	return principals, nil
}

var _ GraphRepository = (*PostgresGraphRepository)(nil)

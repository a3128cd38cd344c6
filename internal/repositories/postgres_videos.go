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

// PostgresVideoRepository provides PostgreSQL-backed persistence for video posts.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video post record.
func (r *PostgresVideoRepository) Create(ctx context.Context, post models.VideoPost) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO video_posts (id, creator, title, description, video_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, post.ID, post.Creator, post.Title, post.Description, post.VideoURL, post.CreatedAt)
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
		return fmt.Errorf("insert video post: %w", err)
	}

	return nil
}

// List returns all posts in reverse chronological order with likes and
// comments loaded inline.
func (r *PostgresVideoRepository) List(ctx context.Context) ([]models.VideoPost, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, creator, title, description, video_url, created_at
        FROM video_posts
        ORDER BY created_at DESC, id
    `)
	if err != nil {
		return nil, fmt.Errorf("query video posts: %w", err)
	}

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	index := make(map[string]*models.VideoPost, len(posts))
	ids := make([]string, 0, len(posts))
	for i := range posts {
		index[posts[i].ID] = &posts[i]
		ids = append(ids, posts[i].ID)
	}

	if err := r.attachLikes(ctx, conn, ids, index); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, conn, ids, index); err != nil {
		return nil, err
	}

	return posts, nil
}

// Find fetches a single post with its likes and comments.
func (r *PostgresVideoRepository) Find(ctx context.Context, id string) (models.VideoPost, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoPost{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, creator, title, description, video_url, created_at
        FROM video_posts
        WHERE id = $1
    `, id)

	var post models.VideoPost
	if err := row.Scan(&post.ID, &post.Creator, &post.Title, &post.Description, &post.VideoURL, &post.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoPost{}, ErrNotFound
		}
		return models.VideoPost{}, fmt.Errorf("select video post: %w", err)
	}

	post.Likes = []string{}
	post.Comments = []models.Comment{}

	index := map[string]*models.VideoPost{post.ID: &post}
	if err := r.attachLikes(ctx, conn, []string{post.ID}, index); err != nil {
		return models.VideoPost{}, err
	}
	if err := r.attachComments(ctx, conn, []string{post.ID}, index); err != nil {
		return models.VideoPost{}, err
	}

	return post, nil
}

// ToggleLike removes the caller's like when present, otherwise inserts it.
// The unique key on (video_id, principal) makes concurrent duplicate likes
// collapse into a single edge.
func (r *PostgresVideoRepository) ToggleLike(ctx context.Context, videoID, principal string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM video_likes
        WHERE video_id = $1 AND principal = $2
    `, videoID, principal)
	if err != nil {
		return false, fmt.Errorf("delete video like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	tag, err = conn.Exec(ctx, `
        INSERT INTO video_likes (video_id, principal, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (video_id, principal) DO NOTHING
    `, videoID, principal)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("insert video like: %w", err)
	}

	// A lost insert race means another call already recorded the like.
	return tag.RowsAffected() > 0, nil
}

// AddComment appends a comment to an existing post.
func (r *PostgresVideoRepository) AddComment(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, author, body, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, comment.ID, comment.VideoID, comment.Author, comment.Text, comment.CreatedAt)
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
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func scanPosts(rows pgx.Rows) ([]models.VideoPost, error) {
	defer rows.Close()

	var posts []models.VideoPost
	for rows.Next() {
		var post models.VideoPost
		if err := rows.Scan(&post.ID, &post.Creator, &post.Title, &post.Description, &post.VideoURL, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video post: %w", err)
		}
		post.Likes = []string{}
		post.Comments = []models.Comment{}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video posts: %w", err)
	}

	return posts, nil
}

func (r *PostgresVideoRepository) attachLikes(ctx context.Context, conn queryer, ids []string, index map[string]*models.VideoPost) error {
	rows, err := conn.Query(ctx, `
        SELECT video_id, principal
        FROM video_likes
        WHERE video_id = ANY($1)
        ORDER BY created_at, principal
    `, ids)
	if err != nil {
		return fmt.Errorf("query video likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var videoID, principal string
		if err := rows.Scan(&videoID, &principal); err != nil {
			return fmt.Errorf("scan video like: %w", err)
		}
		if post, ok := index[videoID]; ok {
			post.Likes = append(post.Likes, principal)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate video likes: %w", err)
	}

	return nil
}

func (r *PostgresVideoRepository) attachComments(ctx context.Context, conn queryer, ids []string, index map[string]*models.VideoPost) error {
	rows, err := conn.Query(ctx, `
        SELECT id, video_id, author, body, created_at
        FROM comments
        WHERE video_id = ANY($1)
        ORDER BY created_at, id
    `, ids)
	if err != nil {
		return fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.VideoID, &comment.Author, &comment.Text, &comment.CreatedAt); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		if post, ok := index[comment.VideoID]; ok {
			post.Comments = append(post.Comments, comment)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate comments: %w", err)
	}

	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)

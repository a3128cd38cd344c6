package repositories

import (
	"context"

	"github.com/helmar/backend/internal/models"
)

// VideoRepository exposes data access for video posts and their engagement.
type VideoRepository interface {
	Create(ctx context.Context, post models.VideoPost) error
	List(ctx context.Context) ([]models.VideoPost, error)
	Find(ctx context.Context, id string) (models.VideoPost, error)
	// ToggleLike flips the caller's like on a post and reports the resulting
	// state: true when the like is now present, false when it was removed.
	ToggleLike(ctx context.Context, videoID, principal string) (bool, error)
	AddComment(ctx context.Context, comment models.Comment) error
}

package repositories

import "context"

// GraphRepository maintains the directed follow edges between principals.
type GraphRepository interface {
	// Follow inserts the (follower, followee) edge and reports whether a new
	// edge was created. Repeated calls are no-ops returning false.
	Follow(ctx context.Context, follower, followee string) (bool, error)
	Unfollow(ctx context.Context, follower, followee string) error
	Followers(ctx context.Context, principal string) ([]string, error)
	Following(ctx context.Context, principal string) ([]string, error)
}

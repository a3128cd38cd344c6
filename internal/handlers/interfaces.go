package handlers

import (
	"context"
	"io"

	"github.com/helmar/backend/internal/models"
)

// AccountStore captures the persistence operations required by the auth and
// role handlers.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
}

// SessionManager issues, refreshes, and revokes session tokens.
type SessionManager interface {
	Issue(ctx context.Context, principal string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// ProfileStore captures persistence for user profiles.
type ProfileStore interface {
	Upsert(ctx context.Context, profile models.UserProfile) error
	Find(ctx context.Context, principal string) (models.UserProfile, error)
	Search(ctx context.Context, query, exclude string, limit int) ([]models.UserProfile, error)
	SetPhoneVerified(ctx context.Context, principal, phoneNumber string) error
}

// ProfileCache serves public profile reads and is invalidated on writes.
type ProfileCache interface {
	Find(ctx context.Context, principal string) (models.UserProfile, error)
	Invalidate(principal string)
}

// VideoStore captures persistence for video posts and their engagement.
type VideoStore interface {
	Create(ctx context.Context, post models.VideoPost) error
	List(ctx context.Context) ([]models.VideoPost, error)
	Find(ctx context.Context, id string) (models.VideoPost, error)
	ToggleLike(ctx context.Context, videoID, principal string) (bool, error)
	AddComment(ctx context.Context, comment models.Comment) error
}

// GraphStore captures persistence for follow edges.
type GraphStore interface {
	Follow(ctx context.Context, follower, followee string) (bool, error)
	Unfollow(ctx context.Context, follower, followee string) error
	Followers(ctx context.Context, principal string) ([]string, error)
	Following(ctx context.Context, principal string) ([]string, error)
}

// NotificationStore captures the read/write surface exposed to recipients.
type NotificationStore interface {
	ListForRecipient(ctx context.Context, principal string) ([]models.Notification, error)
	Find(ctx context.Context, id string) (models.Notification, error)
	SetRead(ctx context.Context, id string, isRead bool) error
}

// Notifier records a notification for the recipient about the actor's action.
type Notifier interface {
	Dispatch(ctx context.Context, kind models.NotificationKind, actor, recipient string) error
}

// PhoneVerifier drives the phone verification state machine.
type PhoneVerifier interface {
	Start(ctx context.Context, principal, phoneNumber string) (string, error)
	Confirm(ctx context.Context, principal, phoneNumber, code string) error
}

// BlobStore persists opaque uploaded blobs and returns their references.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

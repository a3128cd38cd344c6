package models

import "time"

// Role is the coarse permission tier attached to an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	// RoleGuest is the implicit role of an unauthenticated caller. It is
	// never stored on an account row.
	RoleGuest Role = "guest"
)

// ValidRole reports whether the value is a role that can be stored.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

// Account represents an authenticated identity within Helmar. The account ID
// is the principal used as a key throughout the rest of the system.
type Account struct {
	ID        string
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProfile is the public face of a principal. PhoneNumber is visible to
// the owner only; PhoneVerified is public.
type UserProfile struct {
	Principal      string
	Username       string
	Bio            string
	ProfilePicture string
	PhoneNumber    string
	PhoneVerified  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VideoPost is a published video with its engagement loaded inline, matching
// the shape the client consumes.
type VideoPost struct {
	ID          string
	Creator     string
	Title       string
	Description string
	VideoURL    string
	Likes       []string
	Comments    []Comment
	CreatedAt   time.Time
}

// Comment is an append-only child of a video post.
type Comment struct {
	ID        string
	VideoID   string
	Author    string
	Text      string
	CreatedAt time.Time
}

// NotificationKind tags the social action that produced a notification.
type NotificationKind string

const (
	NotificationLike    NotificationKind = "like"
	NotificationComment NotificationKind = "comment"
	NotificationFollow  NotificationKind = "follow"
	NotificationMessage NotificationKind = "message"
)

// Notification is a record delivered to a single recipient as a side effect
// of another principal's action.
type Notification struct {
	ID        string
	Recipient string
	Kind      NotificationKind
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

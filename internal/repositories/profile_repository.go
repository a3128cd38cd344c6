package repositories

import (
	"context"

	"github.com/helmar/backend/internal/models"
)

// ProfileRepository defines data access for user profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile models.UserProfile) error
	Find(ctx context.Context, principal string) (models.UserProfile, error)
	Search(ctx context.Context, query, exclude string, limit int) ([]models.UserProfile, error)
	SetPhoneVerified(ctx context.Context, principal, phoneNumber string) error
}

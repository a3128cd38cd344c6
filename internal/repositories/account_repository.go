package repositories

import (
	"context"

	"github.com/helmar/backend/internal/models"
)

// AccountRepository defines the data access contract for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
}

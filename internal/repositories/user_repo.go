package repositories

import (
	"context"

	"herboscope/internal/models"
)

// UserRepository defines the interface for user data access. Lookups return
// the stored password hash; callers project with User.Public before replying.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AdminExists(ctx context.Context) (bool, error)
}

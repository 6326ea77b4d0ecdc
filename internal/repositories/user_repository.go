package repositories

import (
	"context"

	"github.com/vidfriends/admin/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Delete removes the user and their videos, returning the asset keys of
	// the removed videos so stored files can be cleaned up.
	Delete(ctx context.Context, id string) ([]string, error)
	SetRole(ctx context.Context, id, role string) (models.User, error)
}

package repositories

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	// Create assigns a fresh identifier and returns the stored user.
	Create(ctx context.Context, user models.User) (models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
	// Update overwrites every stored field of an existing user.
	Update(ctx context.Context, user models.User) (models.User, error)
	// List returns all users ordered by identifier.
	List(ctx context.Context) ([]models.User, error)
}

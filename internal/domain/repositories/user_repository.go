package repositories

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations.
// Lookups return (nil, nil) when the user does not exist.
type UserRepository interface {
	// Create persists a new user and returns the stored record
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// List returns all users in insertion order
	List(ctx context.Context) ([]*entities.User, error)

	// Update applies a partial update; NotFoundError when absent
	Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error)

	// Delete deletes a user; NotFoundError when absent
	Delete(ctx context.Context, id string) error
}

package repositories

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations.
// Lookups return (nil, nil) when the review does not exist.
type ReviewRepository interface {
	// Create persists a new review and returns the stored record
	Create(ctx context.Context, review *entities.Review) (*entities.Review, error)

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*entities.Review, error)

	// GetByUserAndPlace retrieves the review a user wrote for a place
	GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error)

	// ListByPlace retrieves reviews for a place in insertion order
	ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error)

	// ListByUser retrieves reviews by a user in insertion order
	ListByUser(ctx context.Context, userID string) ([]*entities.Review, error)

	// List returns all reviews in insertion order
	List(ctx context.Context) ([]*entities.Review, error)

	// Update applies a partial update; NotFoundError when absent
	Update(ctx context.Context, id string, patch entities.ReviewUpdate) (*entities.Review, error)

	// Delete deletes a review; NotFoundError when absent
	Delete(ctx context.Context, id string) error

	// DeleteByPlace deletes every review of a place and returns how many were removed
	DeleteByPlace(ctx context.Context, placeID string) (int, error)
}

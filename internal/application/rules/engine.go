// Package rules holds the cross-entity checks the facade runs before writing:
// uniqueness, referential existence, review eligibility and the rating formula.
package rules

import (
	"context"
	"math"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// EmptyAverageRating is the average rating of a place without reviews
const EmptyAverageRating = 0.0

// Engine evaluates business rules against read access to the repositories
type Engine struct {
	users     repositories.UserRepository
	places    repositories.PlaceRepository
	reviews   repositories.ReviewRepository
	amenities repositories.AmenityRepository
}

// NewEngine creates a new rule engine
func NewEngine(
	users repositories.UserRepository,
	places repositories.PlaceRepository,
	reviews repositories.ReviewRepository,
	amenities repositories.AmenityRepository,
) *Engine {
	return &Engine{
		users:     users,
		places:    places,
		reviews:   reviews,
		amenities: amenities,
	}
}

// AssertUniqueEmail fails with a ConflictError when another user holds email.
// exceptID lets a user keep their own address on update.
func (e *Engine) AssertUniqueEmail(ctx context.Context, email, exceptID string) error {
	existing, err := e.users.GetByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		return apperrors.Persistence("failed to look up user by email", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperrors.NewConflictError("email", "email already registered")
	}
	return nil
}

// AssertUniqueAmenityName fails with a ConflictError when another amenity holds name
func (e *Engine) AssertUniqueAmenityName(ctx context.Context, name, exceptID string) error {
	existing, err := e.amenities.GetByName(ctx, name)
	if err != nil {
		return apperrors.Persistence("failed to look up amenity by name", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperrors.NewConflictError("name", "amenity name already exists")
	}
	return nil
}

// AssertUserExists loads a user or fails with a NotFoundError
func (e *Engine) AssertUserExists(ctx context.Context, userID string) (*entities.User, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user", userID)
	}
	return user, nil
}

// AssertOwnerExists is AssertUserExists reported against the owner reference
func (e *Engine) AssertOwnerExists(ctx context.Context, ownerID string) (*entities.User, error) {
	owner, err := e.AssertUserExists(ctx, ownerID)
	if apperrors.IsNotFound(err) {
		notFound := apperrors.NewNotFoundError("owner", ownerID)
		notFound.Field = "owner_id"
		return nil, notFound
	}
	return owner, err
}

// AssertPlaceExists loads a place or fails with a NotFoundError
func (e *Engine) AssertPlaceExists(ctx context.Context, placeID string) (*entities.Place, error) {
	place, err := e.places.GetByID(ctx, placeID)
	if err != nil {
		return nil, apperrors.Persistence("failed to load place", err)
	}
	if place == nil {
		return nil, apperrors.NewNotFoundError("place", placeID)
	}
	return place, nil
}

// AssertAmenityExists loads an amenity or fails with a NotFoundError
func (e *Engine) AssertAmenityExists(ctx context.Context, amenityID string) (*entities.Amenity, error) {
	amenity, err := e.amenities.GetByID(ctx, amenityID)
	if err != nil {
		return nil, apperrors.Persistence("failed to load amenity", err)
	}
	if amenity == nil {
		return nil, apperrors.NewNotFoundError("amenity", amenityID)
	}
	return amenity, nil
}

// AssertReviewExists loads a review or fails with a NotFoundError
func (e *Engine) AssertReviewExists(ctx context.Context, reviewID string) (*entities.Review, error) {
	review, err := e.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, apperrors.Persistence("failed to load review", err)
	}
	if review == nil {
		return nil, apperrors.NewNotFoundError("review", reviewID)
	}
	return review, nil
}

// AssertNoDuplicateReview fails with a ConflictError if userID already reviewed placeID
func (e *Engine) AssertNoDuplicateReview(ctx context.Context, userID, placeID string) error {
	existing, err := e.reviews.GetByUserAndPlace(ctx, userID, placeID)
	if err != nil {
		return apperrors.Persistence("failed to look up review", err)
	}
	if existing != nil {
		conflict := apperrors.NewConflictError("place_id", "user has already reviewed this place")
		conflict.ID = existing.ID
		return conflict
	}
	return nil
}

// AssertNotOwnPlace rejects a review written by the place's owner. The
// ownership is only known after a lookup, so it is a conflict with stored
// state rather than a malformed field.
func AssertNotOwnPlace(place *entities.Place, userID string) error {
	if place != nil && place.OwnerID == userID {
		conflict := apperrors.NewConflictError("user_id", "owners cannot review their own place")
		conflict.ID = place.ID
		return conflict
	}
	return nil
}

// RecomputeAverageRating returns the mean of the ratings rounded to two
// decimals, or EmptyAverageRating when there are none. It never touches storage.
func RecomputeAverageRating(reviews []*entities.Review) float64 {
	if len(reviews) == 0 {
		return EmptyAverageRating
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return RoundRating(float64(sum) / float64(len(reviews)))
}

// RoundRating rounds half away from zero to two decimal places
func RoundRating(v float64) float64 {
	return math.Round(v*100) / 100
}

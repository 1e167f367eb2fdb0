package memory

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// ReviewRepository stores reviews in process memory
type ReviewRepository struct {
	t *table[entities.Review]
}

// NewReviewRepository creates an empty in-memory review repository
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{t: newTable[entities.Review]()}
}

var _ repositories.ReviewRepository = (*ReviewRepository)(nil)

func (r *ReviewRepository) Create(ctx context.Context, review *entities.Review) (*entities.Review, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if r.t.get(review.ID) != nil {
		return nil, apperrors.NewPersistenceError("duplicate review id "+review.ID, nil)
	}
	// mirrors the unique (user_id, place_id) constraint of the SQL schema
	if r.t.first(func(rv *entities.Review) bool {
		return rv.UserID == review.UserID && rv.PlaceID == review.PlaceID
	}) != nil {
		return nil, apperrors.NewConflictError("place_id", "user has already reviewed this place")
	}
	r.t.put(review.ID, review)
	return r.t.get(review.ID), nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.get(id), nil
}

func (r *ReviewRepository) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.first(func(rv *entities.Review) bool {
		return rv.UserID == userID && rv.PlaceID == placeID
	}), nil
}

func (r *ReviewRepository) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(func(rv *entities.Review) bool { return rv.PlaceID == placeID }), nil
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Review, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(func(rv *entities.Review) bool { return rv.UserID == userID }), nil
}

func (r *ReviewRepository) List(ctx context.Context) ([]*entities.Review, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(nil), nil
}

func (r *ReviewRepository) Update(ctx context.Context, id string, patch entities.ReviewUpdate) (*entities.Review, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	review := r.t.get(id)
	if review == nil {
		return nil, apperrors.NewNotFoundError("review", id)
	}
	if patch.Rating != nil {
		review.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		review.Comment = *patch.Comment
	}
	if !patch.UpdatedAt.IsZero() {
		review.UpdatedAt = patch.UpdatedAt
	}
	r.t.put(id, review)
	return r.t.get(id), nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return apperrors.NewNotFoundError("review", id)
	}
	return nil
}

func (r *ReviewRepository) DeleteByPlace(ctx context.Context, placeID string) (int, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	doomed := r.t.find(func(rv *entities.Review) bool { return rv.PlaceID == placeID })
	for _, rv := range doomed {
		r.t.remove(rv.ID)
	}
	return len(doomed), nil
}

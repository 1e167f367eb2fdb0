package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hbnb/lodging-core/internal/application/rules"
	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// CreateReview records a user's rating of a place and refreshes the place's
// average rating. Eligibility is checked once outside the locks to fail fast
// and again inside them, where the author and the place are both held.
//
// If the rating recompute exhausts its retries the review is still returned,
// together with a stale-marked ConcurrencyError.
func (f *Facade) CreateReview(ctx context.Context, in entities.ReviewInput) (_ *entities.Review, err error) {
	ctx, done := f.begin(ctx, "CreateReview",
		attribute.String("user_id", in.UserID), attribute.String("place_id", in.PlaceID))
	defer func() { done(err) }()

	in, err = entities.ValidateReviewInput(in)
	if err != nil {
		return nil, err
	}
	if err := f.checkReviewEligibility(ctx, in.UserID, in.PlaceID); err != nil {
		return nil, err
	}

	now := f.now()
	review := &entities.Review{
		ID:        f.newID(),
		Rating:    in.Rating,
		Comment:   in.Comment,
		UserID:    in.UserID,
		PlaceID:   in.PlaceID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var created *entities.Review
	var events []*entities.DomainEvent
	var staleErr error

	keys := []string{providers.UserLockKey(in.UserID), providers.PlaceLockKey(in.PlaceID)}
	err = f.withLocks(ctx, keys, func(ctx context.Context) error {
		if err := f.checkReviewEligibility(ctx, in.UserID, in.PlaceID); err != nil {
			return err
		}

		var err error
		created, err = f.reviews.Create(ctx, review)
		if err != nil {
			return apperrors.Persistence("failed to create review", err)
		}
		events = append(events, entities.NewDomainEvent(entities.EventReviewCreated, created.ID,
			map[string]interface{}{"place_id": created.PlaceID, "rating": created.Rating}))

		place, err := f.recomputeRatingLocked(ctx, created.PlaceID)
		if err != nil {
			staleErr = err
			return nil
		}
		events = append(events, ratingEvent(place))
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, events...)
	return created, staleErr
}

// checkReviewEligibility verifies the author and place exist, that the author
// does not own the place and has not reviewed it yet.
func (f *Facade) checkReviewEligibility(ctx context.Context, userID, placeID string) error {
	if _, err := f.rules.AssertUserExists(ctx, userID); err != nil {
		return err
	}
	place, err := f.rules.AssertPlaceExists(ctx, placeID)
	if err != nil {
		return err
	}
	if f.cfg.ForbidSelfReview {
		if err := rules.AssertNotOwnPlace(place, userID); err != nil {
			return err
		}
	}
	return f.rules.AssertNoDuplicateReview(ctx, userID, placeID)
}

// GetReview returns a review by id
func (f *Facade) GetReview(ctx context.Context, id string) (*entities.Review, error) {
	return f.rules.AssertReviewExists(ctx, id)
}

// ListReviews returns every review in insertion order
func (f *Facade) ListReviews(ctx context.Context) ([]*entities.Review, error) {
	reviews, err := f.reviews.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("failed to list reviews", err)
	}
	return reviews, nil
}

// ListReviewsByPlace returns the reviews of a place
func (f *Facade) ListReviewsByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	var reviews []*entities.Review
	err := f.withShared(ctx, providers.PlaceLockKey(placeID), func(ctx context.Context) error {
		if _, err := f.rules.AssertPlaceExists(ctx, placeID); err != nil {
			return err
		}
		var err error
		reviews, err = f.reviews.ListByPlace(ctx, placeID)
		return apperrors.Persistence("failed to list place reviews", err)
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListReviewsByUser returns the reviews a user wrote
func (f *Facade) ListReviewsByUser(ctx context.Context, userID string) ([]*entities.Review, error) {
	if _, err := f.rules.AssertUserExists(ctx, userID); err != nil {
		return nil, err
	}
	reviews, err := f.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("failed to list user reviews", err)
	}
	return reviews, nil
}

// UpdateReview changes a review's rating or comment. The place's average is
// recomputed only when the rating actually changes.
func (f *Facade) UpdateReview(ctx context.Context, id string, up entities.ReviewUpdate) (_ *entities.Review, err error) {
	ctx, done := f.begin(ctx, "UpdateReview", attribute.String("review_id", id))
	defer func() { done(err) }()

	up, err = entities.ValidateReviewUpdate(up)
	if err != nil {
		return nil, err
	}
	existing, err := f.rules.AssertReviewExists(ctx, id)
	if err != nil {
		return nil, err
	}
	up.UpdatedAt = f.now()

	var updated *entities.Review
	var events []*entities.DomainEvent
	var staleErr error

	err = f.withLocks(ctx, []string{providers.PlaceLockKey(existing.PlaceID)}, func(ctx context.Context) error {
		current, err := f.rules.AssertReviewExists(ctx, id)
		if err != nil {
			return err
		}

		updated, err = f.reviews.Update(ctx, id, up)
		if err != nil {
			return apperrors.Persistence("failed to update review", err)
		}
		events = append(events, entities.NewDomainEvent(entities.EventReviewUpdated, id,
			map[string]interface{}{"place_id": updated.PlaceID, "rating": updated.Rating}))

		if updated.Rating == current.Rating {
			return nil
		}
		place, err := f.recomputeRatingLocked(ctx, updated.PlaceID)
		if err != nil {
			staleErr = err
			return nil
		}
		events = append(events, ratingEvent(place))
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, events...)
	return updated, staleErr
}

// DeleteReview removes a review and refreshes its place's average rating
func (f *Facade) DeleteReview(ctx context.Context, id string) (err error) {
	ctx, done := f.begin(ctx, "DeleteReview", attribute.String("review_id", id))
	defer func() { done(err) }()

	existing, err := f.rules.AssertReviewExists(ctx, id)
	if err != nil {
		return err
	}

	var events []*entities.DomainEvent
	var staleErr error

	err = f.withLocks(ctx, []string{providers.PlaceLockKey(existing.PlaceID)}, func(ctx context.Context) error {
		if _, err := f.rules.AssertReviewExists(ctx, id); err != nil {
			return err
		}
		if err := f.reviews.Delete(ctx, id); err != nil {
			return apperrors.Persistence("failed to delete review", err)
		}
		events = append(events, entities.NewDomainEvent(entities.EventReviewDeleted, id,
			map[string]interface{}{"place_id": existing.PlaceID}))

		place, err := f.recomputeRatingLocked(ctx, existing.PlaceID)
		if err != nil {
			staleErr = err
			return nil
		}
		events = append(events, ratingEvent(place))
		return nil
	})
	if err != nil {
		return err
	}

	f.publish(ctx, events...)
	return staleErr
}

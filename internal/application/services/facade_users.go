package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// CreateUser registers a user. The password is hashed before any lock is
// taken; the email uniqueness check is repeated inside the email's exclusive
// section so two concurrent registrations cannot both succeed.
func (f *Facade) CreateUser(ctx context.Context, in entities.UserInput) (_ *entities.PublicUser, err error) {
	ctx, done := f.begin(ctx, "CreateUser")
	defer func() { done(err) }()

	in, err = entities.ValidateUserInput(in)
	if err != nil {
		return nil, err
	}
	if err := f.rules.AssertUniqueEmail(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	hash, err := f.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := f.now()
	user := &entities.User{
		ID:           f.newID(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var created *entities.User
	err = f.withLocks(ctx, []string{providers.EmailLockKey(in.Email)}, func(ctx context.Context) error {
		if err := f.rules.AssertUniqueEmail(ctx, in.Email, ""); err != nil {
			return err
		}
		var err error
		created, err = f.users.Create(ctx, user)
		return apperrors.Persistence("failed to create user", err)
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventUserCreated, created.ID, nil))
	return created.Public(), nil
}

// GetUser returns a user by id
func (f *Facade) GetUser(ctx context.Context, id string) (*entities.PublicUser, error) {
	user, err := f.rules.AssertUserExists(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// GetUserByEmail returns a user by email, compared case-insensitively
func (f *Facade) GetUserByEmail(ctx context.Context, email string) (*entities.PublicUser, error) {
	email = entities.NormalizeEmail(email)
	if err := entities.ValidateEmail(email); err != nil {
		return nil, err
	}
	user, err := f.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Persistence("failed to look up user by email", err)
	}
	if user == nil {
		notFound := apperrors.NewNotFoundError("user", "")
		notFound.Field = "email"
		return nil, notFound
	}
	return user.Public(), nil
}

// ListUsers returns every user in insertion order
func (f *Facade) ListUsers(ctx context.Context) ([]*entities.PublicUser, error) {
	users, err := f.users.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("failed to list users", err)
	}
	out := make([]*entities.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// UpdateUser applies a partial update. A new email is checked for uniqueness
// and a new password is rehashed.
func (f *Facade) UpdateUser(ctx context.Context, id string, up entities.UserUpdate) (_ *entities.PublicUser, err error) {
	ctx, done := f.begin(ctx, "UpdateUser", attribute.String("user_id", id))
	defer func() { done(err) }()

	up, err = entities.ValidateUserUpdate(up)
	if err != nil {
		return nil, err
	}
	if _, err := f.rules.AssertUserExists(ctx, id); err != nil {
		return nil, err
	}

	patch := entities.UserPatch{
		Email:     up.Email,
		FirstName: up.FirstName,
		LastName:  up.LastName,
		UpdatedAt: f.now(),
	}
	if up.Password != nil {
		hash, err := f.hasher.Hash(*up.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash password", err)
		}
		patch.PasswordHash = &hash
	}

	keys := []string{providers.UserLockKey(id)}
	if up.Email != nil {
		keys = append([]string{providers.EmailLockKey(*up.Email)}, keys...)
	}

	var updated *entities.User
	err = f.withLocks(ctx, keys, func(ctx context.Context) error {
		if _, err := f.rules.AssertUserExists(ctx, id); err != nil {
			return err
		}
		if up.Email != nil {
			if err := f.rules.AssertUniqueEmail(ctx, *up.Email, id); err != nil {
				return err
			}
		}
		var err error
		updated, err = f.users.Update(ctx, id, patch)
		return apperrors.Persistence("failed to update user", err)
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventUserUpdated, id, nil))
	return updated.Public(), nil
}

// DeleteUser removes a user that owns no places and has written no reviews.
// Otherwise it fails with a ConflictError; see DeleteUserCascade.
func (f *Facade) DeleteUser(ctx context.Context, id string) (err error) {
	ctx, done := f.begin(ctx, "DeleteUser", attribute.String("user_id", id))
	defer func() { done(err) }()

	err = f.withLocks(ctx, []string{providers.UserLockKey(id)}, func(ctx context.Context) error {
		if _, err := f.rules.AssertUserExists(ctx, id); err != nil {
			return err
		}

		owned, err := f.places.ListByOwner(ctx, id)
		if err != nil {
			return apperrors.Persistence("failed to list owned places", err)
		}
		if len(owned) > 0 {
			conflict := apperrors.NewConflictError("places", "user still owns places")
			conflict.ID = id
			return conflict
		}

		authored, err := f.reviews.ListByUser(ctx, id)
		if err != nil {
			return apperrors.Persistence("failed to list authored reviews", err)
		}
		if len(authored) > 0 {
			conflict := apperrors.NewConflictError("reviews", "user still has reviews")
			conflict.ID = id
			return conflict
		}

		return apperrors.Persistence("failed to delete user", f.users.Delete(ctx, id))
	})
	if err != nil {
		return err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventUserDeleted, id, nil))
	return nil
}

// DeleteUserCascade removes a user together with the places they own (and
// those places' reviews and amenity links) and the reviews they wrote on
// other places, whose ratings are recomputed. If a recompute exhausts its
// retries the deletion still completes and a stale-marked error is returned.
func (f *Facade) DeleteUserCascade(ctx context.Context, id string) (err error) {
	ctx, done := f.begin(ctx, "DeleteUserCascade", attribute.String("user_id", id))
	defer func() { done(err) }()

	var events []*entities.DomainEvent
	var staleErr error

	err = f.withLocks(ctx, []string{providers.UserLockKey(id)}, func(ctx context.Context) error {
		if _, err := f.rules.AssertUserExists(ctx, id); err != nil {
			return err
		}

		owned, err := f.places.ListByOwner(ctx, id)
		if err != nil {
			return apperrors.Persistence("failed to list owned places", err)
		}
		for _, place := range owned {
			err := f.withLocks(ctx, []string{providers.PlaceLockKey(place.ID)}, func(ctx context.Context) error {
				return f.deletePlaceLocked(ctx, place.ID)
			})
			if err != nil {
				return err
			}
			events = append(events, entities.NewDomainEvent(entities.EventPlaceDeleted, place.ID, nil))
		}

		authored, err := f.reviews.ListByUser(ctx, id)
		if err != nil {
			return apperrors.Persistence("failed to list authored reviews", err)
		}
		for _, review := range authored {
			err := f.withLocks(ctx, []string{providers.PlaceLockKey(review.PlaceID)}, func(ctx context.Context) error {
				if err := f.reviews.Delete(ctx, review.ID); err != nil && !apperrors.IsNotFound(err) {
					return apperrors.Persistence("failed to delete review", err)
				}
				events = append(events, entities.NewDomainEvent(entities.EventReviewDeleted, review.ID,
					map[string]interface{}{"place_id": review.PlaceID}))

				place, err := f.recomputeRatingLocked(ctx, review.PlaceID)
				if err != nil {
					if staleErr == nil {
						staleErr = err
					}
					return nil
				}
				events = append(events, ratingEvent(place))
				return nil
			})
			if err != nil {
				return err
			}
		}

		if err := f.users.Delete(ctx, id); err != nil {
			return apperrors.Persistence("failed to delete user", err)
		}
		events = append(events, entities.NewDomainEvent(entities.EventUserDeleted, id, nil))
		return nil
	})

	f.publish(ctx, events...)
	if err != nil {
		return err
	}
	return staleErr
}

// VerifyCredentials checks an email/password pair and returns the matching user
func (f *Facade) VerifyCredentials(ctx context.Context, email, password string) (*entities.PublicUser, error) {
	email = entities.NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, apperrors.NewValidationError("credentials", "email and password are required")
	}

	user, err := f.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Persistence("failed to look up user by email", err)
	}
	if user == nil || !f.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}
	return user.Public(), nil
}

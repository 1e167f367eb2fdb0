package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hbnb/lodging-core/internal/application/rules"
	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	"github.com/hbnb/lodging-core/internal/infrastructure/observability"
	"github.com/hbnb/lodging-core/pkg/config"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
	"github.com/hbnb/lodging-core/pkg/retry"
)

// FacadeDeps are the collaborators a Facade is built from.
// Events, Metrics, Now and NewID are optional.
type FacadeDeps struct {
	Users     repositories.UserRepository
	Places    repositories.PlaceRepository
	Reviews   repositories.ReviewRepository
	Amenities repositories.AmenityRepository
	Hasher    providers.CredentialHasher
	Locks     providers.LockProvider
	Events    providers.EventPublisher
	Metrics   *observability.Metrics
	Now       func() time.Time
	NewID     func() string
	Config    config.FacadeConfig
}

// Facade is the single entry point for every domain operation. Each mutating
// method runs as one unit of work: validate, check cross-entity rules, take
// the aggregate's exclusive section, write, recompute derived state, release,
// then publish events.
type Facade struct {
	users     repositories.UserRepository
	places    repositories.PlaceRepository
	reviews   repositories.ReviewRepository
	amenities repositories.AmenityRepository
	hasher    providers.CredentialHasher
	locks     providers.LockProvider
	events    providers.EventPublisher
	metrics   *observability.Metrics
	rules     *rules.Engine
	now       func() time.Time
	newID     func() string
	cfg       config.FacadeConfig
}

// NewFacade creates a new facade
func NewFacade(deps FacadeDeps) (*Facade, error) {
	switch {
	case deps.Users == nil, deps.Places == nil, deps.Reviews == nil, deps.Amenities == nil:
		return nil, fmt.Errorf("facade: all repositories are required")
	case deps.Hasher == nil:
		return nil, fmt.Errorf("facade: credential hasher is required")
	case deps.Locks == nil:
		return nil, fmt.Errorf("facade: lock provider is required")
	}

	f := &Facade{
		users:     deps.Users,
		places:    deps.Places,
		reviews:   deps.Reviews,
		amenities: deps.Amenities,
		hasher:    deps.Hasher,
		locks:     deps.Locks,
		events:    deps.Events,
		metrics:   deps.Metrics,
		rules:     rules.NewEngine(deps.Users, deps.Places, deps.Reviews, deps.Amenities),
		now:       deps.Now,
		newID:     deps.NewID,
		cfg:       deps.Config,
	}
	if f.now == nil {
		f.now = func() time.Time { return time.Now().UTC() }
	}
	if f.newID == nil {
		f.newID = func() string { return uuid.New().String() }
	}
	if f.cfg.RecomputeAttempts < 1 {
		f.cfg.RecomputeAttempts = 3
	}
	return f, nil
}

// begin opens the span for an operation and returns the function that closes it
func (f *Facade) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := observability.StartSpan(observability.WithOperation(ctx, op), "facade."+op, attrs...)

	return ctx, func(err error) {
		outcome := outcomeOf(err)
		observability.RecordOperation(ctx, f.metrics, op, outcome, time.Since(start))

		logger := observability.LoggerFromContext(ctx)
		switch outcome {
		case "ok":
			logger.Debug().Dur("elapsed", time.Since(start)).Msg("facade operation completed")
		case "persistence", "internal":
			logger.Error().Err(err).Msg("facade operation failed")
		case "stale":
			logger.Warn().Err(err).Msg("facade operation committed with stale derived state")
		default:
			logger.Info().Err(err).Str("outcome", outcome).Msg("facade operation rejected")
		}
		observability.EndSpan(span, err)
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if apperrors.IsStale(err) {
		return "stale"
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return "internal"
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return "validation"
	case apperrors.ErrorTypeConflict:
		return "conflict"
	case apperrors.ErrorTypeNotFound:
		return "not_found"
	case apperrors.ErrorTypeConcurrency:
		return "concurrency"
	case apperrors.ErrorTypePersistence:
		return "persistence"
	case apperrors.ErrorTypeUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// withLocks runs fn inside the exclusive sections of keys, acquired in the
// order given and released in reverse. Once the locks are held fn runs with a
// context that ignores cancellation, so writes are never abandoned half-way.
func (f *Facade) withLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	unlocks := make([]providers.Unlock, 0, len(keys))
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()

	for _, key := range keys {
		unlock, err := f.locks.Lock(ctx, key)
		if err != nil {
			return err
		}
		unlocks = append(unlocks, unlock)
	}
	return fn(context.WithoutCancel(ctx))
}

// withShared runs fn inside the shared section of key
func (f *Facade) withShared(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	unlock, err := f.locks.RLock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

// publish sends committed events. It is called after locks are released and
// never fails the operation.
func (f *Facade) publish(ctx context.Context, events ...*entities.DomainEvent) {
	if f.events == nil {
		return
	}
	for _, event := range events {
		if err := f.events.Publish(ctx, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("event_type", string(event.Type)).
				Str("aggregate_id", event.AggregateID).
				Msg("failed to publish domain event")
		}
	}
}

// recomputeRatingLocked refreshes a place's average rating from its current
// reviews. The caller holds the place's exclusive section. Version conflicts
// and persistence failures are retried; when retries run out the returned
// error is a stale-marked ConcurrencyError.
func (f *Facade) recomputeRatingLocked(ctx context.Context, placeID string) (*entities.Place, error) {
	cfg := retry.ShortConfig(f.cfg.RecomputeAttempts)
	cfg.Retryable = func(err error) bool {
		return apperrors.IsConcurrency(err) || apperrors.IsPersistence(err)
	}

	var updated *entities.Place
	err := retry.DoWithLog(ctx, cfg, "recompute rating", func() error {
		place, err := f.places.GetByID(ctx, placeID)
		if err != nil {
			return apperrors.Persistence("failed to load place", err)
		}
		if place == nil {
			return apperrors.NewNotFoundError("place", placeID)
		}
		reviews, err := f.reviews.ListByPlace(ctx, placeID)
		if err != nil {
			return apperrors.Persistence("failed to list reviews", err)
		}

		average := rules.RecomputeAverageRating(reviews)
		updated, err = f.places.UpdateRating(ctx, placeID, average, len(reviews), place.Version)
		return apperrors.Persistence("failed to store average rating", err)
	}, func(attempt int, err error, nextDelay time.Duration) {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("place_id", placeID).
			Int("attempt", attempt).
			Msg("average rating recompute failed, retrying")
	})

	if err != nil {
		observability.RecordRecompute(ctx, f.metrics, "stale")
		return nil, apperrors.NewStaleError(placeID, err)
	}
	observability.RecordRecompute(ctx, f.metrics, "ok")
	return updated, nil
}

func ratingEvent(place *entities.Place) *entities.DomainEvent {
	return entities.NewDomainEvent(entities.EventPlaceRated, place.ID, map[string]interface{}{
		"average_rating": place.AverageRating,
		"review_count":   place.ReviewCount,
	})
}

package services_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/hbnb/lodging-core/internal/adapters/credentials"
	"github.com/hbnb/lodging-core/internal/adapters/locks"
	"github.com/hbnb/lodging-core/internal/adapters/memory"
	"github.com/hbnb/lodging-core/internal/application/services"
	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	"github.com/hbnb/lodging-core/pkg/config"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// Mocks

// MockPlaceRepository records Create and UpdateRating calls. Create and every
// other method are served by an in-memory repository.
type MockPlaceRepository struct {
	mock.Mock
	*memory.PlaceRepository
}

func (m *MockPlaceRepository) Create(ctx context.Context, place *entities.Place) (*entities.Place, error) {
	m.Called(ctx, place)
	return m.PlaceRepository.Create(ctx, place)
}

func (m *MockPlaceRepository) UpdateRating(ctx context.Context, id string, average float64, count int, expectedVersion int64) (*entities.Place, error) {
	args := m.Called(ctx, id, average, count, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Place), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entities.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *entities.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []entities.DomainEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.DomainEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// Helpers

type fixture struct {
	facade    *services.Facade
	users     *memory.UserRepository
	places    repositories.PlaceRepository
	reviews   *memory.ReviewRepository
	amenities *memory.AmenityRepository
	events    *recordingPublisher
}

func newFixture(t *testing.T, places repositories.PlaceRepository) *fixture {
	t.Helper()
	if places == nil {
		places = memory.NewPlaceRepository()
	}
	fx := &fixture{
		users:     memory.NewUserRepository(),
		places:    places,
		reviews:   memory.NewReviewRepository(),
		amenities: memory.NewAmenityRepository(),
		events:    &recordingPublisher{},
	}

	facade, err := services.NewFacade(services.FacadeDeps{
		Users:     fx.users,
		Places:    fx.places,
		Reviews:   fx.reviews,
		Amenities: fx.amenities,
		Hasher:    credentials.NewBcryptHasher(bcrypt.MinCost),
		Locks:     locks.NewMemoryLocker(),
		Events:    fx.events,
		Config:    config.FacadeConfig{RecomputeAttempts: 3, ForbidSelfReview: true},
	})
	require.NoError(t, err)
	fx.facade = facade
	return fx
}

func (fx *fixture) user(t *testing.T, email string) *entities.PublicUser {
	t.Helper()
	u, err := fx.facade.CreateUser(context.Background(), entities.UserInput{
		Email:     email,
		Password:  "correct-horse",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return u
}

func (fx *fixture) place(t *testing.T, ownerID string) *entities.Place {
	t.Helper()
	p, err := fx.facade.CreatePlace(context.Background(), entities.PlaceInput{
		Title:     "Cozy loft",
		Price:     120,
		Latitude:  48.85,
		Longitude: 2.35,
		OwnerID:   ownerID,
	})
	require.NoError(t, err)
	return p
}

func reviewInput(userID, placeID string, rating int) entities.ReviewInput {
	return entities.ReviewInput{Rating: rating, Comment: "Nice stay", UserID: userID, PlaceID: placeID}
}

// Tests

func TestNewFacade_RequiresCollaborators(t *testing.T) {
	_, err := services.NewFacade(services.FacadeDeps{})
	assert.Error(t, err)
}

func TestFacade_ReviewLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	guest := fx.user(t, "guest@example.com")
	place := fx.place(t, owner.ID)

	got, err := fx.facade.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.AverageRating)
	assert.Equal(t, 0, got.ReviewCount)

	review, err := fx.facade.CreateReview(ctx, reviewInput(guest.ID, place.ID, 5))
	require.NoError(t, err)
	require.NotNil(t, review)

	got, err = fx.facade.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 1, got.ReviewCount)

	t.Run("second review by the same user conflicts", func(t *testing.T) {
		_, err := fx.facade.CreateReview(ctx, reviewInput(guest.ID, place.ID, 1))
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, review.ID, appErr.ID)

		reviews, err := fx.facade.ListReviewsByPlace(ctx, place.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 1)
	})

	t.Run("owners cannot review their own place", func(t *testing.T) {
		_, err := fx.facade.CreateReview(ctx, reviewInput(owner.ID, place.ID, 5))
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "user_id", appErr.Field)
		assert.Equal(t, place.ID, appErr.ID)
	})

	t.Run("rating change is reflected in the average", func(t *testing.T) {
		rating := 3
		updated, err := fx.facade.UpdateReview(ctx, review.ID, entities.ReviewUpdate{Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Rating)

		got, err := fx.facade.GetPlace(ctx, place.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, got.AverageRating)
	})

	t.Run("deleting the last review resets the average", func(t *testing.T) {
		require.NoError(t, fx.facade.DeleteReview(ctx, review.ID))

		got, err := fx.facade.GetPlace(ctx, place.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.AverageRating)
		assert.Equal(t, 0, got.ReviewCount)

		_, err = fx.facade.GetReview(ctx, review.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	assert.Contains(t, fx.events.types(), entities.EventPlaceRated)
}

func TestFacade_CreateReview_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	guest := fx.user(t, "guest@example.com")
	place := fx.place(t, owner.ID)

	tests := []struct {
		name  string
		input entities.ReviewInput
		check func(error) bool
	}{
		{"rating below range", reviewInput(guest.ID, place.ID, 0), apperrors.IsValidation},
		{"rating above range", reviewInput(guest.ID, place.ID, 6), apperrors.IsValidation},
		{"empty comment", entities.ReviewInput{Rating: 4, Comment: "  ", UserID: guest.ID, PlaceID: place.ID}, apperrors.IsValidation},
		{"unknown place", reviewInput(guest.ID, "no-such-place", 4), apperrors.IsNotFound},
		{"unknown user", reviewInput("no-such-user", place.ID, 4), apperrors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := fx.facade.CreateReview(ctx, tt.input)
			require.Error(t, err)
			assert.Nil(t, review)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	all, err := fx.reviews.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFacade_ConcurrentReviewsKeepAverageConsistent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	place := fx.place(t, owner.ID)

	ratings := []int{5, 4, 3, 5, 3}
	reviewers := make([]*entities.PublicUser, len(ratings))
	for i := range ratings {
		reviewers[i] = fx.user(t, fmt.Sprintf("guest%d@example.com", i))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, rating := range ratings {
		g.Go(func() error {
			_, err := fx.facade.CreateReview(gctx, reviewInput(reviewers[i].ID, place.ID, rating))
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := fx.facade.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.AverageRating)
	assert.Equal(t, 5, got.ReviewCount)
}

func TestFacade_ConcurrentDuplicateReviewsAdmitOne(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	guest := fx.user(t, "guest@example.com")
	place := fx.place(t, owner.ID)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.facade.CreateReview(ctx, reviewInput(guest.ID, place.ID, 1+i%5))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	reviews, err := fx.facade.ListReviewsByPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestFacade_CreatePlace_InvalidPriceNeverReachesRepository(t *testing.T) {
	ctx := context.Background()
	places := &MockPlaceRepository{PlaceRepository: memory.NewPlaceRepository()}
	fx := newFixture(t, places)
	owner := fx.user(t, "owner@example.com")

	for _, price := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := fx.facade.CreatePlace(ctx, entities.PlaceInput{
			Title:   "Broken",
			Price:   price,
			OwnerID: owner.ID,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "price", appErr.Field)
	}

	places.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFacade_CreatePlace_Validation(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	owner := fx.user(t, "owner@example.com")

	tests := []struct {
		name  string
		input entities.PlaceInput
		field string
	}{
		{"missing title", entities.PlaceInput{Price: 10, OwnerID: owner.ID}, "title"},
		{"latitude out of range", entities.PlaceInput{Title: "x", Price: 10, Latitude: 91, OwnerID: owner.ID}, "latitude"},
		{"longitude out of range", entities.PlaceInput{Title: "x", Price: 10, Longitude: -181, OwnerID: owner.ID}, "longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.facade.CreatePlace(ctx, tt.input)
			require.Error(t, err)
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}

	t.Run("unknown owner", func(t *testing.T) {
		_, err := fx.facade.CreatePlace(ctx, entities.PlaceInput{Title: "x", Price: 10, OwnerID: "ghost"})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "owner_id", appErr.Field)
	})
}

func TestFacade_StaleRatingIsReported(t *testing.T) {
	ctx := context.Background()
	places := &MockPlaceRepository{PlaceRepository: memory.NewPlaceRepository()}
	fx := newFixture(t, places)

	owner := fx.user(t, "owner@example.com")
	guest := fx.user(t, "guest@example.com")

	created, err := places.PlaceRepository.Create(ctx, &entities.Place{ID: "p-1", Title: "Loft", Price: 50, OwnerID: owner.ID, Version: 1})
	require.NoError(t, err)

	places.On("UpdateRating", mock.Anything, created.ID, 4.0, 1, int64(1)).
		Return(nil, apperrors.NewConcurrencyError(created.ID, "place version is 2, expected 1", nil))

	review, err := fx.facade.CreateReview(ctx, reviewInput(guest.ID, created.ID, 4))
	require.Error(t, err)
	assert.True(t, apperrors.IsStale(err))
	require.NotNil(t, review, "the review is committed even though the average is stale")

	stored, err := fx.reviews.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
	places.AssertNumberOfCalls(t, "UpdateRating", 3)
}

func TestFacade_DeletePlace_RemovesReviewsAndLinks(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	guest := fx.user(t, "guest@example.com")
	place := fx.place(t, owner.ID)

	wifi, err := fx.facade.CreateAmenity(ctx, entities.AmenityInput{Name: "WiFi"})
	require.NoError(t, err)
	require.NoError(t, fx.facade.AddAmenityToPlace(ctx, place.ID, wifi.ID))
	require.NoError(t, fx.facade.AddAmenityToPlace(ctx, place.ID, wifi.ID), "linking twice is a no-op")

	linked, err := fx.facade.ListPlaceAmenities(ctx, place.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 1)

	_, err = fx.facade.CreateReview(ctx, reviewInput(guest.ID, place.ID, 4))
	require.NoError(t, err)

	require.NoError(t, fx.facade.DeletePlace(ctx, place.ID))

	_, err = fx.facade.GetPlace(ctx, place.ID)
	assert.True(t, apperrors.IsNotFound(err))

	byUser, err := fx.facade.ListReviewsByUser(ctx, guest.ID)
	require.NoError(t, err)
	assert.Empty(t, byUser)

	_, err = fx.facade.GetAmenity(ctx, wifi.ID)
	assert.NoError(t, err, "amenities outlive the places they were linked to")

	assert.True(t, apperrors.IsNotFound(fx.facade.DeletePlace(ctx, place.ID)))
}

func TestFacade_AmenityLinks(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	place := fx.place(t, owner.ID)
	pool, err := fx.facade.CreateAmenity(ctx, entities.AmenityInput{Name: "Pool"})
	require.NoError(t, err)

	_, err = fx.facade.CreateAmenity(ctx, entities.AmenityInput{Name: " pool "})
	assert.True(t, apperrors.IsConflict(err), "names are unique regardless of case")

	assert.True(t, apperrors.IsNotFound(fx.facade.AddAmenityToPlace(ctx, place.ID, "missing")))
	assert.True(t, apperrors.IsNotFound(fx.facade.RemoveAmenityFromPlace(ctx, place.ID, pool.ID)))

	require.NoError(t, fx.facade.AddAmenityToPlace(ctx, place.ID, pool.ID))
	require.NoError(t, fx.facade.DeleteAmenity(ctx, pool.ID))

	linked, err := fx.facade.ListPlaceAmenities(ctx, place.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestFacade_Users(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	ann := fx.user(t, "Ann@Example.com")
	assert.Equal(t, "ann@example.com", ann.Email)

	t.Run("emails are unique regardless of case", func(t *testing.T) {
		_, err := fx.facade.CreateUser(ctx, entities.UserInput{
			Email: "ANN@example.com", Password: "another-secret", FirstName: "A", LastName: "B",
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("short passwords are rejected", func(t *testing.T) {
		_, err := fx.facade.CreateUser(ctx, entities.UserInput{
			Email: "bob@example.com", Password: "short", FirstName: "Bob", LastName: "B",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("password hash is never stored in plaintext", func(t *testing.T) {
		stored, err := fx.users.GetByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "correct-horse", stored.PasswordHash)
		assert.NotEmpty(t, stored.PasswordHash)
	})

	t.Run("credentials", func(t *testing.T) {
		u, err := fx.facade.VerifyCredentials(ctx, "ann@EXAMPLE.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, u.ID)

		_, err = fx.facade.VerifyCredentials(ctx, "ann@example.com", "wrong-password")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("update cannot take another user's email", func(t *testing.T) {
		bob := fx.user(t, "bob@example.com")
		email := "ann@example.com"
		_, err := fx.facade.UpdateUser(ctx, bob.ID, entities.UserUpdate{Email: &email})
		assert.True(t, apperrors.IsConflict(err))

		own := "BOB@example.com"
		updated, err := fx.facade.UpdateUser(ctx, bob.ID, entities.UserUpdate{Email: &own})
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", updated.Email)
	})

	t.Run("lookup by email", func(t *testing.T) {
		u, err := fx.facade.GetUserByEmail(ctx, "ANN@example.com")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, u.ID)

		_, err = fx.facade.GetUserByEmail(ctx, "nobody@example.com")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestFacade_ConcurrentRegistrationsClaimEmailOnce(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	const attempts = 6
	var g errgroup.Group
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, err := fx.facade.CreateUser(ctx, entities.UserInput{
				Email: "race@example.com", Password: "correct-horse", FirstName: "R", LastName: "C",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return nil
			}
			if apperrors.IsConflict(err) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, succeeded)
}

func TestFacade_DeleteUser(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	guest := fx.user(t, "guest@example.com")
	other := fx.user(t, "other@example.com")
	ownPlace := fx.place(t, owner.ID)
	otherPlace := fx.place(t, other.ID)

	_, err := fx.facade.CreateReview(ctx, reviewInput(guest.ID, otherPlace.ID, 2))
	require.NoError(t, err)
	_, err = fx.facade.CreateReview(ctx, reviewInput(other.ID, ownPlace.ID, 5))
	require.NoError(t, err)
	_, err = fx.facade.CreateReview(ctx, reviewInput(owner.ID, otherPlace.ID, 4))
	require.NoError(t, err)

	t.Run("owners are not deleted without cascade", func(t *testing.T) {
		err := fx.facade.DeleteUser(ctx, owner.ID)
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
		assert.Equal(t, "places", appErr.Field)
	})

	t.Run("reviewers are not deleted without cascade", func(t *testing.T) {
		err := fx.facade.DeleteUser(ctx, guest.ID)
		require.Error(t, err)
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "reviews", appErr.Field)
	})

	t.Run("cascade removes places and reviews and recomputes ratings", func(t *testing.T) {
		before, err := fx.facade.GetPlace(ctx, otherPlace.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, before.AverageRating)

		require.NoError(t, fx.facade.DeleteUserCascade(ctx, owner.ID))

		_, err = fx.facade.GetUser(ctx, owner.ID)
		assert.True(t, apperrors.IsNotFound(err))
		_, err = fx.facade.GetPlace(ctx, ownPlace.ID)
		assert.True(t, apperrors.IsNotFound(err))

		after, err := fx.facade.GetPlace(ctx, otherPlace.ID)
		require.NoError(t, err)
		assert.Equal(t, 2.0, after.AverageRating)
		assert.Equal(t, 1, after.ReviewCount)

		byOther, err := fx.facade.ListReviewsByUser(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, byOther, "reviews on the deleted place are gone")
	})

	t.Run("user without places or reviews is deleted", func(t *testing.T) {
		lone := fx.user(t, "lone@example.com")
		require.NoError(t, fx.facade.DeleteUser(ctx, lone.ID))
		assert.True(t, apperrors.IsNotFound(fx.facade.DeleteUser(ctx, lone.ID)))
	})
}

func TestFacade_UpdatePlace(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	owner := fx.user(t, "owner@example.com")
	place := fx.place(t, owner.ID)

	price := 99.5
	updated, err := fx.facade.UpdatePlace(ctx, place.ID, entities.PlaceUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 99.5, updated.Price)
	assert.Equal(t, place.Title, updated.Title)
	assert.Greater(t, updated.Version, place.Version)

	bad := -1.0
	_, err = fx.facade.UpdatePlace(ctx, place.ID, entities.PlaceUpdate{Price: &bad})
	assert.True(t, apperrors.IsValidation(err))

	_, err = fx.facade.UpdatePlace(ctx, "missing", entities.PlaceUpdate{Price: &price})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFacade_Listings(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	owner := fx.user(t, "owner@example.com")
	guest := fx.user(t, "guest@example.com")

	owned, err := fx.facade.ListPlacesByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, owned, "an empty list is not an error")

	_, err = fx.facade.ListPlacesByUser(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = fx.facade.ListReviewsByPlace(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))

	first := fx.place(t, owner.ID)
	second := fx.place(t, owner.ID)
	_, err = fx.facade.CreateReview(ctx, reviewInput(guest.ID, second.ID, 2))
	require.NoError(t, err)

	places, err := fx.facade.ListPlaces(ctx)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, first.ID, places[0].ID, "listing keeps insertion order")

	owned, err = fx.facade.ListPlacesByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	users, err := fx.facade.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	reviews, err := fx.facade.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, second.ID, reviews[0].PlaceID)

	onFirst, err := fx.facade.ListReviewsByPlace(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, onFirst)
}

func TestFacade_UpdateAmenity(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	wifi, err := fx.facade.CreateAmenity(ctx, entities.AmenityInput{Name: "WiFi"})
	require.NoError(t, err)
	_, err = fx.facade.CreateAmenity(ctx, entities.AmenityInput{Name: "Parking"})
	require.NoError(t, err)

	taken := "PARKING"
	_, err = fx.facade.UpdateAmenity(ctx, wifi.ID, entities.AmenityUpdate{Name: &taken})
	assert.True(t, apperrors.IsConflict(err))

	sameName := "wifi"
	renamed, err := fx.facade.UpdateAmenity(ctx, wifi.ID, entities.AmenityUpdate{Name: &sameName})
	require.NoError(t, err, "an amenity may change the case of its own name")
	assert.Equal(t, "wifi", renamed.Name)

	empty := "  "
	_, err = fx.facade.UpdateAmenity(ctx, wifi.ID, entities.AmenityUpdate{Name: &empty})
	assert.True(t, apperrors.IsValidation(err))

	all, err := fx.facade.ListAmenities(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.True(t, apperrors.IsNotFound(fx.facade.DeleteAmenity(ctx, "missing")))
}

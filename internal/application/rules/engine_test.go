package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb/lodging-core/internal/adapters/memory"
	"github.com/hbnb/lodging-core/internal/application/rules"
	"github.com/hbnb/lodging-core/internal/domain/entities"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

func TestRecomputeAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"no reviews", nil, rules.EmptyAverageRating},
		{"single", []int{5}, 5},
		{"mixed", []int{5, 4, 3, 5, 3}, 4},
		{"rounds to two decimals", []int{5, 4, 4}, 4.33},
		{"rounds half away from zero", []int{1, 2, 2, 2, 2, 2, 2, 2}, 1.88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]*entities.Review, 0, len(tt.ratings))
			for _, r := range tt.ratings {
				reviews = append(reviews, &entities.Review{Rating: r})
			}
			assert.Equal(t, tt.want, rules.RecomputeAverageRating(reviews))
		})
	}
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 2.67, rules.RoundRating(8.0/3.0))
	assert.Equal(t, 3.13, rules.RoundRating(3.125))
	assert.Equal(t, 0.0, rules.RoundRating(0))
}

func TestAssertNotOwnPlace(t *testing.T) {
	place := &entities.Place{ID: "p-1", OwnerID: "u-1"}

	err := rules.AssertNotOwnPlace(place, "u-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, "user_id", appErr.Field)
	assert.Equal(t, "p-1", appErr.ID)

	assert.NoError(t, rules.AssertNotOwnPlace(place, "u-2"))
}

func TestEngine(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	places := memory.NewPlaceRepository()
	reviews := memory.NewReviewRepository()
	amenities := memory.NewAmenityRepository()
	engine := rules.NewEngine(users, places, reviews, amenities)

	_, err := users.Create(ctx, &entities.User{ID: "u-1", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = places.Create(ctx, &entities.Place{ID: "p-1", OwnerID: "u-1", Price: 10})
	require.NoError(t, err)
	_, err = reviews.Create(ctx, &entities.Review{ID: "r-1", UserID: "u-1", PlaceID: "p-1", Rating: 4})
	require.NoError(t, err)
	_, err = amenities.Create(ctx, &entities.Amenity{ID: "a-1", Name: "WiFi"})
	require.NoError(t, err)

	t.Run("unique email", func(t *testing.T) {
		assert.True(t, apperrors.IsConflict(engine.AssertUniqueEmail(ctx, "ANN@example.com", "")))
		assert.NoError(t, engine.AssertUniqueEmail(ctx, "ann@example.com", "u-1"))
		assert.NoError(t, engine.AssertUniqueEmail(ctx, "bob@example.com", ""))
	})

	t.Run("unique amenity name", func(t *testing.T) {
		assert.True(t, apperrors.IsConflict(engine.AssertUniqueAmenityName(ctx, "wifi", "")))
		assert.NoError(t, engine.AssertUniqueAmenityName(ctx, "wifi", "a-1"))
	})

	t.Run("existence", func(t *testing.T) {
		_, err := engine.AssertUserExists(ctx, "u-404")
		assert.True(t, apperrors.IsNotFound(err))

		_, err = engine.AssertOwnerExists(ctx, "u-404")
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "owner_id", appErr.Field)

		place, err := engine.AssertPlaceExists(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "u-1", place.OwnerID)

		_, err = engine.AssertAmenityExists(ctx, "a-404")
		assert.True(t, apperrors.IsNotFound(err))

		_, err = engine.AssertReviewExists(ctx, "r-1")
		assert.NoError(t, err)
	})

	t.Run("duplicate review", func(t *testing.T) {
		err := engine.AssertNoDuplicateReview(ctx, "u-1", "p-1")
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
		assert.Equal(t, "r-1", appErr.ID)

		assert.NoError(t, engine.AssertNoDuplicateReview(ctx, "u-2", "p-1"))
	})
}

package entities

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// validate is safe for concurrent use and caches nothing we mutate.
var validate = validator.New()

// ValidateEmail checks presence and address grammar
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email", "is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return apperrors.NewValidationError("email", "is not a valid address")
	}
	return nil
}

// ValidatePrice requires a finite, strictly positive price
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return apperrors.NewValidationError("price", "must be greater than 0")
	}
	return nil
}

// ValidateLatitude requires a value in [-90, 90]
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperrors.NewValidationError("latitude", "must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude requires a value in [-180, 180]
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return apperrors.NewValidationError("longitude", "must be between -180 and 180")
	}
	return nil
}

// ValidateRating requires an integer star rating in [MinRating, MaxRating]
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperrors.NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError(field, "is required")
	}
	return nil
}

package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

const maxTitleLength = 100

// Place represents a listing owned by a User.
// AverageRating and ReviewCount are derived from the place's reviews and are
// written only by the facade's recomputation step. Version increases on every
// write and backs optimistic concurrency checks.
type Place struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Latitude      float64   `json:"latitude" db:"latitude"`
	Longitude     float64   `json:"longitude" db:"longitude"`
	OwnerID       string    `json:"owner_id" db:"owner_id"`
	AverageRating float64   `json:"average_rating" db:"average_rating"`
	ReviewCount   int       `json:"review_count" db:"review_count"`
	Version       int64     `json:"version" db:"version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PlaceInput carries the caller-supplied fields for a new place
type PlaceInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	OwnerID     string  `json:"owner_id"`
}

// PlaceUpdate is a partial update. Ownership and derived rating are not updatable.
type PlaceUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	UpdatedAt   time.Time `json:"-"`
}

// ValidatePlaceInput returns the accepted input or a ValidationError
func ValidatePlaceInput(in PlaceInput) (PlaceInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.OwnerID = strings.TrimSpace(in.OwnerID)

	if err := validateTitle(in.Title); err != nil {
		return PlaceInput{}, err
	}
	if err := ValidatePrice(in.Price); err != nil {
		return PlaceInput{}, err
	}
	if err := ValidateLatitude(in.Latitude); err != nil {
		return PlaceInput{}, err
	}
	if err := ValidateLongitude(in.Longitude); err != nil {
		return PlaceInput{}, err
	}
	if err := requireID("owner_id", in.OwnerID); err != nil {
		return PlaceInput{}, err
	}
	return in, nil
}

// ValidatePlaceUpdate validates only the fields present in the update
func ValidatePlaceUpdate(up PlaceUpdate) (PlaceUpdate, error) {
	if up.Title != nil {
		title := strings.TrimSpace(*up.Title)
		if err := validateTitle(title); err != nil {
			return PlaceUpdate{}, err
		}
		up.Title = &title
	}
	if up.Price != nil {
		if err := ValidatePrice(*up.Price); err != nil {
			return PlaceUpdate{}, err
		}
	}
	if up.Latitude != nil {
		if err := ValidateLatitude(*up.Latitude); err != nil {
			return PlaceUpdate{}, err
		}
	}
	if up.Longitude != nil {
		if err := ValidateLongitude(*up.Longitude); err != nil {
			return PlaceUpdate{}, err
		}
	}
	return up, nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperrors.NewValidationError("title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return apperrors.NewValidationError("title", "must be at most 100 characters")
	}
	return nil
}

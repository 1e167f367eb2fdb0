package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// Amenity is a named feature that places can offer
type Amenity struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AmenityInput carries the caller-supplied fields for a new amenity
type AmenityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AmenityUpdate is a partial update
type AmenityUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"-"`
}

// NormalizeAmenityName is the canonical form used for uniqueness checks
func NormalizeAmenityName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateAmenityInput returns the accepted input or a ValidationError
func ValidateAmenityInput(in AmenityInput) (AmenityInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateAmenityName(in.Name); err != nil {
		return AmenityInput{}, err
	}
	return in, nil
}

// ValidateAmenityUpdate validates only the fields present in the update
func ValidateAmenityUpdate(up AmenityUpdate) (AmenityUpdate, error) {
	if up.Name != nil {
		name := strings.TrimSpace(*up.Name)
		if err := validateAmenityName(name); err != nil {
			return AmenityUpdate{}, err
		}
		up.Name = &name
	}
	return up, nil
}

func validateAmenityName(name string) error {
	if name == "" {
		return apperrors.NewValidationError("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperrors.NewValidationError("name", "must be at most 50 characters")
	}
	return nil
}

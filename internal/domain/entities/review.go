package entities

import (
	"strings"
	"time"

	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// Star rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a user's rating of a place. A user reviews a place at most once.
type Review struct {
	ID        string    `json:"id" db:"id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	UserID    string    `json:"user_id" db:"user_id"`
	PlaceID   string    `json:"place_id" db:"place_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewInput carries the caller-supplied fields for a new review
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	UserID  string `json:"user_id"`
	PlaceID string `json:"place_id"`
}

// ReviewUpdate is a partial update. Author and place are fixed once created.
type ReviewUpdate struct {
	Rating    *int      `json:"rating,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	UpdatedAt time.Time `json:"-"`
}

// ValidateReviewInput returns the accepted input or a ValidationError
func ValidateReviewInput(in ReviewInput) (ReviewInput, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	in.UserID = strings.TrimSpace(in.UserID)
	in.PlaceID = strings.TrimSpace(in.PlaceID)

	if err := ValidateRating(in.Rating); err != nil {
		return ReviewInput{}, err
	}
	if in.Comment == "" {
		return ReviewInput{}, apperrors.NewValidationError("comment", "is required")
	}
	if err := requireID("user_id", in.UserID); err != nil {
		return ReviewInput{}, err
	}
	if err := requireID("place_id", in.PlaceID); err != nil {
		return ReviewInput{}, err
	}
	return in, nil
}

// ValidateReviewUpdate validates only the fields present in the update
func ValidateReviewUpdate(up ReviewUpdate) (ReviewUpdate, error) {
	if up.Rating != nil {
		if err := ValidateRating(*up.Rating); err != nil {
			return ReviewUpdate{}, err
		}
	}
	if up.Comment != nil {
		comment := strings.TrimSpace(*up.Comment)
		if comment == "" {
			return ReviewUpdate{}, apperrors.NewValidationError("comment", "is required")
		}
		up.Comment = &comment
	}
	return up, nil
}

package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// MinPasswordLength is the minimum plaintext password length accepted at registration
const MinPasswordLength = 8

const maxNameLength = 50

// User represents an account that can own places and write reviews.
// PasswordHash never leaves the core; callers receive a PublicUser.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicUser is the caller-facing shape of a User
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips the password hash
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserInput carries the caller-supplied fields for registration
type UserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// UserUpdate is a partial update from a caller. Nil fields are left untouched.
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// UserPatch is the repository-level partial update
type UserPatch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	UpdatedAt    time.Time
}

// NormalizeEmail is the canonical form used for storage and uniqueness
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUserInput returns the accepted, normalized input or a ValidationError
func ValidateUserInput(in UserInput) (UserInput, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := ValidateEmail(in.Email); err != nil {
		return UserInput{}, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return UserInput{}, err
	}
	if err := validatePersonName("first_name", in.FirstName); err != nil {
		return UserInput{}, err
	}
	if err := validatePersonName("last_name", in.LastName); err != nil {
		return UserInput{}, err
	}
	return in, nil
}

// ValidateUserUpdate validates only the fields present in the update
func ValidateUserUpdate(up UserUpdate) (UserUpdate, error) {
	if up.Email != nil {
		email := NormalizeEmail(*up.Email)
		if err := ValidateEmail(email); err != nil {
			return UserUpdate{}, err
		}
		up.Email = &email
	}
	if up.Password != nil {
		if err := ValidatePassword(*up.Password); err != nil {
			return UserUpdate{}, err
		}
	}
	if up.FirstName != nil {
		name := strings.TrimSpace(*up.FirstName)
		if err := validatePersonName("first_name", name); err != nil {
			return UserUpdate{}, err
		}
		up.FirstName = &name
	}
	if up.LastName != nil {
		name := strings.TrimSpace(*up.LastName)
		if err := validatePersonName("last_name", name); err != nil {
			return UserUpdate{}, err
		}
		up.LastName = &name
	}
	return up, nil
}

// ValidatePassword checks the plaintext password policy
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperrors.NewValidationError("password", "must be at least 8 characters")
	}
	return nil
}

func validatePersonName(field, name string) error {
	if name == "" {
		return apperrors.NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperrors.NewValidationError(field, "must be at most 50 characters")
	}
	return nil
}

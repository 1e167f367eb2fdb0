// Package credentials implements password hashing for the facade.
package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hbnb/lodging-core/internal/domain/providers"
	"github.com/hbnb/lodging-core/pkg/config"
)

// BcryptHasher hashes passwords with bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher; out-of-range costs fall back to bcrypt.DefaultCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

var _ providers.CredentialHasher = (*BcryptHasher)(nil)

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// NewHasher builds the hasher selected by configuration
func NewHasher(cfg config.CredentialsConfig) (providers.CredentialHasher, error) {
	switch cfg.Hasher {
	case "bcrypt", "":
		return NewBcryptHasher(cfg.BcryptCost), nil
	case "argon2id":
		return NewArgon2Hasher(DefaultArgon2Params()), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", cfg.Hasher)
	}
}

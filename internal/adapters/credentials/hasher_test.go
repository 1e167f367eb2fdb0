package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hbnb/lodging-core/pkg/config"
)

func TestHashers(t *testing.T) {
	cheapArgon := DefaultArgon2Params()
	cheapArgon.Memory = 8 * 1024

	hashers := map[string]interface {
		Hash(string) (string, error)
		Verify(string, string) bool
	}{
		"bcrypt":   NewBcryptHasher(bcrypt.MinCost),
		"argon2id": NewArgon2Hasher(cheapArgon),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("correct horse")
			require.NoError(t, err)
			assert.NotContains(t, hash, "correct horse")

			assert.True(t, h.Verify("correct horse", hash))
			assert.False(t, h.Verify("wrong horse", hash))
			assert.False(t, h.Verify("correct horse", "garbage"))

			again, err := h.Hash("correct horse")
			require.NoError(t, err)
			assert.NotEqual(t, hash, again, "hashes are salted")
		})
	}
}

func TestArgon2Hasher_Format(t *testing.T) {
	hash, err := NewArgon2Hasher(DefaultArgon2Params()).Hash("password1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher(config.CredentialsConfig{Hasher: "bcrypt", BcryptCost: 99})
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.(*BcryptHasher).cost)

	h, err = NewHasher(config.CredentialsConfig{Hasher: "argon2id"})
	require.NoError(t, err)
	assert.IsType(t, &Argon2Hasher{}, h)

	_, err = NewHasher(config.CredentialsConfig{Hasher: "md5"})
	assert.Error(t, err)
}

package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOCK_BACKEND", "memory")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("APP_ENV", "test")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("OTEL_ENABLED", "false")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := run(root)
	return stdout.String(), err
}

func TestSeed_ConcurrentReviewsProduceExactAverages(t *testing.T) {
	out, err := runCLI(t, "seed", "--guests", "4", "--concurrency", "6")
	require.NoError(t, err)

	var summary seedSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 3, summary.Amenities)
	assert.Equal(t, 12, summary.Reviews)

	require.Len(t, summary.Places, 3)
	want := []float64{2.5, 3.5, 3.25}
	for i, place := range summary.Places {
		assert.Equal(t, 4, place.ReviewCount, place.Title)
		assert.InDelta(t, want[i], place.AverageRating, 1e-9, place.Title)
	}
}

func TestSeed_RejectsZeroGuests(t *testing.T) {
	_, err := runCLI(t, "seed", "--guests", "0")
	assert.Error(t, err)
}

func TestPlaceCreate_InvalidPrice(t *testing.T) {
	_, err := runCLI(t, "place", "create", "--title", "Shed", "--price", "-5", "--owner", "u-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUserCreate_PrintsPublicView(t *testing.T) {
	out, err := runCLI(t, "user", "create",
		"--email", "Ada@Example.com", "--password", "s3cret-pass",
		"--first-name", "Ada", "--last-name", "Lovelace")
	require.NoError(t, err)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, out, "password")
}

func TestUserGet_UnknownEmail(t *testing.T) {
	_, err := runCLI(t, "user", "get", "--email", "nobody@example.com")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMigrate_MemoryStoreIsNoop(t *testing.T) {
	_, err := runCLI(t, "migrate")
	assert.NoError(t, err)
}

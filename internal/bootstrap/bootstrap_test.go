package bootstrap

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Name: "lodging-test", Env: "test"},
		Store:       config.StoreConfig{Driver: "memory"},
		Locks:       config.LockConfig{Backend: "memory", TTL: time.Second, Prefix: "lock:"},
		Events:      config.EventsConfig{Channel: "lodging:events"},
		Credentials: config.CredentialsConfig{Hasher: "bcrypt", BcryptCost: 4},
		Facade:      config.FacadeConfig{RecomputeAttempts: 3, ForbidSelfReview: true},
	}
}

func exercise(t *testing.T, app *App) {
	t.Helper()
	ctx := context.Background()

	owner, err := app.Facade.CreateUser(ctx, entities.UserInput{
		Email: "owner@example.com", Password: "owner-pass", FirstName: "Olu", LastName: "Owner",
	})
	require.NoError(t, err)
	guest, err := app.Facade.CreateUser(ctx, entities.UserInput{
		Email: "guest@example.com", Password: "guest-pass", FirstName: "Gia", LastName: "Guest",
	})
	require.NoError(t, err)

	place, err := app.Facade.CreatePlace(ctx, entities.PlaceInput{Title: "Loft", Price: 80, OwnerID: owner.ID})
	require.NoError(t, err)

	_, err = app.Facade.CreateReview(ctx, entities.ReviewInput{Rating: 4, Comment: "Nice", UserID: guest.ID, PlaceID: place.ID})
	require.NoError(t, err)

	got, err := app.Facade.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.AverageRating)
	assert.Equal(t, 1, got.ReviewCount)
}

func TestBuild_MemoryStore(t *testing.T) {
	app, err := Build(context.Background(), testConfig())
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Nil(t, app.sql)
	assert.NoError(t, app.Migrate(context.Background()))
	exercise(t, app)
}

func TestBuild_SQLiteStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = "sqlite"
	cfg.SQLite.Path = ":memory:"

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close(context.Background())

	require.NotNil(t, app.sql)
	assert.Equal(t, "sqlite3", app.sql.Dialect())
	exercise(t, app)
}

func TestBuild_RedisBackedComponents(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: mustPort(t, mr)}
	cfg.Locks.Backend = "redis"
	cfg.Cache = config.CacheConfig{Enabled: true, TTLSeconds: 60, WarmLimit: 10}
	cfg.Events.Enabled = true

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close(context.Background())

	events, err := app.Events.Subscribe(context.Background())
	require.NoError(t, err)

	exercise(t, app)
	assert.NotEmpty(t, mr.Keys(), "place cache entries live in redis")

	select {
	case event := <-events:
		assert.Equal(t, entities.EventUserCreated, event.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received over redis")
	}
}

func TestBuild_UnreachableRedisClosesOpenedStores(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = "sqlite"
	cfg.SQLite.Path = ":memory:"
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}
	cfg.Cache.Enabled = true

	app, err := Build(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, app)
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}

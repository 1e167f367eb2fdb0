// Package bootstrap builds a Facade and its collaborators from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hbnb/lodging-core/internal/adapters/cache"
	"github.com/hbnb/lodging-core/internal/adapters/credentials"
	"github.com/hbnb/lodging-core/internal/adapters/database"
	"github.com/hbnb/lodging-core/internal/adapters/events"
	"github.com/hbnb/lodging-core/internal/adapters/locks"
	"github.com/hbnb/lodging-core/internal/adapters/memory"
	"github.com/hbnb/lodging-core/internal/application/services"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	"github.com/hbnb/lodging-core/internal/infrastructure/clients/postgres"
	redisclient "github.com/hbnb/lodging-core/internal/infrastructure/clients/redis"
	"github.com/hbnb/lodging-core/internal/infrastructure/clients/sqlite"
	"github.com/hbnb/lodging-core/internal/infrastructure/observability"
	"github.com/hbnb/lodging-core/pkg/config"
)

// App is a wired Facade plus the resources it holds open
type App struct {
	Facade *services.Facade
	Events providers.EventBus

	sql     database.SQLClient
	closers []func(context.Context) error
}

type stores struct {
	users     repositories.UserRepository
	places    repositories.PlaceRepository
	reviews   repositories.ReviewRepository
	amenities repositories.AmenityRepository
}

// Build connects every configured backend and returns the wired App.
// On error, anything already opened is closed again.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			app.Close(context.WithoutCancel(ctx))
		}
	}()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to setup OpenTelemetry, continuing without tracing")
		} else {
			app.closers = append(app.closers, shutdown)
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	st, err := app.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var rc *redisclient.Client
	if cfg.NeedsRedis() {
		rc, err = redisclient.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return rc.Close() })
	}

	if cfg.Cache.Enabled {
		cached := database.NewCachedPlaceAdapter(st.places, cache.NewRedisAdapter(rc, cfg.App.Name+":"), cfg.Cache.TTLSeconds, metrics)
		if cfg.Cache.WarmLimit > 0 {
			if _, err := cached.Warm(ctx, cfg.Cache.WarmLimit); err != nil {
				log.Warn().Err(err).Msg("failed to warm place cache")
			}
		}
		st.places = cached
		log.Info().Int("ttl_seconds", cfg.Cache.TTLSeconds).Msg("place cache enabled")
	}

	var locker providers.LockProvider = locks.NewMemoryLocker()
	if cfg.Locks.Backend == "redis" {
		locker = locks.NewRedisLocker(rc, cfg.Locks.TTL, cfg.Locks.Prefix)
	}

	var bus providers.EventBus = events.NewLocalEventBus()
	if cfg.Events.Enabled {
		bus = events.NewRedisEventBus(rc, cfg.Events.Channel)
	}
	app.Events = bus
	app.closers = append(app.closers, func(context.Context) error { return bus.Close() })

	hasher, err := credentials.NewHasher(cfg.Credentials)
	if err != nil {
		return nil, err
	}

	facade, err := services.NewFacade(services.FacadeDeps{
		Users:     st.users,
		Places:    st.places,
		Reviews:   st.reviews,
		Amenities: st.amenities,
		Hasher:    hasher,
		Locks:     locker,
		Events:    bus,
		Metrics:   metrics,
		Config:    cfg.Facade,
	})
	if err != nil {
		return nil, err
	}
	app.Facade = facade

	log.Info().
		Str("store", cfg.Store.Driver).
		Str("locks", cfg.Locks.Backend).
		Bool("cache", cfg.Cache.Enabled).
		Bool("events", cfg.Events.Enabled).
		Msg("facade ready")
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case "postgres":
		client, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.attachSQL(client, client.Close)
	case "sqlite":
		client, err := sqlite.NewClient(ctx, &cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		a.attachSQL(client, client.Close)
		// The embedded database has no separate migration step.
		if err := database.Migrate(ctx, client); err != nil {
			return nil, err
		}
	default:
		return &stores{
			users:     memory.NewUserRepository(),
			places:    memory.NewPlaceRepository(),
			reviews:   memory.NewReviewRepository(),
			amenities: memory.NewAmenityRepository(),
		}, nil
	}

	return &stores{
		users:     database.NewUserAdapter(a.sql),
		places:    database.NewPlaceAdapter(a.sql),
		reviews:   database.NewReviewAdapter(a.sql),
		amenities: database.NewAmenityAdapter(a.sql),
	}, nil
}

func (a *App) attachSQL(client database.SQLClient, closeFn func() error) {
	a.sql = client
	a.closers = append(a.closers, func(context.Context) error { return closeFn() })
}

// Migrate creates the relational schema. It is a no-op for the memory store.
func (a *App) Migrate(ctx context.Context) error {
	if a.sql == nil {
		log.Info().Msg("memory store selected, nothing to migrate")
		return nil
	}
	return database.Migrate(ctx, a.sql)
}

// Close releases resources in reverse order of acquisition
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("error during shutdown")
		}
	}
	a.closers = nil
}

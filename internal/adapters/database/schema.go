// Package database implements the repositories on top of SQL databases.
// Queries are built with goqu so the same adapters serve Postgres and SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLClient is a database connection and the goqu dialect that speaks to it
type SQLClient interface {
	DB() *sql.DB
	Dialect() string
}

// Table names
const (
	usersTable          = "users"
	placesTable         = "places"
	reviewsTable        = "reviews"
	amenitiesTable      = "amenities"
	placeAmenitiesTable = "place_amenities"
)

// schema is kept to types both Postgres and SQLite accept
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS places (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		price          DOUBLE PRECISION NOT NULL CHECK (price > 0),
		latitude       DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude      DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		owner_id       TEXT NOT NULL REFERENCES users(id),
		average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count   INTEGER NOT NULL DEFAULT 0,
		version        BIGINT NOT NULL DEFAULT 1,
		created_at     TIMESTAMP NOT NULL,
		updated_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         TEXT PRIMARY KEY,
		rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment    TEXT NOT NULL,
		user_id    TEXT NOT NULL REFERENCES users(id),
		place_id   TEXT NOT NULL REFERENCES places(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (user_id, place_id)
	)`,
	`CREATE TABLE IF NOT EXISTS amenities (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		name_key    TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS place_amenities (
		place_id   TEXT NOT NULL REFERENCES places(id),
		amenity_id TEXT NOT NULL REFERENCES amenities(id),
		PRIMARY KEY (place_id, amenity_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_places_owner_id ON places(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user_id ON reviews(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_place_amenities_amenity_id ON place_amenities(amenity_id)`,
}

// Migrate creates the tables and indexes if they do not exist yet
func Migrate(ctx context.Context, client SQLClient) error {
	for i, stmt := range schema {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	log.Info().Str("dialect", client.Dialect()).Int("statements", len(schema)).Msg("schema migrated")
	return nil
}

func newDatabase(client SQLClient) *goqu.Database {
	return goqu.New(client.Dialect(), client.DB())
}

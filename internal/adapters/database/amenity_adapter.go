package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

var amenityColumns = []interface{}{
	"id", "name", "description", "created_at", "updated_at",
}

// AmenityAdapter implements AmenityRepository, including the place_amenities link table
type AmenityAdapter struct {
	client SQLClient
	db     *goqu.Database
}

// NewAmenityAdapter creates a new amenity adapter
func NewAmenityAdapter(client SQLClient) repositories.AmenityRepository {
	return &AmenityAdapter{
		client: client,
		db:     newDatabase(client),
	}
}

// Create inserts an amenity. Names are unique case-insensitively through name_key.
func (a *AmenityAdapter) Create(ctx context.Context, amenity *entities.Amenity) (*entities.Amenity, error) {
	row := *amenity
	record := goqu.Record{
		"id":          row.ID,
		"name":        row.Name,
		"name_key":    entities.NormalizeAmenityName(row.Name),
		"description": row.Description,
		"created_at":  row.CreatedAt,
		"updated_at":  row.UpdatedAt,
	}

	query, args, err := a.db.Insert(amenitiesTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return nil, writeError(err, "name", "amenity name already exists", "failed to create amenity")
	}
	return &row, nil
}

// GetByID retrieves an amenity by ID
func (a *AmenityAdapter) GetByID(ctx context.Context, id string) (*entities.Amenity, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetByName retrieves an amenity by name, compared case-insensitively
func (a *AmenityAdapter) GetByName(ctx context.Context, name string) (*entities.Amenity, error) {
	return a.getOne(ctx, goqu.Ex{"name_key": entities.NormalizeAmenityName(name)})
}

func (a *AmenityAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.Amenity, error) {
	query, args, err := a.db.From(amenitiesTable).Prepared(true).
		Select(amenityColumns...).
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	amenity, err := scanAmenity(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get amenity", err)
	}
	return amenity, nil
}

// List returns every amenity in creation order
func (a *AmenityAdapter) List(ctx context.Context) ([]*entities.Amenity, error) {
	query, args, err := a.db.From(amenitiesTable).Prepared(true).
		Select(amenityColumns...).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}
	return a.query(ctx, query, args)
}

// Update applies a partial update
func (a *AmenityAdapter) Update(ctx context.Context, id string, patch entities.AmenityUpdate) (*entities.Amenity, error) {
	record := goqu.Record{"updated_at": patch.UpdatedAt}
	if patch.Name != nil {
		record["name"] = *patch.Name
		record["name_key"] = entities.NormalizeAmenityName(*patch.Name)
	}
	if patch.Description != nil {
		record["description"] = *patch.Description
	}

	query, args, err := a.db.Update(amenitiesTable).Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, writeError(err, "name", "amenity name already exists", "failed to update amenity")
	}
	if err := requireAffected(result, "amenity", id); err != nil {
		return nil, err
	}
	return a.GetByID(ctx, id)
}

// Delete deletes an amenity
func (a *AmenityAdapter) Delete(ctx context.Context, id string) error {
	return deleteWhere(ctx, a.client, a.db, amenitiesTable, goqu.Ex{"id": id}, "amenity", id)
}

// Link associates an amenity with a place; an existing link is left as is
func (a *AmenityAdapter) Link(ctx context.Context, placeID, amenityID string) error {
	query, args, err := a.db.Insert(placeAmenitiesTable).Prepared(true).
		Rows(goqu.Record{"place_id": placeID, "amenity_id": amenityID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build link query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return apperrors.NewPersistenceError("failed to link amenity", err)
	}
	return nil
}

// Unlink removes one association
func (a *AmenityAdapter) Unlink(ctx context.Context, placeID, amenityID string) error {
	return deleteWhere(ctx, a.client, a.db, placeAmenitiesTable,
		goqu.Ex{"place_id": placeID, "amenity_id": amenityID}, "amenity link", placeID+"/"+amenityID)
}

// UnlinkAllForPlace removes every association of a place
func (a *AmenityAdapter) UnlinkAllForPlace(ctx context.Context, placeID string) error {
	return a.unlinkAll(ctx, goqu.Ex{"place_id": placeID})
}

// UnlinkAllForAmenity removes every association of an amenity
func (a *AmenityAdapter) UnlinkAllForAmenity(ctx context.Context, amenityID string) error {
	return a.unlinkAll(ctx, goqu.Ex{"amenity_id": amenityID})
}

func (a *AmenityAdapter) unlinkAll(ctx context.Context, where goqu.Ex) error {
	query, args, err := a.db.Delete(placeAmenitiesTable).Prepared(true).Where(where).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build unlink query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to unlink amenities", err)
	}
	return nil
}

// ListByPlace returns the amenities linked to a place
func (a *AmenityAdapter) ListByPlace(ctx context.Context, placeID string) ([]*entities.Amenity, error) {
	query, args, err := a.db.From(goqu.T(amenitiesTable).As("a")).Prepared(true).
		Join(goqu.T(placeAmenitiesTable).As("pa"), goqu.On(goqu.I("pa.amenity_id").Eq(goqu.I("a.id")))).
		Select(
			goqu.I("a.id"), goqu.I("a.name"), goqu.I("a.description"),
			goqu.I("a.created_at"), goqu.I("a.updated_at"),
		).
		Where(goqu.I("pa.place_id").Eq(placeID)).
		Order(goqu.I("a.created_at").Asc(), goqu.I("a.id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.query(ctx, query, args)
}

func (a *AmenityAdapter) query(ctx context.Context, query string, args []interface{}) ([]*entities.Amenity, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list amenities", err)
	}
	defer rows.Close()

	amenities := make([]*entities.Amenity, 0)
	for rows.Next() {
		amenity, err := scanAmenity(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan amenity", err)
		}
		amenities = append(amenities, amenity)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate amenities", err)
	}
	return amenities, nil
}

func scanAmenity(row rowScanner) (*entities.Amenity, error) {
	amenity := &entities.Amenity{}
	err := row.Scan(
		&amenity.ID,
		&amenity.Name,
		&amenity.Description,
		&amenity.CreatedAt,
		&amenity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return amenity, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

var placeColumns = []interface{}{
	"id", "title", "description", "price", "latitude", "longitude", "owner_id",
	"average_rating", "review_count", "version", "created_at", "updated_at",
}

// PlaceAdapter implements PlaceRepository
type PlaceAdapter struct {
	client SQLClient
	db     *goqu.Database
}

// NewPlaceAdapter creates a new place adapter
func NewPlaceAdapter(client SQLClient) repositories.PlaceRepository {
	return &PlaceAdapter{
		client: client,
		db:     newDatabase(client),
	}
}

// Create inserts a place
func (a *PlaceAdapter) Create(ctx context.Context, place *entities.Place) (*entities.Place, error) {
	row := *place
	if row.Version == 0 {
		row.Version = 1
	}

	record := goqu.Record{
		"id":             row.ID,
		"title":          row.Title,
		"description":    row.Description,
		"price":          row.Price,
		"latitude":       row.Latitude,
		"longitude":      row.Longitude,
		"owner_id":       row.OwnerID,
		"average_rating": row.AverageRating,
		"review_count":   row.ReviewCount,
		"version":        row.Version,
		"created_at":     row.CreatedAt,
		"updated_at":     row.UpdatedAt,
	}

	query, args, err := a.db.Insert(placesTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.NewPersistenceError("failed to create place", err)
	}
	return &row, nil
}

// GetByID retrieves a place by ID
func (a *PlaceAdapter) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	query, args, err := a.db.From(placesTable).Prepared(true).
		Select(placeColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	place, err := scanPlace(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get place", err)
	}
	return place, nil
}

// ListByOwner retrieves places owned by a user
func (a *PlaceAdapter) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	return a.list(ctx, goqu.Ex{"owner_id": ownerID})
}

// List returns every place in creation order
func (a *PlaceAdapter) List(ctx context.Context) ([]*entities.Place, error) {
	return a.list(ctx, nil)
}

func (a *PlaceAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.Place, error) {
	ds := a.db.From(placesTable).Prepared(true).Select(placeColumns...)
	if where != nil {
		ds = ds.Where(where)
	}
	query, args, err := ds.Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list places", err)
	}
	defer rows.Close()

	places := make([]*entities.Place, 0)
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan place", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate places", err)
	}
	return places, nil
}

// Update applies a partial update and bumps the version
func (a *PlaceAdapter) Update(ctx context.Context, id string, patch entities.PlaceUpdate) (*entities.Place, error) {
	record := goqu.Record{
		"version":    goqu.L("version + 1"),
		"updated_at": patch.UpdatedAt,
	}
	if patch.Title != nil {
		record["title"] = *patch.Title
	}
	if patch.Description != nil {
		record["description"] = *patch.Description
	}
	if patch.Price != nil {
		record["price"] = *patch.Price
	}
	if patch.Latitude != nil {
		record["latitude"] = *patch.Latitude
	}
	if patch.Longitude != nil {
		record["longitude"] = *patch.Longitude
	}

	query, args, err := a.db.Update(placesTable).Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to update place", err)
	}
	if err := requireAffected(result, "place", id); err != nil {
		return nil, err
	}
	return a.GetByID(ctx, id)
}

// UpdateRating stores the derived rating guarded by the expected version
func (a *PlaceAdapter) UpdateRating(ctx context.Context, id string, average float64, count int, expectedVersion int64) (*entities.Place, error) {
	query, args, err := a.db.Update(placesTable).Prepared(true).
		Set(goqu.Record{
			"average_rating": average,
			"review_count":   count,
			"version":        goqu.L("version + 1"),
		}).
		Where(goqu.Ex{"id": id, "version": expectedVersion}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build rating update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to store average rating", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get rows affected", err)
	}

	current, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFoundError("place", id)
	}
	if rowsAffected == 0 {
		return nil, apperrors.NewConcurrencyError(id,
			fmt.Sprintf("place version is %d, expected %d", current.Version, expectedVersion), nil)
	}
	return current, nil
}

// Delete deletes a place
func (a *PlaceAdapter) Delete(ctx context.Context, id string) error {
	return deleteWhere(ctx, a.client, a.db, placesTable, goqu.Ex{"id": id}, "place", id)
}

func scanPlace(row rowScanner) (*entities.Place, error) {
	place := &entities.Place{}
	err := row.Scan(
		&place.ID,
		&place.Title,
		&place.Description,
		&place.Price,
		&place.Latitude,
		&place.Longitude,
		&place.OwnerID,
		&place.AverageRating,
		&place.ReviewCount,
		&place.Version,
		&place.CreatedAt,
		&place.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return place, nil
}

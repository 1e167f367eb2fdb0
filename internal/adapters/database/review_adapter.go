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

var reviewColumns = []interface{}{
	"id", "rating", "comment", "user_id", "place_id", "created_at", "updated_at",
}

// ReviewAdapter implements ReviewRepository
type ReviewAdapter struct {
	client SQLClient
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client SQLClient) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     newDatabase(client),
	}
}

// Create inserts a review; the (user_id, place_id) pair is unique
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) (*entities.Review, error) {
	row := *review
	record := goqu.Record{
		"id":         row.ID,
		"rating":     row.Rating,
		"comment":    row.Comment,
		"user_id":    row.UserID,
		"place_id":   row.PlaceID,
		"created_at": row.CreatedAt,
		"updated_at": row.UpdatedAt,
	}

	query, args, err := a.db.Insert(reviewsTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return nil, writeError(err, "place_id", "user has already reviewed this place", "failed to create review")
	}
	return &row, nil
}

// GetByID retrieves a review by ID
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetByUserAndPlace retrieves the review a user wrote for a place
func (a *ReviewAdapter) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	return a.getOne(ctx, goqu.Ex{"user_id": userID, "place_id": placeID})
}

func (a *ReviewAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.Review, error) {
	query, args, err := a.db.From(reviewsTable).Prepared(true).
		Select(reviewColumns...).
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get review", err)
	}
	return review, nil
}

// ListByPlace retrieves the reviews of a place
func (a *ReviewAdapter) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	return a.list(ctx, goqu.Ex{"place_id": placeID})
}

// ListByUser retrieves the reviews a user wrote
func (a *ReviewAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Review, error) {
	return a.list(ctx, goqu.Ex{"user_id": userID})
}

// List returns every review in creation order
func (a *ReviewAdapter) List(ctx context.Context) ([]*entities.Review, error) {
	return a.list(ctx, nil)
}

func (a *ReviewAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.Review, error) {
	ds := a.db.From(reviewsTable).Prepared(true).Select(reviewColumns...)
	if where != nil {
		ds = ds.Where(where)
	}
	query, args, err := ds.Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := make([]*entities.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate reviews", err)
	}
	return reviews, nil
}

// Update applies a partial update
func (a *ReviewAdapter) Update(ctx context.Context, id string, patch entities.ReviewUpdate) (*entities.Review, error) {
	record := goqu.Record{"updated_at": patch.UpdatedAt}
	if patch.Rating != nil {
		record["rating"] = *patch.Rating
	}
	if patch.Comment != nil {
		record["comment"] = *patch.Comment
	}

	query, args, err := a.db.Update(reviewsTable).Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to update review", err)
	}
	if err := requireAffected(result, "review", id); err != nil {
		return nil, err
	}
	return a.GetByID(ctx, id)
}

// Delete deletes a review
func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	return deleteWhere(ctx, a.client, a.db, reviewsTable, goqu.Ex{"id": id}, "review", id)
}

// DeleteByPlace deletes every review of a place
func (a *ReviewAdapter) DeleteByPlace(ctx context.Context, placeID string) (int, error) {
	query, args, err := a.db.Delete(reviewsTable).Prepared(true).
		Where(goqu.Ex{"place_id": placeID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewPersistenceError("failed to delete place reviews", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewPersistenceError("failed to get rows affected", err)
	}
	return int(removed), nil
}

func scanReview(row rowScanner) (*entities.Review, error) {
	review := &entities.Review{}
	err := row.Scan(
		&review.ID,
		&review.Rating,
		&review.Comment,
		&review.UserID,
		&review.PlaceID,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}

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

var userColumns = []interface{}{
	"id", "email", "password_hash", "first_name", "last_name",
	"is_admin", "created_at", "updated_at",
}

// UserAdapter implements UserRepository
type UserAdapter struct {
	client SQLClient
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client SQLClient) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     newDatabase(client),
	}
}

// Create inserts a user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	row := *user
	row.Email = entities.NormalizeEmail(row.Email)

	record := goqu.Record{
		"id":            row.ID,
		"email":         row.Email,
		"password_hash": row.PasswordHash,
		"first_name":    row.FirstName,
		"last_name":     row.LastName,
		"is_admin":      row.IsAdmin,
		"created_at":    row.CreatedAt,
		"updated_at":    row.UpdatedAt,
	}

	query, args, err := a.db.Insert(usersTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return nil, writeError(err, "email", "email already registered", "failed to create user")
	}
	return &row, nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetByEmail retrieves a user by normalized email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"email": entities.NormalizeEmail(email)})
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.User, error) {
	query, args, err := a.db.From(usersTable).Prepared(true).
		Select(userColumns...).
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get user", err)
	}
	return user, nil
}

// List returns every user in creation order
func (a *UserAdapter) List(ctx context.Context) ([]*entities.User, error) {
	query, args, err := a.db.From(usersTable).Prepared(true).
		Select(userColumns...).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list users", err)
	}
	defer rows.Close()

	users := make([]*entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate users", err)
	}
	return users, nil
}

// Update applies a partial update
func (a *UserAdapter) Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error) {
	record := goqu.Record{"updated_at": patch.UpdatedAt}
	if patch.Email != nil {
		record["email"] = entities.NormalizeEmail(*patch.Email)
	}
	if patch.PasswordHash != nil {
		record["password_hash"] = *patch.PasswordHash
	}
	if patch.FirstName != nil {
		record["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		record["last_name"] = *patch.LastName
	}

	query, args, err := a.db.Update(usersTable).Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, writeError(err, "email", "email already registered", "failed to update user")
	}
	if err := requireAffected(result, "user", id); err != nil {
		return nil, err
	}
	return a.GetByID(ctx, id)
}

// Delete deletes a user
func (a *UserAdapter) Delete(ctx context.Context, id string) error {
	return deleteWhere(ctx, a.client, a.db, usersTable, goqu.Ex{"id": id}, "user", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entities.User, error) {
	user := &entities.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func requireAffected(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewPersistenceError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(entity, id)
	}
	return nil
}

func deleteWhere(ctx context.Context, client SQLClient, db *goqu.Database, table string, where goqu.Ex, entity, id string) error {
	query, args, err := db.Delete(table).Prepared(true).Where(where).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewPersistenceError("failed to delete "+entity, err)
	}
	return requireAffected(result, entity, id)
}

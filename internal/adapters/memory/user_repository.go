package memory

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// UserRepository stores users in process memory
type UserRepository struct {
	t *table[entities.User]
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{t: newTable[entities.User]()}
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if r.t.get(user.ID) != nil {
		return nil, apperrors.NewPersistenceError("duplicate user id "+user.ID, nil)
	}
	email := entities.NormalizeEmail(user.Email)
	if r.t.first(func(u *entities.User) bool { return u.Email == email }) != nil {
		return nil, apperrors.NewConflictError("email", "email already registered")
	}
	row := *user
	row.Email = email
	r.t.put(row.ID, &row)
	return r.t.get(row.ID), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.get(id), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	email = entities.NormalizeEmail(email)
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.first(func(u *entities.User) bool { return u.Email == email }), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(nil), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	user := r.t.get(id)
	if user == nil {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	if patch.Email != nil {
		email := entities.NormalizeEmail(*patch.Email)
		if other := r.t.first(func(u *entities.User) bool { return u.Email == email }); other != nil && other.ID != id {
			return nil, apperrors.NewConflictError("email", "email already registered")
		}
		user.Email = email
	}
	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if !patch.UpdatedAt.IsZero() {
		user.UpdatedAt = patch.UpdatedAt
	}
	r.t.put(id, user)
	return r.t.get(id), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return apperrors.NewNotFoundError("user", id)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

var userColumns = []interface{}{
	"id", "email", "first_name", "last_name", "password_hash", "is_admin", "created_at", "updated_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	q sqlx.ExtContext
}

var _ repositories.UserRepository = (*UserAdapter)(nil)

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"id":            user.ID,
		"email":         user.Email,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"password_hash": user.PasswordHash,
		"is_admin":      user.IsAdmin,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	query, args, err := dialect.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user insert query", err)
	}

	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to create user", apperrors.NewConflictError("email", user.Email))
	}
	return nil
}

func (a *UserAdapter) getOne(ctx context.Context, where exp.Expression, key string) (*entities.User, error) {
	query, args, err := dialect.From("users").Select(userColumns...).Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user query", err)
	}

	var user entities.User
	if err := sqlx.GetContext(ctx, a.q, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(entities.KindUser, key)
		}
		return nil, storageError(err, "failed to get user", nil)
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.C("id").Eq(id), id)
}

// GetByEmail retrieves a user by email, case-insensitively
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return a.getOne(ctx, goqu.Func("lower", goqu.C("email")).Eq(normalized), email)
}

// GetByIDs retrieves the users that exist among ids
func (a *UserAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if len(ids) == 0 {
		return []*entities.User{}, nil
	}
	query, args, err := dialect.From("users").Select(userColumns...).Where(goqu.C("id").In(ids)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build users query", err)
	}

	users := []*entities.User{}
	if err := sqlx.SelectContext(ctx, a.q, &users, query, args...); err != nil {
		return nil, storageError(err, "failed to get users", nil)
	}
	return users, nil
}

// List retrieves users ordered by creation time
func (a *UserAdapter) List(ctx context.Context, page repositories.Page) ([]*entities.User, error) {
	ds := dialect.From("users").Select(userColumns...).Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	query, args, err := window(ds, page.Limit, page.Offset).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build users query", err)
	}

	users := []*entities.User{}
	if err := sqlx.SelectContext(ctx, a.q, &users, query, args...); err != nil {
		return nil, storageError(err, "failed to list users", nil)
	}
	return users, nil
}

// Update updates a user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"email":         user.Email,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"password_hash": user.PasswordHash,
		"is_admin":      user.IsAdmin,
		"updated_at":    user.UpdatedAt,
	}

	query, args, err := dialect.Update("users").Set(record).Where(goqu.C("id").Eq(user.ID)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user update query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to update user", apperrors.NewConflictError("email", user.Email))
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindUser, user.ID)
	}
	return nil
}

// Delete deletes a user; owned places and reviews go with it through ON DELETE CASCADE
func (a *UserAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete("users").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user delete query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to delete user", nil)
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindUser, id)
	}
	return nil
}

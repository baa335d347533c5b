package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/postgres"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// dialect builds postgres SQL; statements run through an executor so the same
// adapters work on the pool and inside a transaction
var dialect = goqu.Dialect("postgres")

// Store implements repositories.Store on PostgreSQL
type Store struct {
	client *postgres.Client
	db     *sqlx.DB
}

var _ repositories.Store = (*Store)(nil)

// NewStore creates a new Postgres store
func NewStore(client *postgres.Client) *Store {
	return &Store{
		client: client,
		db:     sqlx.NewDb(client.DB(), "postgres"),
	}
}

// Repositories returns repositories bound to the connection pool
func (s *Store) Repositories() repositories.Repositories {
	return bind(s.db)
}

// WithTx runs fn inside a database transaction
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos repositories.Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}

	if err := fn(ctx, bind(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			observability.LoggerFromContext(ctx).Error().Err(rbErr).Msg("failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError(err, "failed to commit transaction", nil)
	}
	return nil
}

func bind(q sqlx.ExtContext) repositories.Repositories {
	return repositories.Repositories{
		Users:     &UserAdapter{q: q},
		Amenities: &AmenityAdapter{q: q},
		Places:    &PlaceAdapter{q: q},
		Reviews:   &ReviewAdapter{q: q},
	}
}

// exec runs a built statement and reports whether it touched any row
func exec(ctx context.Context, q sqlx.ExtContext, query string, args []interface{}) (bool, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func window(ds *goqu.SelectDataset, limit, offset int) *goqu.SelectDataset {
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	return ds
}

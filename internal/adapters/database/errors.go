package database

import (
	"context"
	"errors"
	"regexp"

	"github.com/lib/pq"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Key (owner_id)=(42) is not present in table "users".
var fkDetail = regexp.MustCompile(`Key \(([^)]+)\)=\((.*)\) is not present in table "([^"]+)"`)

var tableKinds = map[string]string{
	"users":     entities.KindUser,
	"amenities": entities.KindAmenity,
	"places":    entities.KindPlace,
	"reviews":   entities.KindReview,
}

// storageError translates driver errors into AppErrors. A unique violation
// becomes onConflict, a foreign key violation a NOT_FOUND naming the missing
// row; anything else is wrapped as INTERNAL.
func storageError(err error, message string, onConflict *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewInternalError(message, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			if onConflict != nil {
				return onConflict
			}
		case pqForeignKeyViolation:
			if m := fkDetail.FindStringSubmatch(pqErr.Detail); m != nil {
				kind, ok := tableKinds[m[3]]
				if !ok {
					kind = m[3]
				}
				return apperrors.NewNotFoundError(kind, m[2])
			}
		}
	}

	return apperrors.NewInternalError(message, err)
}

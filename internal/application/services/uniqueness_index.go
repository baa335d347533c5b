package services

import (
	"context"
	"strings"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// UniqueField names a field that must be unique case-insensitively
type UniqueField string

const (
	UniqueEmail       UniqueField = "email"
	UniqueAmenityName UniqueField = "name"
)

// UniquenessIndex is a read-only pre-check for unique fields. The storage
// constraints stay authoritative and report the same CONFLICT error.
type UniquenessIndex struct {
	repos repositories.Repositories
}

// NewUniquenessIndex binds the index to the repositories of a transaction
func NewUniquenessIndex(repos repositories.Repositories) *UniquenessIndex {
	return &UniquenessIndex{repos: repos}
}

// Check returns a CONFLICT error when value is already used by an entity other than excludeID
func (u *UniquenessIndex) Check(ctx context.Context, field UniqueField, value, excludeID string) error {
	var (
		ownerID string
		err     error
	)

	switch field {
	case UniqueEmail:
		var user *entities.User
		if user, err = u.repos.Users.GetByEmail(ctx, strings.TrimSpace(value)); err == nil {
			ownerID = user.ID
		}
	case UniqueAmenityName:
		var amenity *entities.Amenity
		if amenity, err = u.repos.Amenities.GetByName(ctx, strings.TrimSpace(value)); err == nil {
			ownerID = amenity.ID
		}
	default:
		return apperrors.NewInternalError("unknown unique field "+string(field), nil)
	}

	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if ownerID == excludeID {
		return nil
	}
	return apperrors.NewConflictError(string(field), value)
}

// CheckReview returns a CONFLICT error when userID already reviewed placeID
func (u *UniquenessIndex) CheckReview(ctx context.Context, userID, placeID string) error {
	_, err := u.repos.Reviews.GetByUserAndPlace(ctx, userID, placeID)
	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return apperrors.NewConflictError(entities.KindReview, entities.ReviewKey(userID, placeID))
}

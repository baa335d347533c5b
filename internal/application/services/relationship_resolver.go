package services

import (
	"context"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// RelationshipResolver verifies that referenced entities exist before a mutation
// commits. Failures are NOT_FOUND errors naming the missing kind and id.
type RelationshipResolver struct {
	repos repositories.Repositories
}

// NewRelationshipResolver binds the resolver to the repositories of a transaction
func NewRelationshipResolver(repos repositories.Repositories) *RelationshipResolver {
	return &RelationshipResolver{repos: repos}
}

// ResolveOwner loads the user a place belongs to
func (r *RelationshipResolver) ResolveOwner(ctx context.Context, ownerID string) (*entities.User, error) {
	return r.repos.Users.GetByID(ctx, ownerID)
}

// ResolveAmenities loads every amenity in ids, in order
func (r *RelationshipResolver) ResolveAmenities(ctx context.Context, ids []string) ([]*entities.Amenity, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := r.repos.Amenities.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Amenity, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	out := make([]*entities.Amenity, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(entities.KindAmenity, id)
		}
		out = append(out, a)
	}
	return out, nil
}

// ResolveReviewRefs loads the place and author of a new review
func (r *RelationshipResolver) ResolveReviewRefs(ctx context.Context, placeID, userID string) (*entities.Place, *entities.User, error) {
	place, err := r.repos.Places.GetByID(ctx, placeID)
	if err != nil {
		return nil, nil, err
	}
	user, err := r.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return place, user, nil
}

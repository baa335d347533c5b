package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// PlaceRepository implements repositories.PlaceRepository
type PlaceRepository struct {
	h handle
}

var _ repositories.PlaceRepository = (*PlaceRepository)(nil)

// checkRefs mirrors the foreign keys on places and place_amenities
func (s *state) checkPlaceRefs(place *entities.Place) error {
	if _, ok := s.users[place.OwnerID]; !ok {
		return apperrors.NewNotFoundError(entities.KindUser, place.OwnerID)
	}
	for _, id := range place.AmenityIDs {
		if _, ok := s.amenities[id]; !ok {
			return apperrors.NewNotFoundError(entities.KindAmenity, id)
		}
	}
	return nil
}

// Create creates a new place with its amenity links
func (r *PlaceRepository) Create(ctx context.Context, place *entities.Place) error {
	return r.h.write(ctx, func(s *state) error {
		if err := s.checkPlaceRefs(place); err != nil {
			return err
		}
		s.places[place.ID] = place.Clone()
		return nil
	})
}

// GetByID retrieves a place by ID
func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	var out *entities.Place
	err := r.h.read(ctx, func(s *state) error {
		p, ok := s.places[id]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindPlace, id)
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

// List retrieves places with filters
func (r *PlaceRepository) List(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.Place, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var out []*entities.Place
	err := r.h.read(ctx, func(s *state) error {
		for _, p := range s.places {
			if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
				continue
			}
			if filter.MinPrice != nil && p.Price < *filter.MinPrice {
				continue
			}
			if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
				continue
			}
			if query != "" &&
				!strings.Contains(strings.ToLower(p.Title), query) &&
				!strings.Contains(strings.ToLower(p.Description), query) {
				continue
			}
			out = append(out, p.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByCreated(out, func(p *entities.Place) time.Time { return p.CreatedAt }, func(p *entities.Place) string { return p.ID })
	return paginate(out, filter.Limit, filter.Offset), nil
}

// Update updates a place and replaces its amenity links
func (r *PlaceRepository) Update(ctx context.Context, place *entities.Place) error {
	return r.h.write(ctx, func(s *state) error {
		if _, ok := s.places[place.ID]; !ok {
			return apperrors.NewNotFoundError(entities.KindPlace, place.ID)
		}
		if err := s.checkPlaceRefs(place); err != nil {
			return err
		}
		s.places[place.ID] = place.Clone()
		return nil
	})
}

// AddAmenity links an amenity unless it already is
func (r *PlaceRepository) AddAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error {
	return r.h.write(ctx, func(s *state) error {
		p, ok := s.places[placeID]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindPlace, placeID)
		}
		if _, ok := s.amenities[amenityID]; !ok {
			return apperrors.NewNotFoundError(entities.KindAmenity, amenityID)
		}
		next := p.Clone()
		if !slices.Contains(next.AmenityIDs, amenityID) {
			next.AmenityIDs = append(next.AmenityIDs, amenityID)
		}
		next.UpdatedAt = updatedAt
		s.places[placeID] = next
		return nil
	})
}

// RemoveAmenity unlinks an amenity
func (r *PlaceRepository) RemoveAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error {
	return r.h.write(ctx, func(s *state) error {
		p, ok := s.places[placeID]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindPlace, placeID)
		}
		next := p.Clone()
		next.AmenityIDs = slices.DeleteFunc(next.AmenityIDs, func(id string) bool { return id == amenityID })
		next.UpdatedAt = updatedAt
		s.places[placeID] = next
		return nil
	})
}

// Delete deletes a place and its reviews
func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	return r.h.write(ctx, func(s *state) error {
		if _, ok := s.places[id]; !ok {
			return apperrors.NewNotFoundError(entities.KindPlace, id)
		}
		s.deletePlace(id)
		return nil
	})
}

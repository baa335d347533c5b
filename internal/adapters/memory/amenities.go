package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// AmenityRepository implements repositories.AmenityRepository
type AmenityRepository struct {
	h handle
}

var _ repositories.AmenityRepository = (*AmenityRepository)(nil)

func copyAmenity(a *entities.Amenity) *entities.Amenity {
	c := *a
	return &c
}

// Create creates a new amenity
func (r *AmenityRepository) Create(ctx context.Context, amenity *entities.Amenity) error {
	return r.h.write(ctx, func(s *state) error {
		key := strings.ToLower(amenity.Name)
		if _, taken := s.amenityNames[key]; taken {
			return apperrors.NewConflictError("name", amenity.Name)
		}
		s.amenities[amenity.ID] = copyAmenity(amenity)
		s.amenityNames[key] = amenity.ID
		return nil
	})
}

// GetByID retrieves an amenity by ID
func (r *AmenityRepository) GetByID(ctx context.Context, id string) (*entities.Amenity, error) {
	var out *entities.Amenity
	err := r.h.read(ctx, func(s *state) error {
		a, ok := s.amenities[id]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindAmenity, id)
		}
		out = copyAmenity(a)
		return nil
	})
	return out, err
}

// GetByName retrieves an amenity by name, case-insensitively
func (r *AmenityRepository) GetByName(ctx context.Context, name string) (*entities.Amenity, error) {
	var out *entities.Amenity
	err := r.h.read(ctx, func(s *state) error {
		id, ok := s.amenityNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindAmenity, name)
		}
		out = copyAmenity(s.amenities[id])
		return nil
	})
	return out, err
}

// GetByIDs retrieves the amenities that exist among ids
func (r *AmenityRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Amenity, error) {
	var out []*entities.Amenity
	err := r.h.read(ctx, func(s *state) error {
		for _, id := range ids {
			if a, ok := s.amenities[id]; ok {
				out = append(out, copyAmenity(a))
			}
		}
		return nil
	})
	return out, err
}

// List retrieves amenities ordered by name
func (r *AmenityRepository) List(ctx context.Context, page repositories.Page) ([]*entities.Amenity, error) {
	var out []*entities.Amenity
	err := r.h.read(ctx, func(s *state) error {
		out = make([]*entities.Amenity, 0, len(s.amenities))
		for _, a := range s.amenities {
			out = append(out, copyAmenity(a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return paginate(out, page.Limit, page.Offset), nil
}

// Update updates an amenity
func (r *AmenityRepository) Update(ctx context.Context, amenity *entities.Amenity) error {
	return r.h.write(ctx, func(s *state) error {
		current, ok := s.amenities[amenity.ID]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindAmenity, amenity.ID)
		}
		oldKey, newKey := strings.ToLower(current.Name), strings.ToLower(amenity.Name)
		if oldKey != newKey {
			if _, taken := s.amenityNames[newKey]; taken {
				return apperrors.NewConflictError("name", amenity.Name)
			}
			delete(s.amenityNames, oldKey)
			s.amenityNames[newKey] = amenity.ID
		}
		s.amenities[amenity.ID] = copyAmenity(amenity)
		return nil
	})
}

// Delete deletes an amenity and unlinks it from every place
func (r *AmenityRepository) Delete(ctx context.Context, id string) error {
	return r.h.write(ctx, func(s *state) error {
		a, ok := s.amenities[id]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindAmenity, id)
		}
		for pid, p := range s.places {
			if !slices.Contains(p.AmenityIDs, id) {
				continue
			}
			updated := p.Clone()
			updated.AmenityIDs = slices.DeleteFunc(updated.AmenityIDs, func(v string) bool { return v == id })
			s.places[pid] = updated
		}
		delete(s.amenityNames, strings.ToLower(a.Name))
		delete(s.amenities, id)
		return nil
	})
}

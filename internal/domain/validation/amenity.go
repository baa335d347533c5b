package validation

import "github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"

// Amenity validates amenity fields, trimming them in place
func Amenity(in *entities.AmenityInput, mode Mode) error {
	var errs Errors
	text(&errs, "name", in.Name, mode == Create, false, MaxNameLength)
	text(&errs, "description", in.Description, false, true, MaxAmenityDescriptionLength)
	return errs.Err()
}

package validation

import "github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"

// PlaceValues are the parsed, normalized place fields. Nil means "not supplied".
type PlaceValues struct {
	Title       *string
	Description *string
	Price       *float64
	Latitude    *float64
	Longitude   *float64
	OwnerID     *string
	AmenityIDs  *[]string
}

// Place validates place fields. owner_id is optional on create because the
// service defaults it to the calling principal.
func Place(in *entities.PlaceInput, mode Mode) (PlaceValues, error) {
	var errs Errors
	required := mode == Create

	text(&errs, "title", in.Title, required, false, MaxTitleLength)
	text(&errs, "description", in.Description, false, true, MaxTextLength)

	v := PlaceValues{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		AmenityIDs:  in.AmenityIDs,
	}

	if v.Price = number(&errs, "price", in.Price, required); v.Price != nil && *v.Price <= 0 {
		errs.add("price", "must be greater than 0")
	}
	if v.Latitude = number(&errs, "latitude", in.Latitude, required); v.Latitude != nil && (*v.Latitude < -90 || *v.Latitude > 90) {
		errs.add("latitude", "must be between -90 and 90")
	}
	if v.Longitude = number(&errs, "longitude", in.Longitude, required); v.Longitude != nil && (*v.Longitude < -180 || *v.Longitude > 180) {
		errs.add("longitude", "must be between -180 and 180")
	}

	reference(&errs, "owner_id", in.OwnerID, false)
	references(&errs, "amenity_ids", in.AmenityIDs)

	return v, errs.Err()
}

// PlaceAmenity validates a request to link one amenity
func PlaceAmenity(in *entities.PlaceAmenityInput) error {
	var errs Errors
	reference(&errs, "amenity_id", in.AmenityID, true)
	return errs.Err()
}

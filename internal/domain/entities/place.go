package entities

import "time"

// Place is a listing owned by a user
type Place struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Latitude    float64   `json:"latitude" db:"latitude"`
	Longitude   float64   `json:"longitude" db:"longitude"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	AmenityIDs  []string  `json:"amenity_ids" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the place
func (p *Place) Clone() *Place {
	c := *p
	c.AmenityIDs = append([]string{}, p.AmenityIDs...)
	return &c
}

// PlaceDetails is a place with its owner, amenities and reviews resolved
type PlaceDetails struct {
	*Place
	Owner     *UserSummary     `json:"owner"`
	Amenities []*Amenity       `json:"amenities"`
	Reviews   []*ReviewDetails `json:"reviews"`
}

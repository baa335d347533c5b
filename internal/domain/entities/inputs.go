package entities

import "encoding/json"

// Input payloads use pointer fields so updates can tell an omitted field from a zero value.
// Numeric fields keep the JSON literal, which lets validation reject 4.5 or 4.0 as a rating
// instead of truncating it.

// UserInput carries registration and profile update fields
type UserInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
	IsAdmin   *bool   `json:"is_admin"`
}

// AmenityInput carries amenity fields
type AmenityInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// PlaceInput carries place fields
type PlaceInput struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Price       *json.Number `json:"price"`
	Latitude    *json.Number `json:"latitude"`
	Longitude   *json.Number `json:"longitude"`
	OwnerID     *string      `json:"owner_id"`
	AmenityIDs  *[]string    `json:"amenity_ids"`
}

// PlaceAmenityInput names one amenity to link to a place
type PlaceAmenityInput struct {
	AmenityID *string `json:"amenity_id"`
}

// ReviewInput carries review fields
type ReviewInput struct {
	Text    *string      `json:"text"`
	Rating  *json.Number `json:"rating"`
	PlaceID *string      `json:"place_id"`
	UserID  *string      `json:"user_id"`
}

// Credentials are the login payload
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

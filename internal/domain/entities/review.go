package entities

import "time"

// Review represents a user review of a place
type Review struct {
	ID        string    `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Rating    int       `json:"rating" db:"rating"` // 1-5
	PlaceID   string    `json:"place_id" db:"place_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewDetails adds the author's display name to a review
type ReviewDetails struct {
	*Review
	UserName string `json:"user_name"`
}

// ReviewKey identifies the single review a user may write for a place
func ReviewKey(userID, placeID string) string {
	return userID + ":" + placeID
}

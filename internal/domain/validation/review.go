package validation

import "github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"

// ReviewValues are the parsed, normalized review fields. Nil means "not supplied".
type ReviewValues struct {
	Text    *string
	Rating  *int
	PlaceID *string
	UserID  *string
}

// ReviewRefs validates the references a new review needs before anything can be resolved.
// user_id is optional because the service defaults it to the calling principal.
func ReviewRefs(in *entities.ReviewInput) error {
	var errs Errors
	reference(&errs, "place_id", in.PlaceID, true)
	reference(&errs, "user_id", in.UserID, false)
	return errs.Err()
}

// ReviewContent validates text and rating
func ReviewContent(in *entities.ReviewInput, mode Mode) (ReviewValues, error) {
	var errs Errors
	required := mode == Create

	text(&errs, "text", in.Text, required, false, MaxTextLength)

	v := ReviewValues{Text: in.Text, PlaceID: in.PlaceID, UserID: in.UserID}
	if v.Rating = integer(&errs, "rating", in.Rating, required); v.Rating != nil && (*v.Rating < MinRating || *v.Rating > MaxRating) {
		errs.add("rating", "must be between %d and %d", MinRating, MaxRating)
	}

	return v, errs.Err()
}

// ReviewUpdate validates a review patch. place_id and user_id are immutable.
func ReviewUpdate(in *entities.ReviewInput) (ReviewValues, error) {
	var errs Errors
	if in.PlaceID != nil {
		errs.add("place_id", "cannot be changed")
	}
	if in.UserID != nil {
		errs.add("user_id", "cannot be changed")
	}
	v, err := ReviewContent(in, Update)
	if appErr, ok := asValidation(err); ok {
		errs = append(errs, appErr...)
	}
	return v, errs.Err()
}

package validation

import (
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// User validates a registration (Create) or profile patch (Update).
// On return the string fields of in are trimmed and the email lower-cased.
func User(in *entities.UserInput, mode Mode) error {
	var errs Errors
	required := mode == Create

	text(&errs, "first_name", in.FirstName, required, false, MaxNameLength)
	text(&errs, "last_name", in.LastName, required, false, MaxNameLength)

	if in.Email == nil {
		if required {
			errs.add("email", "is required")
		}
	} else {
		*in.Email = entities.NormalizeEmail(*in.Email)
		if *in.Email == "" {
			errs.add("email", "must not be empty")
		} else if err := validate.Var(*in.Email, "email"); err != nil {
			errs.add("email", "must be a valid email address")
		}
	}

	if in.Password == nil {
		if required {
			errs.add("password", "is required")
		}
	} else if *in.Password == "" {
		errs.add("password", "must not be empty")
	} else if len(*in.Password) > MaxPasswordBytes {
		errs.add("password", "must be at most %d bytes", MaxPasswordBytes)
	}

	return errs.Err()
}

// Credentials validates a login payload
func Credentials(in *entities.Credentials) error {
	var errs Errors
	in.Email = entities.NormalizeEmail(in.Email)
	if in.Email == "" {
		errs.add("email", "is required")
	}
	if in.Password == "" {
		errs.add("password", "is required")
	}
	return errs.Err()
}

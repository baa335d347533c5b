// Package validation holds the field-level rules for every marketplace entity.
// Validators are pure: they trim and normalize input, collect every violation,
// and never touch storage.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// Mode selects create (all required fields must be present) or partial update rules
type Mode int

const (
	Create Mode = iota
	Update
)

// Field limits
const (
	MaxNameLength               = 50
	MaxTitleLength              = 100
	MaxTextLength               = 1000
	MaxAmenityDescriptionLength = 255
	MaxPasswordBytes            = 72
	MinRating                   = 1
	MaxRating                   = 5
)

var validate = validator.New()

// Errors accumulates field violations
type Errors []apperrors.FieldError

func (e *Errors) add(field, format string, args ...any) {
	*e = append(*e, apperrors.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns a VALIDATION AppError, or nil when nothing was collected
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperrors.NewValidationError(e...)
}

// text trims *s in place and checks emptiness and rune length.
// A nil pointer is reported only when required.
func text(errs *Errors, field string, s *string, required, allowEmpty bool, max int) {
	if s == nil {
		if required {
			errs.add(field, "is required")
		}
		return
	}
	*s = strings.TrimSpace(*s)
	if *s == "" {
		if !allowEmpty {
			errs.add(field, "must not be empty")
		}
		return
	}
	if err := validate.Var(*s, fmt.Sprintf("max=%d", max)); err != nil {
		errs.add(field, "must be at most %d characters", max)
	}
}

// number parses a JSON number literal into a finite float64
func number(errs *Errors, field string, n *json.Number, required bool) *float64 {
	if n == nil {
		if required {
			errs.add(field, "is required")
		}
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs.add(field, "must be a number")
		return nil
	}
	return &v
}

// integer parses a JSON number literal that must be written as an integer.
// 4.5 and 4.0 are both rejected.
func integer(errs *Errors, field string, n *json.Number, required bool) *int {
	if n == nil {
		if required {
			errs.add(field, "is required")
		}
		return nil
	}
	literal := strings.TrimSpace(n.String())
	v, err := strconv.Atoi(literal)
	if err != nil {
		if _, ferr := strconv.ParseFloat(literal, 64); ferr == nil {
			errs.add(field, "must be an integer")
		} else {
			errs.add(field, "must be a number")
		}
		return nil
	}
	return &v
}

// reference trims an id reference and requires it to be non-empty when present
func reference(errs *Errors, field string, id *string, required bool) {
	if id == nil {
		if required {
			errs.add(field, "is required")
		}
		return
	}
	*id = strings.TrimSpace(*id)
	if *id == "" {
		errs.add(field, "must not be empty")
	}
}

// references trims, de-duplicates and checks a list of id references, preserving order
func references(errs *Errors, field string, ids *[]string) {
	if ids == nil {
		return
	}
	seen := make(map[string]struct{}, len(*ids))
	out := make([]string, 0, len(*ids))
	for i, id := range *ids {
		id = strings.TrimSpace(id)
		if id == "" {
			errs.add(fmt.Sprintf("%s[%d]", field, i), "must not be empty")
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	*ids = out
}

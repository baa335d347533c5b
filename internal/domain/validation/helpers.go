package validation

import apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"

func asValidation(err error) (Errors, bool) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Type != apperrors.ErrorTypeValidation {
		return nil, false
	}
	return Errors(appErr.Fields), true
}

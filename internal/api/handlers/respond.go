package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Error  string                 `json:"error"`
	Type   apperrors.ErrorType    `json:"type"`
	Fields []apperrors.FieldError `json:"fields,omitempty"`
	Kind   string                 `json:"kind,omitempty"`
	ID     string                 `json:"id,omitempty"`
	Field  string                 `json:"field,omitempty"`
	Reason string                 `json:"reason,omitempty"`
	Rule   string                 `json:"rule,omitempty"`
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithMessage(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{"message": message})
}

// StatusFor maps an error type to its HTTP status
func StatusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeInvariant:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes err as JSON. Internal details never reach the client.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("unexpected error", err)
	}
	status := StatusFor(appErr.Type)

	body := errorResponse{
		Error:  appErr.Message,
		Type:   appErr.Type,
		Fields: appErr.Fields,
		Kind:   appErr.Kind,
		ID:     appErr.ID,
		Field:  appErr.Field,
		Reason: appErr.Reason,
		Rule:   appErr.Rule,
	}

	logger := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		body = errorResponse{Error: "internal server error", Type: appErr.Type}
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	respondWithJSON(w, status, body)
}

// decodeJSON reads a JSON body keeping numbers as literals. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.NewValidationError(apperrors.FieldError{Field: "body", Message: "invalid JSON payload: " + err.Error()})
	}
	return nil
}

// pageParams reads limit and offset; both must be non-negative integers
func pageParams(r *http.Request) (int, int, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.NewValidationError(apperrors.FieldError{Field: name, Message: "must be a non-negative integer"})
	}
	return n, nil
}

func floatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperrors.NewValidationError(apperrors.FieldError{Field: name, Message: "must be a number"})
	}
	return &f, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewValidationError(apperrors.FieldError{Field: name, Message: "must be a boolean"})
	}
	return b, nil
}

// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicate         = errors.New("duplicate entry")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrMalformed         = errors.New("malformed request")
)

// Error is a client-facing failure. Its message is returned to callers verbatim
// and Kind classifies it for status mapping.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound builds an ErrNotFound failure.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalid builds an ErrValidation failure.
func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Duplicate builds an ErrDuplicate failure.
func Duplicate(format string, args ...any) error {
	return &Error{Kind: ErrDuplicate, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition builds an ErrInvalidTransition failure.
func InvalidTransition(format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// Malformed builds an ErrMalformed failure.
func Malformed(format string, args ...any) error {
	return &Error{Kind: ErrMalformed, Message: fmt.Sprintf(format, args...)}
}

// RespondError maps domain errors to HTTP responses. Lookups and validation
// failures are plain text; illegal transitions use RFC7807 problem details.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Text(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		Text(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrMalformed):
		Text(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		Problem(w, http.StatusMethodNotAllowed, "Method not allowed", err.Error())
	default:
		if logger != nil {
			logger.Error("unhandled error", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

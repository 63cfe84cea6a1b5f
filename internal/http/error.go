package httpapp

import (
	"errors"
	"net/http"

	"github.com/feedwire/feedwire/internal/store"
	"github.com/feedwire/feedwire/internal/validate"
)

// Error is the failure type every pipeline stage returns. Status carries
// the HTTP classification; Violations is populated only for 422s; Err
// holds the underlying cause for logging and is never serialized.
type Error struct {
	Status     int
	Message    string
	Violations []validate.Violation
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errValidation(violations []validate.Violation) *Error {
	return &Error{
		Status:     http.StatusUnprocessableEntity,
		Message:    "Validation failed, entered data is incorrect.",
		Violations: violations,
	}
}

func errMissingImage() *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "No image file provided.",
	}
}

// errUnauthorized is deliberately opaque: callers never learn which check
// failed.
func errUnauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Not authenticated."}
}

func errInvalidCredentials() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Invalid email or password."}
}

func errNotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func errInternal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error.", Err: err}
}

// fromStoreErr classifies a store failure: ErrNotFound keeps its 404
// identity, anything else defaults to Internal.
func fromStoreErr(err error, notFoundMessage string) *Error {
	if errors.Is(err, store.ErrNotFound) {
		return errNotFound(notFoundMessage)
	}
	return errInternal(err)
}

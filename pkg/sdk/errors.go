package docrag

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API error codes.
// Use errors.Is() to check.
var (
	ErrBookNotFound    = errors.New("docrag: book not found")
	ErrSessionNotFound = errors.New("docrag: session not found")
	ErrUnavailable     = errors.New("docrag: service unavailable")
	ErrBadRequest      = errors.New("docrag: bad request")
)

// APIError is a structured error response from the API. It unwraps to the
// matching sentinel, so both errors.As and errors.Is work.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // machine-readable error code
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docrag: %s (%d %s)", e.Message, e.Status, e.Code)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "book_not_found":
		return ErrBookNotFound
	case "session_not_found":
		return ErrSessionNotFound
	case "retrieval_unavailable", "embedding_provider_error", "generation_provider_error":
		return ErrUnavailable
	case "bad_request", "validation_failed":
		return ErrBadRequest
	}
	return nil
}

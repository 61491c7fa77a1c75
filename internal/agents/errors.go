package agents

import (
	"errors"
	"net/http"
)

// Domain errors for registry operations.
var (
	ErrStorageUnavailable = errors.New("agent storage unavailable")
	ErrCorruptData        = errors.New("agent document corrupt")
	ErrNotFound           = errors.New("agent not found")
	ErrInvalidAgent       = errors.New("invalid agent")
	ErrIDMismatch         = errors.New("agent id does not match path id")
	ErrConflict           = errors.New("agent document changed concurrently")
	ErrBusy               = errors.New("agent registry busy")
)

// MapHTTPStatus maps domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidAgent), errors.Is(err, ErrIDMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

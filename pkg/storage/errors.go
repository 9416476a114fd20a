package storage

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrEmptyKey    = errors.New("storage key must not be empty")
	ErrInvalidKey  = errors.New("storage key contains invalid path segment")
	ErrDisabled    = errors.New("image storage is not configured")
	ErrUnsupported = errors.New("unsupported image content type")
	ErrTooLarge    = errors.New("image exceeds maximum size")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey), errors.Is(err, ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

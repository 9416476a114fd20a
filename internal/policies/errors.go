package policies

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrEntityIDRequired  = errors.New("entityId is required for page and group settings")
	ErrInvalidEntityID   = errors.New("invalid entity id")
	ErrEntityNotFound    = errors.New("entity not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidBody       = errors.New("invalid request body")
	ErrConflict          = errors.New("policy was changed concurrently")
)

// MapHTTPStatus maps policy errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidEntityType),
		errors.Is(err, ErrEntityIDRequired),
		errors.Is(err, ErrInvalidEntityID),
		errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

package pages

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("page not found")
	ErrNameRequired     = errors.New("name cannot be empty")
	ErrCategoryRequired = errors.New("category cannot be empty")
	ErrInvalidKind      = errors.New("invalid page kind")
	ErrInvalidID        = errors.New("invalid page id")
	ErrInvalidBody      = errors.New("invalid request body")
	ErrInvalidMember    = errors.New("invalid member")
	ErrInvalidRole      = errors.New("invalid page role")
	ErrMemberExists     = errors.New("user is already a member of this page")
	ErrMemberNotFound   = errors.New("page member not found")
	ErrOwnerRemoval     = errors.New("the page owner cannot be removed")
	ErrForbidden        = errors.New("not allowed to manage this page")
)

// MapHTTPStatus maps page errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMemberExists):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrCategoryRequired),
		errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidMember),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrOwnerRemoval):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

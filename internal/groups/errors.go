package groups

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("group not found")
	ErrNameRequired     = errors.New("name cannot be empty")
	ErrInvalidPrivacy   = errors.New("invalid group privacy")
	ErrInvalidID        = errors.New("invalid group id")
	ErrInvalidBody      = errors.New("invalid request body")
	ErrInvalidRole      = errors.New("invalid group role")
	ErrInvalidMember    = errors.New("invalid member")
	ErrAlreadyMember    = errors.New("user is already a member of this group")
	ErrMemberNotFound   = errors.New("group member not found")
	ErrPrivateGroup     = errors.New("private groups require an invitation")
	ErrOwnerDemotion    = errors.New("the group owner must remain an admin")
	ErrPermissionDenied = errors.New("not allowed to manage this group")
)

// MapHTTPStatus maps group errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMemberNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrAlreadyMember) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrPrivateGroup) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrInvalidPrivacy) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidBody) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidMember) ||
		errors.Is(err, ErrOwnerDemotion) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

package posts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agora/internal/policies"
)

var (
	ErrNotFound       = errors.New("post not found")
	ErrInvalidKind    = errors.New("invalid post kind")
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrInvalidBody    = errors.New("invalid request body")
	ErrInvalidID      = errors.New("invalid post id")
	ErrInvalidStatus  = errors.New("invalid post status")
	ErrReasonRequired = errors.New("a reason is required when rejecting a post")
	ErrInvalidState   = errors.New("only pending posts can be moderated")
	ErrForbidden      = errors.New("not allowed to act on this post")
)

// MapHTTPStatus maps post errors to HTTP status codes. Policy errors from
// the creation pipeline keep their own mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrReasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	}
	return policies.MapHTTPStatus(err)
}

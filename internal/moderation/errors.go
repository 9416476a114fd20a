package moderation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies why a provider could not produce a result.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnauthorized
	KindRateLimited
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// KindFromStatus maps an HTTP response status to an ErrorKind.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= http.StatusInternalServerError:
		return KindUnavailable
	}
	return KindUnknown
}

// ProviderError reports a single provider's failure to classify.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AsProviderError returns err as a *ProviderError attributed to provider,
// wrapping it as KindUnknown when it is not one already. An existing error
// without a provider is copied, never modified.
func AsProviderError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Provider == "" {
			named := *pe
			named.Provider = provider
			return &named
		}
		return pe
	}
	return &ProviderError{Provider: provider, Kind: KindUnknown, Message: err.Error(), Err: err}
}

// ErrAllProvidersFailed matches any *AllProvidersFailedError via errors.Is.
var ErrAllProvidersFailed = errors.New("all moderation providers failed")

// Attempt records one failed provider call.
type Attempt struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

// AllProvidersFailedError is returned when every enabled provider failed and
// no cached classification exists.
type AllProvidersFailedError struct {
	Attempts []Attempt
}

func (e *AllProvidersFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllProvidersFailed.Error() + ": no providers enabled"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Provider + ": " + a.Message
	}
	return ErrAllProvidersFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Package httpclient builds outbound HTTP clients with bounded timeouts and
// optional retries for calls to third-party services.
package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// leveledSlog adapts slog to retryablehttp. Intermediate failures are logged
// at WARN because a later attempt may still succeed.
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, kv ...any) { l.inner.Warn(msg, kv...) }
func (l leveledSlog) Warn(msg string, kv ...any)  { l.inner.Warn(msg, kv...) }
func (l leveledSlog) Info(msg string, kv ...any)  { l.inner.Debug(msg, kv...) }
func (l leveledSlog) Debug(msg string, kv ...any) { l.inner.Debug(msg, kv...) }

// Option adjusts the underlying retryable client.
type Option func(*retryablehttp.Client)

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
	}
}

// WithRetryWait bounds the backoff between attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = minWait
		c.RetryWaitMax = maxWait
	}
}

// WithLogger routes retry logging through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *retryablehttp.Client) {
		c.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: logger})
	}
}

// WithTransport replaces the pooled transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *retryablehttp.Client) {
		c.HTTPClient.Transport = rt
	}
}

// New returns a standard *http.Client backed by retryablehttp. Retries are
// off unless WithMaxRetries says otherwise. The final response is always
// handed back to the caller, so status codes survive exhausted retries.
func New(timeout time.Duration, opts ...Option) *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	rc.RetryMax = 0
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: slog.Default().With("system", "httpclient")})
	rc.CheckRetry = RetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	for _, opt := range opts {
		opt(rc)
	}

	client := rc.StandardClient()
	client.Timeout = timeout
	return client
}

// RetryPolicy wraps retryablehttp.DefaultRetryPolicy but never retries
// 429 Too Many Requests, leaving rate limiting to the caller.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

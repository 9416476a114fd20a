package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig controls the per-provider circuit breaker.
type BreakerConfig struct {
	// Failures is the consecutive failure count that opens the breaker.
	// Zero disables the breaker.
	Failures uint32
	// Cooldown is how long an open breaker rejects calls before probing.
	Cooldown time.Duration
}

type breakerClassifier struct {
	Classifier
	cb *gobreaker.CircuitBreaker
}

// WithBreaker guards c with a circuit breaker. While the breaker is open,
// Classify fails immediately with a KindUnavailable ProviderError.
func WithBreaker(c Classifier, cfg BreakerConfig, logger *slog.Logger) Classifier {
	if cfg.Failures == 0 {
		return c
	}

	logger = logger.With("provider", c.Name())
	breakerState.WithLabelValues(c.Name()).Set(0)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        c.Name(),
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("provider breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	return &breakerClassifier{Classifier: c, cb: cb}
}

func (b *breakerClassifier) Classify(ctx context.Context, text string) (Result, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Classifier.Classify(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Result{}, &ProviderError{
			Provider: b.Name(),
			Kind:     KindUnavailable,
			Message:  fmt.Sprintf("circuit breaker: %v", err),
			Err:      err,
		}
	}
	if err != nil {
		return Result{}, err
	}
	return out.(Result), nil
}

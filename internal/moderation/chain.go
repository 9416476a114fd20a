package moderation

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source reports where a classification came from.
type Source string

const (
	SourceProvider Source = "provider"
	SourceCache    Source = "cache"
	SourceStale    Source = "stale"
)

// Outcome is a classification together with the provider failures
// encountered while producing it.
type Outcome struct {
	Result   Result    `json:"result"`
	Source   Source    `json:"source"`
	Attempts []Attempt `json:"attempts,omitempty"`
}

// Chain tries enabled classifiers in priority order until one succeeds.
//
// Concurrent requests for the same text share one provider round.
type Chain struct {
	classifiers []Classifier
	cache       *Cache
	logger      *slog.Logger
	flight      singleflight.Group
}

// NewChain keeps the enabled classifiers, sorted by ascending priority. Ties
// keep their given order.
func NewChain(classifiers []Classifier, cache *Cache, logger *slog.Logger) *Chain {
	enabled := make([]Classifier, 0, len(classifiers))
	for _, c := range classifiers {
		if c.Enabled() {
			enabled = append(enabled, c)
		}
	}
	slices.SortStableFunc(enabled, func(a, b Classifier) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})

	return &Chain{
		classifiers: enabled,
		cache:       cache,
		logger:      logger.With("system", "moderation-chain"),
	}
}

// Providers lists the enabled classifier names in the order they are tried.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.classifiers))
	for i, cl := range c.classifiers {
		names[i] = cl.Name()
	}
	return names
}

// ClassifyText returns the classification for text. It fails with
// *AllProvidersFailedError only when every provider failed and nothing is
// cached for text.
func (c *Chain) ClassifyText(ctx context.Context, text string) (Result, error) {
	out, err := c.Run(ctx, text)
	return out.Result, err
}

// Run is ClassifyText with diagnostics. If ctx ends first the shared provider
// round keeps going and still populates the cache.
func (c *Chain) Run(ctx context.Context, text string) (Outcome, error) {
	key := Key(text)
	ch := c.flight.DoChan(key, func() (any, error) {
		return c.run(context.WithoutCancel(ctx), key, text)
	})

	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Outcome{}, r.Err
		}
		return r.Val.(Outcome).clone(), nil
	}
}

func (c *Chain) run(ctx context.Context, key, text string) (Outcome, error) {
	cached, age, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("classification cache read failed", "error", err)
	}

	switch {
	case found && c.cache.Fresh(age):
		cacheLookups.WithLabelValues("hit").Inc()
		return Outcome{Result: cached, Source: SourceCache}, nil
	case found:
		cacheLookups.WithLabelValues("stale").Inc()
	default:
		cacheLookups.WithLabelValues("miss").Inc()
	}

	var attempts []Attempt
	for _, cl := range c.classifiers {
		start := time.Now()
		result, err := cl.Classify(ctx, text)
		providerDuration.WithLabelValues(cl.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			pe := AsProviderError(cl.Name(), err)
			providerErrors.WithLabelValues(cl.Name(), pe.Kind.String()).Inc()
			c.logger.Warn("moderation provider failed",
				"provider", cl.Name(), "kind", pe.Kind.String(), "error", pe.Message)
			attempts = append(attempts, Attempt{Provider: cl.Name(), Message: pe.Message, Err: pe})
			continue
		}

		if result.Provider == "" {
			result.Provider = cl.Name()
		}
		if err := c.cache.Put(ctx, key, result); err != nil {
			c.logger.Warn("classification cache write failed", "error", err)
		}
		return Outcome{Result: result, Source: SourceProvider, Attempts: attempts}, nil
	}

	if found {
		c.logger.Warn("serving stale classification", "age", age.String(), "failed_providers", len(attempts))
		return Outcome{Result: cached, Source: SourceStale, Attempts: attempts}, nil
	}

	return Outcome{}, &AllProvidersFailedError{Attempts: attempts}
}

func (o Outcome) clone() Outcome {
	o.Result.FlaggedCategories = slices.Clone(o.Result.FlaggedCategories)
	o.Result.Confidence = maps.Clone(o.Result.Confidence)
	o.Attempts = slices.Clone(o.Attempts)
	return o
}

package moderation_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/pkg/cache"
)

type mockClassifier struct {
	name       string
	priority   int
	disabled   bool
	calls      atomic.Int32
	classifyFn func(ctx context.Context, text string) (moderation.Result, error)
}

func (m *mockClassifier) Name() string  { return m.name }
func (m *mockClassifier) Priority() int { return m.priority }
func (m *mockClassifier) Enabled() bool { return !m.disabled }

func (m *mockClassifier) Classify(ctx context.Context, text string) (moderation.Result, error) {
	m.calls.Add(1)
	return m.classifyFn(ctx, text)
}

func safe(provider string) func(context.Context, string) (moderation.Result, error) {
	return func(context.Context, string) (moderation.Result, error) {
		return moderation.Result{IsSafe: true, Provider: provider}, nil
	}
}

func failing(kind moderation.ErrorKind) func(context.Context, string) (moderation.Result, error) {
	return func(context.Context, string) (moderation.Result, error) {
		return moderation.Result{}, &moderation.ProviderError{Kind: kind, Message: kind.String()}
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCache(t *testing.T, clk *clock) *moderation.Cache {
	t.Helper()
	store, err := cache.NewMemoryStore(100)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return moderation.NewCache(store, moderation.WithClock(clk.Now))
}

func newChain(t *testing.T, clk *clock, classifiers ...moderation.Classifier) *moderation.Chain {
	t.Helper()
	return moderation.NewChain(classifiers, newCache(t, clk), discard())
}

package moderation_test

import (
	"context"
	"testing"
	"time"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/pkg/cache"
)

func TestKey(t *testing.T) {
	a := moderation.Key("hello")
	if a != moderation.Key("hello") {
		t.Error("key should be deterministic")
	}
	if a == moderation.Key("hello ") || a == moderation.Key("Hello") {
		t.Error("key must not normalize text")
	}
	if len(a) != len("text:")+64 {
		t.Errorf("unexpected key length %d", len(a))
	}
}

func TestCacheAge(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := newCache(t, clk)
	key := moderation.Key("x")

	if _, _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	want := moderation.Result{IsSafe: false, FlaggedCategories: []string{"toxic"}, Provider: "p"}
	if err := c.Put(ctx, key, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	clk.Advance(time.Hour)
	got, age, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if age != time.Hour || !c.Fresh(age) {
		t.Errorf("age = %v fresh = %v", age, c.Fresh(age))
	}
	if got.Provider != "p" || len(got.FlaggedCategories) != 1 {
		t.Errorf("result = %+v", got)
	}

	clk.Advance(moderation.CacheTTL)
	_, age, ok, _ = c.Get(ctx, key)
	if !ok || c.Fresh(age) {
		t.Errorf("expected stale entry still readable, ok=%v age=%v", ok, age)
	}
}

func TestCachePurgesCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewMemoryStore(10)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	c := moderation.NewCache(store)
	key := moderation.Key("x")

	if err := store.Set(ctx, key, "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, _, ok, err := c.Get(ctx, key); ok || err == nil {
		t.Fatalf("corrupt entry: ok=%v err=%v, want decode error", ok, err)
	}
	if _, ok, _ := store.Get(ctx, key); ok {
		t.Error("corrupt entry should be purged from the store")
	}
	if _, _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Errorf("after purge: ok=%v err=%v, want clean miss", ok, err)
	}
}

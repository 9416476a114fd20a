package cache_test

import (
	"context"
	"testing"

	"github.com/JaimeStill/agora/pkg/cache"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s, err := cache.NewMemoryStore(2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Fatal("unexpected hit on empty store")
	}

	s.Set(ctx, "a", "1")
	s.Set(ctx, "b", "2")
	s.Get(ctx, "a")
	s.Set(ctx, "c", "3")

	if _, ok, _ := s.Get(ctx, "b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if v, ok, _ := s.Get(ctx, "a"); !ok || v != "1" {
		t.Errorf("a = %q, %v", v, ok)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d", s.Len())
	}

	s.Purge(ctx, "a")
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("purged entry still present")
	}
}

func TestMemoryStoreInvalidCapacity(t *testing.T) {
	if _, err := cache.NewMemoryStore(0); err == nil {
		t.Error("expected error for zero capacity")
	}
}

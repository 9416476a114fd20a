package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/agora/pkg/cache"
)

// CacheTTL is how long a classification is served without asking a provider.
const CacheTTL = 24 * time.Hour

// Entry is a cached classification and the time it was stored.
type Entry struct {
	Result   Result    `json:"result"`
	StoredAt time.Time `json:"storedAt"`
}

// Cache memoizes classifications by exact text. Entries older than the TTL
// are still returned so callers can fall back to them.
type Cache struct {
	store cache.Store
	ttl   time.Duration
	now   func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache wraps store with the fixed CacheTTL.
func NewCache(store cache.Store, opts ...CacheOption) *Cache {
	c := &Cache{store: store, ttl: CacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key for text. Texts differing in any byte get
// different keys.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "text:" + hex.EncodeToString(sum[:])
}

// Get returns the entry for key and its age. An entry that fails to decode
// is purged from the store.
func (c *Cache) Get(ctx context.Context, key string) (Result, time.Duration, bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return Result{}, 0, false, err
	}

	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		err = fmt.Errorf("decode cache entry: %w", err)
		if perr := c.store.Purge(ctx, key); perr != nil {
			err = errors.Join(err, fmt.Errorf("purge cache entry: %w", perr))
		}
		return Result{}, 0, false, err
	}
	return e.Result, c.now().Sub(e.StoredAt), true, nil
}

// Put stores result under key stamped with the current time.
func (c *Cache) Put(ctx context.Context, key string, result Result) error {
	raw, err := json.Marshal(Entry{Result: result, StoredAt: c.now()})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.store.Set(ctx, key, string(raw))
}

// Fresh reports whether an entry of the given age is inside the TTL.
func (c *Cache) Fresh(age time.Duration) bool {
	return age < c.ttl
}

// Package cache holds string values by key in process memory or Redis.
//
// Stores do not expire entries on their own schedule beyond a coarse
// retention bound. Callers that need freshness record their own timestamps
// inside the value.
package cache

import "context"

// Store is a keyed string cache. A miss is reported as ok == false with a nil
// error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Purge(ctx context.Context, key string) error
}

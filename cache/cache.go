// Package cache provides the string key-value store backing the search
// result cache, with a Redis and an in-process implementation.
package cache

import (
	"context"
	"time"
)

// Store is the minimal contract the aggregator needs: read a string value
// and write one with a TTL. Implementations must be safe for concurrent
// use; a failed read is indistinguishable from a miss to callers that
// choose to ignore the error.
type Store interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
}

package services

import (
	"context"
	"time"
)

// Cache is the subset of the Redis wrapper the services use. Failures are
// treated as cache misses, never as operation failures.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

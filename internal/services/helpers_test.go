package services

import (
	"context"
	"errors"
	"time"
)

// noopCache always misses so tests exercise the real code paths.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("key not found")
}

func (noopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, key string) error {
	return nil
}

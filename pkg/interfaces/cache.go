package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheProvider.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: miss")

// CacheProvider stores rendered fragments. Values are strings because every
// cached artefact in this module is rendered markup.
type CacheProvider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

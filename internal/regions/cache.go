package regions

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

// CacheKey identifies the rendered output of one region of one owner.
type CacheKey struct {
	Label  string
	ID     string
	Region string
}

func (k CacheKey) String() string {
	return strings.Join([]string{"regions", k.Label, k.ID, k.Region}, ":")
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithDefaultTTL is used when Fetch is called with a zero ttl.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.defaultTTL = ttl
	}
}

// WithCacheLogger sets the cache logger.
func WithCacheLogger(logger interfaces.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache stores rendered regions in a CacheProvider. Concurrent misses for
// the same key share one render.
type Cache struct {
	provider   interfaces.CacheProvider
	group      singleflight.Group
	defaultTTL time.Duration
	logger     interfaces.Logger
}

// NewCache wraps provider.
func NewCache(provider interfaces.CacheProvider, opts ...CacheOption) *Cache {
	c := &Cache{
		provider:   provider,
		defaultTTL: 5 * time.Minute,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch returns the cached output for key or stores the result of render.
// Failed renders are not cached.
func (c *Cache) Fetch(ctx context.Context, key CacheKey, ttl time.Duration, render func(context.Context) (string, error)) (string, error) {
	name := key.String()
	cached, err := c.provider.Get(ctx, name)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, interfaces.ErrCacheMiss):
		c.logger.Warn("regions.cache.get_failed", "key", name, "error", err)
	}

	value, err, _ := c.group.Do(name, func() (any, error) {
		html, err := render(ctx)
		if err != nil {
			return "", err
		}
		if ttl == 0 {
			ttl = c.defaultTTL
		}
		if err := c.provider.Set(ctx, name, html, ttl); err != nil {
			c.logger.Warn("regions.cache.set_failed", "key", name, "error", err)
		}
		return html, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Invalidate drops the cached output of key.
func (c *Cache) Invalidate(ctx context.Context, key CacheKey) error {
	return c.provider.Delete(ctx, key.String())
}

// Clear drops every cached region.
func (c *Cache) Clear(ctx context.Context) error {
	return c.provider.Clear(ctx)
}

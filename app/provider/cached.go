package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lysyi3m/ticker-comb/app/news"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	NewsKey(provider, symbol string, count int) string
}

// Cached serves FetchNews from cache when possible. Any cache failure falls
// through to the upstream provider.
type Cached struct {
	upstream news.Provider
	cache    Cache
	ttl      time.Duration
}

func NewCached(upstream news.Provider, cache Cache, ttl time.Duration) *Cached {
	return &Cached{upstream: upstream, cache: cache, ttl: ttl}
}

func (c *Cached) Name() string { return c.upstream.Name() }

func (c *Cached) FetchNews(ctx context.Context, symbol string, count int) ([]news.RawItem, error) {
	key := c.cache.NewsKey(c.upstream.Name(), symbol, count)

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("News cache read failed", "key", key, "error", err)
		return c.Refresh(ctx, symbol, count)
	}

	if data != "" {
		var items []news.RawItem
		if err := json.Unmarshal([]byte(data), &items); err == nil {
			slog.Debug("News cache hit", "symbol", symbol, "items", len(items))
			return items, nil
		}
		if err := c.cache.Delete(ctx, key); err != nil {
			slog.Warn("Failed to delete invalid cache entry", "key", key, "error", err)
		}
	}

	return c.Refresh(ctx, symbol, count)
}

// Refresh fetches from upstream and overwrites the cached entry.
func (c *Cached) Refresh(ctx context.Context, symbol string, count int) ([]news.RawItem, error) {
	items, err := c.upstream.FetchNews(ctx, symbol, count)
	if err != nil {
		return nil, err
	}

	key := c.cache.NewsKey(c.upstream.Name(), symbol, count)
	if err := c.cache.Set(ctx, key, items, c.ttl); err != nil {
		slog.Warn("News cache write failed", "key", key, "error", err)
	}

	return items, nil
}

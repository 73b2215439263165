package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/lysyi3m/ticker-comb/app/news"
)

type memoryCache struct {
	data    map[string]string
	ttls    map[string]time.Duration
	getErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.data[key], nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = string(data)
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.data, key)
	return nil
}

func (c *memoryCache) NewsKey(provider, symbol string, count int) string {
	return fmt.Sprintf("news:%s:%s:%d", provider, symbol, count)
}

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) FetchNews(ctx context.Context, symbol string, count int) ([]news.RawItem, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []news.RawItem{{"title": fmt.Sprintf("%s call %d", symbol, p.calls)}}, nil
}

func TestCachedFetchNews_MissThenHit(t *testing.T) {
	upstream := &countingProvider{}
	cache := newMemoryCache()
	c := NewCached(upstream, cache, time.Minute)

	first, err := c.FetchNews(context.Background(), "AAPL", 20)
	assert.Equal(t, nil, err)
	assert.Equal(t, "AAPL call 1", first[0]["title"])
	assert.Equal(t, time.Minute, cache.ttls["news:counting:AAPL:20"])

	second, err := c.FetchNews(context.Background(), "AAPL", 20)
	assert.Equal(t, nil, err)
	assert.Equal(t, "AAPL call 1", second[0]["title"])
	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, "counting", c.Name())
}

func TestCachedFetchNews_CacheErrorFallsThrough(t *testing.T) {
	upstream := &countingProvider{}
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	c := NewCached(upstream, cache, time.Minute)

	items, err := c.FetchNews(context.Background(), "MSFT", 20)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedFetchNews_InvalidEntryIsReplaced(t *testing.T) {
	upstream := &countingProvider{}
	cache := newMemoryCache()
	cache.data["news:counting:NVDA:20"] = "{broken"
	c := NewCached(upstream, cache, time.Minute)

	items, err := c.FetchNews(context.Background(), "NVDA", 20)

	assert.Equal(t, nil, err)
	assert.Equal(t, "NVDA call 1", items[0]["title"])
	assert.Equal(t, []string{"news:counting:NVDA:20"}, cache.deleted)
}

func TestCachedRefresh(t *testing.T) {
	upstream := &countingProvider{}
	cache := newMemoryCache()
	c := NewCached(upstream, cache, time.Minute)

	c.FetchNews(context.Background(), "TSLA", 8)
	c.Refresh(context.Background(), "TSLA", 8)
	items, _ := c.FetchNews(context.Background(), "TSLA", 8)

	assert.Equal(t, 2, upstream.calls)
	assert.Equal(t, "TSLA call 2", items[0]["title"])
}

func TestCachedFetchNews_UpstreamErrorNotCached(t *testing.T) {
	upstream := &countingProvider{err: errors.New("down")}
	cache := newMemoryCache()
	c := NewCached(upstream, cache, time.Minute)

	_, err := c.FetchNews(context.Background(), "AAPL", 20)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(cache.data))
}

func TestNew(t *testing.T) {
	p, err := New("", Options{})
	assert.Equal(t, nil, err)
	assert.Equal(t, NameYahoo, p.Name())

	p, err = New(NameRSS, Options{})
	assert.Equal(t, nil, err)
	assert.Equal(t, NameRSS, p.Name())

	_, err = New(NameFinnhub, Options{})
	assert.NotEqual(t, nil, err)

	p, err = New(NameFinnhub, Options{FinnhubAPIKey: "k"})
	assert.Equal(t, nil, err)
	assert.Equal(t, NameFinnhub, p.Name())

	_, err = New("bloomberg", Options{})
	assert.NotEqual(t, nil, err)
}

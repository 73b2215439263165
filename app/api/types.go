package api

import (
	"context"
	"time"

	"github.com/lysyi3m/ticker-comb/app/database"
	"github.com/lysyi3m/ticker-comb/app/news"
	"github.com/lysyi3m/ticker-comb/app/provider"
	"github.com/lysyi3m/ticker-comb/app/tasks"
)

type NewsService interface {
	SymbolNews(ctx context.Context, symbol string) ([]news.Item, error)
	MarketNews(ctx context.Context) ([]news.Item, error)
}

var _ NewsService = (*news.Service)(nil)

type MarketData interface {
	Quote(ctx context.Context, symbol string) (*provider.Quote, error)
	Search(ctx context.Context, query string) ([]provider.SearchResult, error)
}

var _ MarketData = (*provider.Yahoo)(nil)

type FetchLog interface {
	GetRecentFetches(limit int) ([]database.Fetch, error)
	GetFetchStats() (*database.FetchStats, error)
	GetSymbolStats(since time.Time) ([]database.SymbolStats, error)
}

var _ FetchLog = (*database.FetchRepository)(nil)

type HealthChecker interface {
	Health(ctx context.Context) map[string]any
}

// Info describes the running service for the health and root endpoints
type Info struct {
	Provider   string
	Version    string
	Symbols    []string
	FetchCount int
}

type Handler struct {
	news      NewsService
	market    MarketData
	fetchLog  FetchLog
	scheduler tasks.TaskSchedulerInterface
	refresher tasks.NewsRefresher
	cache     HealthChecker
	info      Info
}

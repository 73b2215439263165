package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/ticker-comb/app/api"
	"github.com/lysyi3m/ticker-comb/app/cache"
	"github.com/lysyi3m/ticker-comb/app/cfg"
	"github.com/lysyi3m/ticker-comb/app/database"
	"github.com/lysyi3m/ticker-comb/app/news"
	"github.com/lysyi3m/ticker-comb/app/provider"
	"github.com/lysyi3m/ticker-comb/app/tasks"
	"github.com/lysyi3m/ticker-comb/app/watchlist"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if config == nil {
		return
	}

	logLevel := slog.LevelInfo
	if config.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := run(config); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(config *cfg.Cfg) error {
	slog.Info("Starting Ticker Comb server", "version", config.Version, "provider", config.Provider)

	wl, err := watchlist.Load(config.WatchlistFile)
	if err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}
	slog.Info("Watchlist loaded", "file", config.WatchlistFile, "symbols", len(wl.MarketSymbols), "filters", len(wl.Filters))

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", config.DBPath, "schema_version", version, "dirty", dirty)

	fetchRepo := database.NewFetchRepository(db)

	httpClient := &http.Client{Timeout: config.RequestTimeout + 5*time.Second}
	upstream, err := provider.New(config.Provider, provider.Options{
		YahooBaseURL:   config.YahooBaseURL,
		FinnhubAPIKey:  config.FinnhubAPIKey,
		RSSURLTemplate: config.RSSURLTemplate,
		UserAgent:      config.UserAgent,
		Timeout:        config.RequestTimeout,
		HTTPClient:     httpClient,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	var (
		newsProvider news.Provider = upstream
		refresher    tasks.NewsRefresher
		cacheHealth  api.HealthChecker
	)

	if config.CacheEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisCache, err := cache.NewCache(ctx, config.RedisURL)
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable, serving without cache", "error", err)
		} else {
			defer redisCache.Close()
			cached := provider.NewCached(upstream, redisCache, config.CacheTTL)
			newsProvider = cached
			refresher = cached
			cacheHealth = redisCache
		}
	}

	newsService := news.NewService(newsProvider, wl.Options(config.FetchDelay), fetchRepo)
	opts := newsService.Options()
	market := provider.NewYahoo(config.YahooBaseURL, httpClient, config.UserAgent, config.RequestTimeout)

	scheduler := tasks.NewScheduler(refresher, fetchRepo, tasks.Options{
		Symbols:     opts.MarketSymbols,
		FetchCount:  opts.FetchCount,
		Interval:    config.WarmInterval,
		WorkerCount: config.WorkerCount,
		Retention:   config.FetchRetention,
	})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(newsService, market, fetchRepo, scheduler, refresher, cacheHealth, api.Info{
		Provider:   upstream.Name(),
		Version:    config.Version,
		Symbols:    opts.MarketSymbols,
		FetchCount: opts.FetchCount,
	})

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      api.NewServer(handler, config.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		slog.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}

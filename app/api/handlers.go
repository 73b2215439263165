package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/ticker-comb/app/news"
	"github.com/lysyi3m/ticker-comb/app/provider"
	"github.com/lysyi3m/ticker-comb/app/tasks"
)

const (
	defaultFetchesLimit = 50
	maxFetchesLimit     = 500
)

// NewHandler wires the HTTP handlers. fetchLog, scheduler, refresher and
// cache are optional and may be nil.
func NewHandler(service NewsService, market MarketData, fetchLog FetchLog,
	scheduler tasks.TaskSchedulerInterface, refresher tasks.NewsRefresher,
	cache HealthChecker, info Info) *Handler {
	return &Handler{
		news:      service,
		market:    market,
		fetchLog:  fetchLog,
		scheduler: scheduler,
		refresher: refresher,
		cache:     cache,
		info:      info,
	}
}

// GetNews serves symbol mode when ?symbol= is given and market mode otherwise.
// Failures answer 500 with an empty news list.
func (h *Handler) GetNews(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("News handler panic", "symbol", symbol, "panic", rec)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprint(rec),
				"news":  []news.Item{},
			})
		}
	}()

	var (
		items []news.Item
		err   error
	)
	if symbol != "" {
		items, err = h.news.SymbolNews(c.Request.Context(), symbol)
	} else {
		items, err = h.news.MarketNews(c.Request.Context())
	}

	if err != nil {
		slog.Error("Failed to build news", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"news":  []news.Item{},
		})
		return
	}

	if items == nil {
		items = []news.Item{}
	}

	c.Header("X-News-Items", strconv.Itoa(len(items)))
	c.JSON(http.StatusOK, gin.H{"news": items})
}

func (h *Handler) GetQuote(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		symbol = strings.TrimSpace(c.Query("Symbol"))
	}
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no symbol"})
		return
	}

	quote, err := h.market.Quote(c.Request.Context(), symbol)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, quote)
	case errors.Is(err, provider.ErrNoPriceData):
		c.JSON(http.StatusNotFound, gin.H{"error": "No price data"})
	case errors.Is(err, provider.ErrUpstream):
		slog.Warn("Quote upstream error", "symbol", symbol, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		slog.Error("Quote failed", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) GetSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		query = strings.TrimSpace(c.Query("q"))
	}
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"results": []provider.SearchResult{}})
		return
	}

	results, err := h.market.Search(c.Request.Context(), query)
	if err != nil {
		slog.Error("Search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if results == nil {
		results = []provider.SearchResult{}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"provider":  h.info.Provider,
		"version":   h.info.Version,
	}

	if h.cache != nil {
		cacheHealth := h.cache.Health(c.Request.Context())
		health["cache"] = cacheHealth
		if cacheHealth["status"] != "healthy" {
			health["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]any{
		"provider":       h.info.Provider,
		"market_symbols": h.info.Symbols,
	}

	if h.fetchLog != nil {
		if fetchStats, err := h.fetchLog.GetFetchStats(); err == nil {
			stats["fetches"] = fetchStats
		} else {
			slog.Error("Database error", "operation", "get_fetch_stats", "error", err)
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListFetches(c *gin.Context) {
	limit := defaultFetchesLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxFetchesLimit)
	}

	fetches, err := h.fetchLog.GetRecentFetches(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_fetches", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fetches": fetches,
		"total":   len(fetches),
	})
}

func (h *Handler) APISymbolStats(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
			return
		}
		hours = n
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	symbols, err := h.fetchLog.GetSymbolStats(since)
	if err != nil {
		slog.Error("Database error", "operation", "get_symbol_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"since":   since.Format(time.RFC3339),
		"symbols": symbols,
	})
}

// APIWarmCache enqueues one warm-up task per market symbol
func (h *Handler) APIWarmCache(c *gin.Context) {
	if h.scheduler == nil || h.refresher == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Cache is not enabled"})
		return
	}

	enqueued := make([]gin.H, 0, len(h.info.Symbols))
	for _, symbol := range h.info.Symbols {
		task := tasks.NewWarmNewsTask(symbol, h.refresher, h.info.FetchCount)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing warm task", "symbol", symbol, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue warm task",
				"details": err.Error(),
				"tasks":   enqueued,
			})
			return
		}
		enqueued = append(enqueued, gin.H{
			"id":     task.ID,
			"type":   task.Type,
			"symbol": symbol,
		})
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Warm-up tasks enqueued",
		"tasks":   enqueued,
	})
}

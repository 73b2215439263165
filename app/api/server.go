package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	api := r.Group("/api")
	{
		api.GET("/news", handler.GetNews)
		api.GET("/quote", handler.GetQuote)
		api.GET("/search", handler.GetSearch)
	}

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	adminEnabled := apiAccessKey != "" && handler.fetchLog != nil
	if adminEnabled {
		admin := api.Group("/admin")
		admin.Use(authMiddleware(apiAccessKey))
		{
			admin.GET("/fetches", handler.APIListFetches)
			admin.GET("/symbols", handler.APISymbolStats)
			admin.POST("/warm", handler.APIWarmCache)
		}
		slog.Info("Admin API endpoints enabled with authentication")
	} else {
		slog.Info("Admin API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"market_news": "/api/news",
			"symbol_news": "/api/news?symbol=<symbol>",
			"quote":       "/api/quote?symbol=<symbol>",
			"search":      "/api/search?query=<text>",
			"health":      "/health",
			"stats":       "/stats",
		}

		if adminEnabled {
			endpoints["fetches"] = "/api/admin/fetches (requires X-API-Key header)"
			endpoints["symbols"] = "/api/admin/symbols (requires X-API-Key header)"
			endpoints["warm"] = "/api/admin/warm (POST, requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "Ticker Comb",
			"version":     handler.info.Version,
			"description": "Market news aggregation with normalization and deduplication",
			"provider":    handler.info.Provider,
			"endpoints":   endpoints,
			"api_status": map[string]any{
				"enabled":       adminEnabled,
				"auth_required": adminEnabled,
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware accepts the key in X-API-Key or as a Bearer token
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// News provider configuration
	Provider       string `long:"provider" env:"NEWS_PROVIDER" default:"yahoo" choice:"yahoo" choice:"finnhub" choice:"rss" description:"Upstream news provider"`
	YahooBaseURL   string `long:"yahoo-base-url" env:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com" description:"Yahoo Finance API base URL"`
	FinnhubAPIKey  string `long:"finnhub-api-key" env:"FINNHUB_API_KEY" description:"Finnhub API key (required for the finnhub provider)"`
	RSSURLTemplate string `long:"rss-url-template" env:"RSS_URL_TEMPLATE" description:"RSS feed URL with a %s placeholder for the symbol"`
	WatchlistFile  string `long:"watchlist" env:"WATCHLIST_FILE" default:"./watchlist.yml" description:"Market symbols and filter rules"`
	FetchDelay     int    `long:"fetch-delay" env:"FETCH_DELAY_MS" default:"300" description:"Pause between symbols in market mode, in milliseconds"`
	RequestTimeout int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"10" description:"Upstream request timeout in seconds"`

	// Storage configuration
	DBPath         string `long:"db-path" env:"DB_PATH" default:"./ticker-comb.db" description:"SQLite database file for the fetch log"`
	RedisURL       string `long:"redis-url" env:"REDIS_URL" description:"Redis URL for provider response caching (optional)"`
	CacheTTL       int    `long:"cache-ttl" env:"CACHE_TTL" default:"300" description:"Provider response cache TTL in seconds"`
	FetchRetention int    `long:"fetch-retention" env:"FETCH_RETENTION_HOURS" default:"168" description:"Fetch log retention in hours (0 keeps everything)"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for cache warm-up"`
	WarmInterval int    `long:"warm-interval" env:"WARM_INTERVAL" default:"240" description:"Cache warm-up interval in seconds"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; TickerComb/1.0)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help
// was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	nonNegativeFields := map[string]int{
		"fetch delay":     raw.FetchDelay,
		"request timeout": raw.RequestTimeout,
		"cache TTL":       raw.CacheTTL,
		"fetch retention": raw.FetchRetention,
		"warm interval":   raw.WarmInterval,
		"worker count":    raw.WorkerCount,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return nil, fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if raw.Provider == "finnhub" && raw.FinnhubAPIKey == "" {
		return nil, fmt.Errorf("finnhub provider requires FINNHUB_API_KEY")
	}

	cfg := &Cfg{
		Provider:       raw.Provider,
		YahooBaseURL:   raw.YahooBaseURL,
		FinnhubAPIKey:  raw.FinnhubAPIKey,
		RSSURLTemplate: raw.RSSURLTemplate,
		WatchlistFile:  raw.WatchlistFile,
		FetchDelay:     time.Duration(raw.FetchDelay) * time.Millisecond,
		RequestTimeout: time.Duration(raw.RequestTimeout) * time.Second,
		DBPath:         raw.DBPath,
		RedisURL:       raw.RedisURL,
		CacheTTL:       time.Duration(raw.CacheTTL) * time.Second,
		FetchRetention: time.Duration(raw.FetchRetention) * time.Hour,
		Port:           raw.Port,
		WorkerCount:    raw.WorkerCount,
		WarmInterval:   time.Duration(raw.WarmInterval) * time.Second,
		APIAccessKey:   raw.APIAccessKey,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}

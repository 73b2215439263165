package cfg

import "time"

type Cfg struct {
	// News provider configuration
	Provider       string
	YahooBaseURL   string
	FinnhubAPIKey  string
	RSSURLTemplate string
	WatchlistFile  string
	FetchDelay     time.Duration
	RequestTimeout time.Duration

	// Storage configuration
	DBPath         string
	RedisURL       string
	CacheTTL       time.Duration
	FetchRetention time.Duration

	// Application configuration
	Port         string
	WorkerCount  int
	WarmInterval time.Duration
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// CacheEnabled reports whether provider responses go through Redis
func (c *Cfg) CacheEnabled() bool {
	return c.RedisURL != "" && c.CacheTTL > 0
}

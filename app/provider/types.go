package provider

import (
	"errors"
	"net/http"
	"time"
)

const (
	NameYahoo   = "yahoo"
	NameFinnhub = "finnhub"
	NameRSS     = "rss"
)

const VolatilityMedium = "medium"

var (
	ErrUpstream    = errors.New("upstream error")
	ErrNoPriceData = errors.New("no price data")
)

type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

type SearchResult struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	ChangePct  float64 `json:"change_pct"`
	Sector     string  `json:"sector"`
	Volatility string  `json:"volatility"`
}

// Options configures every provider built by New.
type Options struct {
	YahooBaseURL   string
	FinnhubAPIKey  string
	RSSURLTemplate string
	UserAgent      string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

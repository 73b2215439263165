package database

import (
	"time"
)

type Fetch struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Provider   string    `json:"provider"`
	Mode       string    `json:"mode"`
	ItemCount  int       `json:"item_count"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	FetchedAt  time.Time `json:"fetched_at"`
}

type FetchStats struct {
	Total         int        `json:"total"`
	Failed        int        `json:"failed"`
	Items         int        `json:"items"`
	AvgDurationMs float64    `json:"avg_duration_ms"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
}

type SymbolStats struct {
	Symbol        string    `json:"symbol"`
	Fetches       int       `json:"fetches"`
	Failures      int       `json:"failures"`
	Items         int       `json:"items"`
	LastFetchedAt time.Time `json:"last_fetched_at"`
}

package news

import (
	"context"
	"slices"
	"time"
)

// RawItem is one untrusted news record as returned by a provider. Any field
// may be missing, null, of the wrong type or nested under "content".
type RawItem = map[string]any

const (
	DefaultPublisher = "Market News"
	ImpactNeutral    = "neutral"
)

const (
	ModeSymbol = "symbol"
	ModeMarket = "market"
)

// Item is the normalized news record served to clients.
type Item struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Source         string   `json:"source"`
	Date           int64    `json:"date"`
	Summary        string   `json:"summary"`
	Impact         string   `json:"impact"`
	RelatedSymbols []string `json:"related_symbols"`
	Link           string   `json:"link"`
}

// Candidate is an item still being built. RelatedSymbols is a set until
// Finalize freezes it into a sorted slice.
type Candidate struct {
	ID             string
	Title          string
	Source         string
	Date           int64
	Summary        string
	Link           string
	RelatedSymbols map[string]struct{}

	IsFiltered   bool
	FilterReason string
}

func (c *Candidate) AddSymbols(symbols ...string) {
	if c.RelatedSymbols == nil {
		c.RelatedSymbols = make(map[string]struct{}, len(symbols))
	}
	for _, s := range symbols {
		if s != "" {
			c.RelatedSymbols[s] = struct{}{}
		}
	}
}

func (c *Candidate) Symbols() []string {
	symbols := make([]string, 0, len(c.RelatedSymbols))
	for s := range c.RelatedSymbols {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

func (c *Candidate) Finalize() Item {
	return Item{
		ID:             c.ID,
		Title:          c.Title,
		Source:         c.Source,
		Date:           c.Date,
		Summary:        c.Summary,
		Impact:         ImpactNeutral,
		RelatedSymbols: c.Symbols(),
		Link:           c.Link,
	}
}

// Provider fetches raw news for a symbol from a market-data source.
type Provider interface {
	Name() string
	FetchNews(ctx context.Context, symbol string, count int) ([]RawItem, error)
}

// FetchRecord describes one provider call made while serving a request.
type FetchRecord struct {
	Symbol    string
	Provider  string
	Mode      string
	ItemCount int
	Error     string
	Duration  time.Duration
	FetchedAt time.Time
}

type FetchRecorder interface {
	RecordFetch(record FetchRecord) error
}

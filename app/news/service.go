package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Upper bounds for the configurable limits. Larger settings are clamped.
const (
	MaxPerSymbolLimit = 8
	MaxSymbolLimit    = 20
	MaxMarketLimit    = 30
)

var DefaultMarketSymbols = []string{"^GSPC", "^IXIC", "^DJI", "AAPL", "MSFT", "NVDA", "AMZN", "TSLA"}

// Options holds the fixed limits of both news modes.
type Options struct {
	MarketSymbols  []string
	PerSymbolLimit int           // raw items taken per symbol in market mode
	SymbolLimit    int           // max items returned in symbol mode
	MarketLimit    int           // max items returned in market mode
	FetchCount     int           // items requested from the provider per symbol
	FetchDelay     time.Duration // pause between symbols in market mode
	Filterer       *Filterer
}

func DefaultOptions() Options {
	return Options{
		MarketSymbols:  DefaultMarketSymbols,
		PerSymbolLimit: 8,
		SymbolLimit:    20,
		MarketLimit:    30,
		FetchCount:     20,
		FetchDelay:     300 * time.Millisecond,
	}
}

type Service struct {
	provider Provider
	opts     Options
	recorder FetchRecorder
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewService(provider Provider, opts Options, recorder FetchRecorder) *Service {
	defaults := DefaultOptions()
	if len(opts.MarketSymbols) == 0 {
		opts.MarketSymbols = defaults.MarketSymbols
	}
	opts.PerSymbolLimit = clampLimit(opts.PerSymbolLimit, defaults.PerSymbolLimit, MaxPerSymbolLimit)
	opts.SymbolLimit = clampLimit(opts.SymbolLimit, defaults.SymbolLimit, MaxSymbolLimit)
	opts.MarketLimit = clampLimit(opts.MarketLimit, defaults.MarketLimit, MaxMarketLimit)
	if opts.FetchCount <= 0 {
		opts.FetchCount = defaults.FetchCount
	}
	if opts.FetchDelay < 0 {
		opts.FetchDelay = 0
	}

	return &Service{
		provider: provider,
		opts:     opts,
		recorder: recorder,
		sleep:    sleepContext,
	}
}

// clampLimit replaces a non-positive limit with def and caps it at max.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, max)
}

func (s *Service) Options() Options {
	return s.opts
}

// SymbolNews returns up to SymbolLimit items for one symbol in provider order.
func (s *Service) SymbolNews(ctx context.Context, symbol string) ([]Item, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	raw, err := s.fetch(ctx, symbol, ModeSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}

	items := make([]Item, 0, min(len(raw), s.opts.SymbolLimit))
	for i, rawItem := range raw {
		if len(items) >= s.opts.SymbolLimit {
			break
		}
		c, ok := SafeExtract(rawItem, symbol, i)
		if !ok {
			continue
		}
		if s.opts.Filterer.Apply(&c); c.IsFiltered {
			slog.Debug("News item filtered", "symbol", symbol, "title", c.Title, "reason", c.FilterReason)
			continue
		}
		items = append(items, c.Finalize())
	}

	return items, nil
}

// MarketNews walks the market symbols one by one, merges duplicate articles
// and returns the newest MarketLimit items. Failing symbols are skipped.
func (s *Service) MarketNews(ctx context.Context) ([]Item, error) {
	agg := NewAggregator()
	failed := 0

	for n, symbol := range s.opts.MarketSymbols {
		if n > 0 && s.opts.FetchDelay > 0 {
			if err := s.sleep(ctx, s.opts.FetchDelay); err != nil {
				slog.Warn("Market news fetch interrupted", "symbol", symbol, "error", err)
				break
			}
		}

		raw, err := s.fetch(ctx, symbol, ModeMarket)
		if err != nil {
			slog.Warn("Failed to fetch symbol news, skipping", "symbol", symbol, "provider", s.provider.Name(), "error", err)
			failed++
			continue
		}

		if len(raw) > s.opts.PerSymbolLimit {
			raw = raw[:s.opts.PerSymbolLimit]
		}

		added, merged := 0, 0
		for i, rawItem := range raw {
			c, ok := SafeExtract(rawItem, symbol, i)
			if !ok {
				continue
			}
			if s.opts.Filterer.Apply(&c); c.IsFiltered {
				continue
			}
			if agg.Add(c) {
				added++
			} else {
				merged++
			}
		}

		slog.Debug("Symbol news aggregated", "symbol", symbol, "raw", len(raw), "added", added, "merged", merged)
	}

	items := agg.Finalize(s.opts.MarketLimit)

	slog.Info("Market news assembled",
		"symbols", len(s.opts.MarketSymbols),
		"failed", failed,
		"unique", agg.Len(),
		"returned", len(items))

	return items, nil
}

func (s *Service) fetch(ctx context.Context, symbol, mode string) ([]RawItem, error) {
	started := time.Now()
	raw, err := s.provider.FetchNews(ctx, symbol, s.opts.FetchCount)

	record := FetchRecord{
		Symbol:    symbol,
		Provider:  s.provider.Name(),
		Mode:      mode,
		ItemCount: len(raw),
		Duration:  time.Since(started),
		FetchedAt: started.UTC(),
	}
	if err != nil {
		record.Error = err.Error()
		record.ItemCount = 0
	}

	if s.recorder != nil {
		if recErr := s.recorder.RecordFetch(record); recErr != nil {
			slog.Error("Failed to record fetch", "symbol", symbol, "error", recErr)
		}
	}

	return raw, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

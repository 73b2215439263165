package watchlist

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/ticker-comb/app/news"
)

type Watchlist struct {
	MarketSymbols []string          `yaml:"market_symbols"`
	Settings      Settings          `yaml:"settings"`
	Filters       []news.FilterRule `yaml:"filters"`
}

type Settings struct {
	PerSymbolLimit int `yaml:"per_symbol_limit"`
	SymbolLimit    int `yaml:"symbol_limit"`
	MarketLimit    int `yaml:"market_limit"`
	FetchCount     int `yaml:"fetch_count"`
}

func Default() *Watchlist {
	defaults := news.DefaultOptions()
	return &Watchlist{
		MarketSymbols: slices.Clone(defaults.MarketSymbols),
		Settings: Settings{
			PerSymbolLimit: defaults.PerSymbolLimit,
			SymbolLimit:    defaults.SymbolLimit,
			MarketLimit:    defaults.MarketLimit,
			FetchCount:     defaults.FetchCount,
		},
	}
}

// Load reads the watchlist file. A missing file yields the defaults.
func Load(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("Watchlist file not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid watchlist %s: %w", path, err)
	}

	slog.Debug("Watchlist loaded", "path", path, "symbols", len(w.MarketSymbols), "filters", len(w.Filters))

	return w, nil
}

func Parse(data []byte) (*Watchlist, error) {
	var w Watchlist
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := w.validate(); err != nil {
		return nil, err
	}

	defaults := Default()
	if len(w.MarketSymbols) == 0 {
		w.MarketSymbols = defaults.MarketSymbols
	}
	if w.Settings.PerSymbolLimit == 0 {
		w.Settings.PerSymbolLimit = defaults.Settings.PerSymbolLimit
	}
	if w.Settings.SymbolLimit == 0 {
		w.Settings.SymbolLimit = defaults.Settings.SymbolLimit
	}
	if w.Settings.MarketLimit == 0 {
		w.Settings.MarketLimit = defaults.Settings.MarketLimit
	}
	if w.Settings.FetchCount == 0 {
		w.Settings.FetchCount = defaults.Settings.FetchCount
	}

	return &w, nil
}

func (w *Watchlist) validate() error {
	symbols := make([]string, 0, len(w.MarketSymbols))
	for i, s := range w.MarketSymbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return fmt.Errorf("market symbol at index %d is empty", i)
		}
		if !slices.Contains(symbols, s) {
			symbols = append(symbols, s)
		}
	}
	w.MarketSymbols = symbols

	nonNegativeFields := map[string]int{
		"per symbol limit": w.Settings.PerSymbolLimit,
		"symbol limit":     w.Settings.SymbolLimit,
		"market limit":     w.Settings.MarketLimit,
		"fetch count":      w.Settings.FetchCount,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	maxFields := []struct {
		name  string
		value int
		max   int
	}{
		{"per symbol limit", w.Settings.PerSymbolLimit, news.MaxPerSymbolLimit},
		{"symbol limit", w.Settings.SymbolLimit, news.MaxSymbolLimit},
		{"market limit", w.Settings.MarketLimit, news.MaxMarketLimit},
	}

	for _, field := range maxFields {
		if field.value > field.max {
			return fmt.Errorf("%s must be at most %d", field.name, field.max)
		}
	}

	for i, filter := range w.Filters {
		if !news.FilterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

// Options turns the watchlist into service options.
func (w *Watchlist) Options(fetchDelay time.Duration) news.Options {
	opts := news.Options{
		MarketSymbols:  slices.Clone(w.MarketSymbols),
		PerSymbolLimit: w.Settings.PerSymbolLimit,
		SymbolLimit:    w.Settings.SymbolLimit,
		MarketLimit:    w.Settings.MarketLimit,
		FetchCount:     w.Settings.FetchCount,
		FetchDelay:     fetchDelay,
	}
	if len(w.Filters) > 0 {
		opts.Filterer = news.NewFilterer(w.Filters)
	}
	return opts
}

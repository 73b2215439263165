package provider

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lysyi3m/ticker-comb/app/news"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

const (
	searchQuotesCount = 8
	quoteBatchSize    = 10
	searchCandidates  = 25
	searchResultLimit = 20
)

type Yahoo struct {
	fetcher
	baseURL string
}

func NewYahoo(baseURL string, httpClient *http.Client, userAgent string, timeout time.Duration) *Yahoo {
	return &Yahoo{
		fetcher: newFetcher(httpClient, userAgent, timeout),
		baseURL: strings.TrimRight(cmp.Or(baseURL, DefaultYahooBaseURL), "/"),
	}
}

func (y *Yahoo) Name() string { return NameYahoo }

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol string `json:"symbol"`
	} `json:"quotes"`
	News []any `json:"news"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteResult `json:"result"`
	} `json:"quoteResponse"`
}

type yahooQuoteResult struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	LongName                   string  `json:"longName"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	Sector                     string  `json:"sector"`
	Industry                   string  `json:"industry"`
}

// FetchNews returns the raw news array of the search endpoint. Entries are
// left untyped; only non-object entries are dropped.
func (y *Yahoo) FetchNews(ctx context.Context, symbol string, count int) ([]news.RawItem, error) {
	params := url.Values{}
	params.Set("q", symbol)
	params.Set("quotesCount", "0")
	params.Set("newsCount", strconv.Itoa(count))

	var resp yahooSearchResponse
	if err := y.getJSON(ctx, y.baseURL+"/v1/finance/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	items := make([]news.RawItem, 0, len(resp.News))
	for _, entry := range resp.News {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

// Quote returns the last close and its change against the previous close.
func (y *Yahoo) Quote(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=2d&interval=1d", y.baseURL, url.PathEscape(symbol))

	var resp yahooChartResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	var closes []float64
	if len(resp.Chart.Result) > 0 && len(resp.Chart.Result[0].Indicators.Quote) > 0 {
		for _, c := range resp.Chart.Result[0].Indicators.Quote[0].Close {
			if c != nil {
				closes = append(closes, *c)
			}
		}
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPriceData, symbol)
	}

	price := closes[len(closes)-1]
	prevClose := price
	if len(closes) > 1 {
		prevClose = closes[len(closes)-2]
	}

	return &Quote{
		Symbol:    symbol,
		Price:     price,
		ChangePct: changePercent(price, prevClose),
	}, nil
}

func changePercent(price, prevClose float64) float64 {
	prev := decimal.NewFromFloat(prevClose)
	if !prev.IsPositive() {
		return 0
	}
	return decimal.NewFromFloat(price).Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Search resolves a free-text query to priced symbols. The query itself is
// tried as a ticker next to whatever the search endpoint suggests.
func (y *Yahoo) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}

	candidates := []string{strings.ToUpper(query)}
	for _, s := range y.searchSymbols(ctx, query) {
		s = strings.ToUpper(s)
		if !slices.Contains(candidates, s) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) > searchCandidates {
		candidates = candidates[:searchCandidates]
	}

	results := make([]SearchResult, 0, searchResultLimit)
	for batch := range slices.Chunk(candidates, quoteBatchSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		quotes, err := y.fetchQuotes(ctx, batch)
		if err != nil {
			slog.Warn("Quote batch failed", "symbols", batch, "error", err)
			continue
		}

		for _, q := range quotes {
			result, ok := toSearchResult(q)
			if !ok {
				continue
			}
			results = append(results, result)
			if len(results) == searchResultLimit {
				return results, nil
			}
		}
	}

	return results, nil
}

func (y *Yahoo) searchSymbols(ctx context.Context, query string) []string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", strconv.Itoa(searchQuotesCount))
	params.Set("newsCount", "0")
	params.Set("listsCount", "0")

	var resp yahooSearchResponse
	if err := y.getJSON(ctx, y.baseURL+"/v1/finance/search?"+params.Encode(), &resp); err != nil {
		slog.Warn("Symbol search failed", "query", query, "error", err)
		return nil
	}

	var symbols []string
	for _, q := range resp.Quotes {
		if s := strings.TrimSpace(q.Symbol); s != "" && !slices.Contains(symbols, s) {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

func (y *Yahoo) fetchQuotes(ctx context.Context, symbols []string) ([]yahooQuoteResult, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))

	var resp yahooQuoteResponse
	if err := y.getJSON(ctx, y.baseURL+"/v7/finance/quote?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.QuoteResponse.Result, nil
}

func toSearchResult(q yahooQuoteResult) (SearchResult, bool) {
	symbol := strings.TrimSpace(q.Symbol)
	if symbol == "" || q.RegularMarketPrice <= 0 {
		return SearchResult{}, false
	}

	return SearchResult{
		Symbol:     symbol,
		Name:       cmp.Or(strings.TrimSpace(q.LongName), strings.TrimSpace(q.ShortName), symbol),
		Price:      q.RegularMarketPrice,
		ChangePct:  q.RegularMarketChangePercent,
		Sector:     cmp.Or(strings.TrimSpace(q.Sector), strings.TrimSpace(q.Industry), "N/A"),
		Volatility: VolatilityMedium,
	}, true
}

func (y *Yahoo) getJSON(ctx context.Context, endpoint string, target any) error {
	data, err := y.fetch(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

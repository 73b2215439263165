package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/lysyi3m/ticker-comb/app/news"
)

const finnhubLookback = 7 * 24 * time.Hour

type Finnhub struct {
	client  *finnhub.DefaultApiService
	timeout time.Duration
	now     func() time.Time
}

func NewFinnhub(apiKey string, httpClient *http.Client, userAgent string, timeout time.Duration) *Finnhub {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	if userAgent != "" {
		cfg.UserAgent = userAgent
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &Finnhub{
		client:  finnhub.NewAPIClient(cfg).DefaultApi,
		timeout: timeout,
		now:     time.Now,
	}
}

func (f *Finnhub) Name() string { return NameFinnhub }

// FetchNews returns company news of the last seven days, mapped onto the
// same loose record shape the Yahoo search endpoint produces.
func (f *Finnhub) FetchNews(ctx context.Context, symbol string, count int) ([]news.RawItem, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	to := f.now().UTC()
	from := to.Add(-finnhubLookback)

	res, resp, err := f.client.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format(time.DateOnly)).
		To(to.Format(time.DateOnly)).
		Execute()
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: HTTP %d: %v", ErrUpstream, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to fetch company news: %w", err)
	}

	items := make([]news.RawItem, 0, min(len(res), count))
	for _, n := range res {
		if count > 0 && len(items) >= count {
			break
		}
		items = append(items, companyNewsToRaw(n))
	}
	return items, nil
}

func companyNewsToRaw(n finnhub.CompanyNews) news.RawItem {
	raw := news.RawItem{}

	if n.Id != nil {
		raw["id"] = strconv.FormatInt(*n.Id, 10)
	}
	if n.Headline != nil {
		raw["title"] = *n.Headline
	}
	if n.Source != nil {
		raw["publisher"] = *n.Source
	}
	if n.Summary != nil {
		raw["summary"] = *n.Summary
	}
	if n.Url != nil {
		raw["link"] = *n.Url
	}
	if n.Datetime != nil {
		raw["providerPublishTime"] = *n.Datetime
	}
	if n.Related != nil && *n.Related != "" {
		raw["relatedTickers"] = strings.Split(*n.Related, ",")
	}

	return raw
}

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/go-playground/assert/v2"
)

// rewriteTransport redirects all requests to a fixed base URL (test server).
type rewriteTransport struct {
	base  string
	inner http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	parsed, _ := http.NewRequest("GET", rt.base, nil)
	req2.URL.Host = parsed.URL.Host
	req2.URL.Scheme = parsed.URL.Scheme
	return rt.inner.RoundTrip(req2)
}

func TestCompanyNewsToRaw(t *testing.T) {
	id := int64(7)
	headline := "Apple unveils new chip"
	source := "Reuters"
	url := "https://example.com/apple"
	datetime := int64(1705312800)
	related := "AAPL,MSFT"

	raw := companyNewsToRaw(finnhub.CompanyNews{
		Id:       &id,
		Headline: &headline,
		Source:   &source,
		Url:      &url,
		Datetime: &datetime,
		Related:  &related,
	})

	assert.Equal(t, "7", raw["id"])
	assert.Equal(t, headline, raw["title"])
	assert.Equal(t, source, raw["publisher"])
	assert.Equal(t, url, raw["link"])
	assert.Equal(t, datetime, raw["providerPublishTime"])
	assert.Equal(t, []string{"AAPL", "MSFT"}, raw["relatedTickers"])

	_, hasSummary := raw["summary"]
	assert.Equal(t, false, hasSummary)
}

func TestFinnhubFetchNews(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		gotToken = r.Header.Get("X-Finnhub-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "headline": "One", "source": "CNBC", "datetime": 1705312800, "related": "AAPL"},
			{"id": 2, "headline": "Two", "source": "CNBC", "datetime": 1705312700, "related": "AAPL"},
			{"id": 3, "headline": "Three", "source": "CNBC", "datetime": 1705312600, "related": "AAPL"}
		]`))
	}))
	defer srv.Close()

	httpClient := srv.Client()
	httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	f := NewFinnhub("secret", httpClient, "", time.Second)
	f.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

	items, err := f.FetchNews(context.Background(), "AAPL", 2)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "One", items[0]["title"])
	assert.Equal(t, "/api/v1/company-news", gotPath)
	assert.Equal(t, "2024-01-08", gotFrom)
	assert.Equal(t, "2024-01-15", gotTo)
	assert.Equal(t, "secret", gotToken)
}

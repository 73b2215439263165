package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func newFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return fetcher{httpClient: httpClient, userAgent: userAgent, timeout: timeout}
}

func (f fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrUpstream, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

package provider

import (
	"fmt"

	"github.com/lysyi3m/ticker-comb/app/news"
)

// New builds the news provider selected by name.
func New(name string, opts Options) (news.Provider, error) {
	switch name {
	case NameYahoo, "":
		return NewYahoo(opts.YahooBaseURL, opts.HTTPClient, opts.UserAgent, opts.Timeout), nil
	case NameFinnhub:
		if opts.FinnhubAPIKey == "" {
			return nil, fmt.Errorf("finnhub provider requires an API key")
		}
		return NewFinnhub(opts.FinnhubAPIKey, opts.HTTPClient, opts.UserAgent, opts.Timeout), nil
	case NameRSS:
		return NewRSS(opts.RSSURLTemplate, opts.HTTPClient, opts.UserAgent, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

// Command newsctl queries the news providers directly, without the HTTP
// server, database or cache.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lysyi3m/ticker-comb/app/cfg"
	"github.com/lysyi3m/ticker-comb/app/news"
	"github.com/lysyi3m/ticker-comb/app/provider"
	"github.com/lysyi3m/ticker-comb/app/watchlist"
)

var (
	providerName  string
	finnhubKey    string
	yahooBaseURL  string
	rssTemplate   string
	watchlistFile string
	userAgent     string
	timeout       time.Duration
	fetchDelay    time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "newsctl",
	Short:         "Query market news, quotes and symbol search from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&providerName, "provider", envOr("NEWS_PROVIDER", provider.NameYahoo), "news provider (yahoo, finnhub, rss)")
	flags.StringVar(&finnhubKey, "finnhub-api-key", os.Getenv("FINNHUB_API_KEY"), "Finnhub API key")
	flags.StringVar(&yahooBaseURL, "yahoo-base-url", envOr("YAHOO_BASE_URL", provider.DefaultYahooBaseURL), "Yahoo Finance API base URL")
	flags.StringVar(&rssTemplate, "rss-url-template", os.Getenv("RSS_URL_TEMPLATE"), "RSS feed URL with a %s placeholder for the symbol")
	flags.StringVar(&watchlistFile, "watchlist", envOr("WATCHLIST_FILE", "./watchlist.yml"), "market symbols and filter rules")
	flags.StringVar(&userAgent, "user-agent", envOr("USER_AGENT", "Mozilla/5.0 (compatible; TickerComb/1.0)"), "user agent string for HTTP requests")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "upstream request timeout")
	flags.DurationVar(&fetchDelay, "fetch-delay", 300*time.Millisecond, "pause between symbols in market mode")

	newsCmd.Flags().StringP("symbol", "s", "", "symbol to fetch news for (market news when empty)")

	rootCmd.AddCommand(versionCmd, newsCmd, quoteCmd, searchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsctl %s\n", cfg.GetVersion())
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Print normalized news for a symbol or the market watchlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol, _ := cmd.Flags().GetString("symbol")

		p, err := provider.New(providerName, provider.Options{
			YahooBaseURL:   yahooBaseURL,
			FinnhubAPIKey:  finnhubKey,
			RSSURLTemplate: rssTemplate,
			UserAgent:      userAgent,
			Timeout:        timeout,
			HTTPClient:     http.DefaultClient,
		})
		if err != nil {
			return err
		}

		wl, err := watchlist.Load(watchlistFile)
		if err != nil {
			return err
		}

		service := news.NewService(p, wl.Options(fetchDelay), nil)

		var items []news.Item
		if symbol != "" {
			items, err = service.SymbolNews(cmd.Context(), symbol)
		} else {
			items, err = service.MarketNews(cmd.Context())
		}
		if err != nil {
			return err
		}

		return printJSON(map[string]any{"news": items})
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL",
	Short: "Print the latest price and daily change for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quote, err := yahooClient().Quote(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(quote)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search symbols by name or ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := yahooClient().Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"results": results})
	},
}

func yahooClient() *provider.Yahoo {
	return provider.NewYahoo(yahooBaseURL, http.DefaultClient, userAgent, timeout)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package provider

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/ticker-comb/app/news"
)

const DefaultRSSURLTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

type RSS struct {
	fetcher
	urlTemplate string
}

func NewRSS(urlTemplate string, httpClient *http.Client, userAgent string, timeout time.Duration) *RSS {
	return &RSS{
		fetcher:     newFetcher(httpClient, userAgent, timeout),
		urlTemplate: cmp.Or(urlTemplate, DefaultRSSURLTemplate),
	}
}

func (r *RSS) Name() string { return NameRSS }

func (r *RSS) FetchNews(ctx context.Context, symbol string, count int) ([]news.RawItem, error) {
	data, err := r.fetch(ctx, fmt.Sprintf(r.urlTemplate, url.QueryEscape(symbol)))
	if err != nil {
		return nil, err
	}

	// gofeed parsers keep state between calls, so each fetch gets its own.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]news.RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if count > 0 && len(items) >= count {
			break
		}
		if item == nil {
			continue
		}
		items = append(items, feedItemToRaw(feed, item))
	}
	return items, nil
}

func feedItemToRaw(feed *gofeed.Feed, item *gofeed.Item) news.RawItem {
	raw := news.RawItem{
		"title":     item.Title,
		"publisher": feedItemPublisher(feed, item),
		"link":      item.Link,
		"summary":   stripHTML(cmp.Or(item.Description, item.Content)),
	}

	if item.GUID != "" {
		raw["id"] = item.GUID
	}

	if published := cmp.Or(item.PublishedParsed, item.UpdatedParsed); published != nil {
		raw["pubDate"] = published.UTC().Format(time.RFC3339)
	}

	return raw
}

func feedItemPublisher(feed *gofeed.Feed, item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			return strings.TrimSpace(author.Name)
		}
	}
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	return strings.TrimSpace(feed.Title)
}

func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

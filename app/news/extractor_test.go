package news

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract_TopLevelItem(t *testing.T) {
	raw := RawItem{
		"uuid":                "abc-123",
		"title":               "  Apple beats estimates  ",
		"publisher":           "Reuters",
		"link":                "https://example.com/apple",
		"providerPublishTime": float64(1705312800),
		"relatedTickers":      []any{"AAPL", " MSFT ", "", nil},
	}

	c, ok := Extract(raw, "AAPL", 0)
	if !ok {
		t.Fatal("Expected item to be extracted")
	}

	item := c.Finalize()
	if item.ID != "abc-123" {
		t.Errorf("Expected id 'abc-123', got '%s'", item.ID)
	}
	if item.Title != "Apple beats estimates" {
		t.Errorf("Expected trimmed title, got '%s'", item.Title)
	}
	if item.Source != "Reuters" {
		t.Errorf("Expected source 'Reuters', got '%s'", item.Source)
	}
	if item.Date != 1705312800 {
		t.Errorf("Expected date 1705312800, got %d", item.Date)
	}
	if item.Summary != item.Title {
		t.Errorf("Expected summary to fall back to title, got '%s'", item.Summary)
	}
	if item.Impact != "neutral" {
		t.Errorf("Expected impact 'neutral', got '%s'", item.Impact)
	}
	if item.Link != "https://example.com/apple" {
		t.Errorf("Expected link to be kept, got '%s'", item.Link)
	}
	expected := []string{"AAPL", "MSFT"}
	if !reflect.DeepEqual(item.RelatedSymbols, expected) {
		t.Errorf("Expected related symbols %v, got %v", expected, item.RelatedSymbols)
	}
}

func TestExtract_ContentTakesPrecedence(t *testing.T) {
	raw := RawItem{
		"title":     "Outer title",
		"publisher": "Outer Publisher",
		"summary":   "Outer summary",
		"content": map[string]any{
			"id":        "content-id",
			"title":     "Inner title",
			"publisher": "Inner Publisher",
			"summary":   "Inner summary",
			"pubDate":   "2024-01-15T10:00:00Z",
			"canonicalUrl": map[string]any{
				"url": "https://finance.example.com/inner",
			},
		},
	}

	c, ok := Extract(raw, "TSLA", 3)
	if !ok {
		t.Fatal("Expected item to be extracted")
	}

	if c.ID != "content-id" {
		t.Errorf("Expected id 'content-id', got '%s'", c.ID)
	}
	if c.Title != "Inner title" {
		t.Errorf("Expected content title, got '%s'", c.Title)
	}
	if c.Source != "Inner Publisher" {
		t.Errorf("Expected content publisher, got '%s'", c.Source)
	}
	if c.Summary != "Inner summary" {
		t.Errorf("Expected content summary, got '%s'", c.Summary)
	}
	if c.Date != 1705312800 {
		t.Errorf("Expected date 1705312800, got %d", c.Date)
	}
	if c.Link != "https://finance.example.com/inner" {
		t.Errorf("Expected nested canonical link, got '%s'", c.Link)
	}
}

func TestExtract_TitleDrop(t *testing.T) {
	cases := map[string]RawItem{
		"no title":        {"publisher": "Reuters"},
		"empty title":     {"title": ""},
		"blank title":     {"title": "   "},
		"numeric title":   {"title": float64(42)},
		"null title":      {"title": nil},
		"content empty":   {"content": map[string]any{"title": "", "headline": " "}},
		"item headline":   {"headline": "Only item headline is not a title source"},
		"content not map": {"content": "Some text", "publisher": "Reuters"},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, ok := Extract(raw, "AAPL", 0); ok {
				t.Errorf("Expected item without title to be dropped")
			}
		})
	}

	if _, ok := Extract(nil, "AAPL", 0); ok {
		t.Error("Expected nil item to be dropped")
	}
}

func TestExtract_ContentHeadlineFallback(t *testing.T) {
	raw := RawItem{"content": map[string]any{"headline": "Headline only"}}

	c, ok := Extract(raw, "AAPL", 0)
	if !ok {
		t.Fatal("Expected content.headline to provide the title")
	}
	if c.Title != "Headline only" {
		t.Errorf("Expected title 'Headline only', got '%s'", c.Title)
	}
}

func TestExtract_PublisherFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawItem
		expected string
	}{
		{
			name: "content publisher beats item publisher",
			raw: RawItem{
				"title":     "t",
				"publisher": "Item Pub",
				"content":   map[string]any{"publisher": "Content Pub"},
			},
			expected: "Content Pub",
		},
		{
			name:     "publisherName",
			raw:      RawItem{"title": "t", "publisherName": "Bloomberg"},
			expected: "Bloomberg",
		},
		{
			name: "nested provider display name",
			raw: RawItem{
				"title":   "t",
				"content": map[string]any{"provider": map[string]any{"displayName": "Yahoo Finance"}},
			},
			expected: "Yahoo Finance",
		},
		{
			name:     "unknown becomes default",
			raw:      RawItem{"title": "t", "publisher": "UNKNOWN"},
			expected: "Market News",
		},
		{
			name:     "missing becomes default",
			raw:      RawItem{"title": "t"},
			expected: "Market News",
		},
		{
			name:     "non-string skipped",
			raw:      RawItem{"title": "t", "publisher": float64(1), "publisherName": "CNBC"},
			expected: "CNBC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Extract(tt.raw, "AAPL", 0)
			if !ok {
				t.Fatal("Expected item to be extracted")
			}
			if c.Source != tt.expected {
				t.Errorf("Expected source '%s', got '%s'", tt.expected, c.Source)
			}
		})
	}
}

func TestExtract_SummaryFallbacks(t *testing.T) {
	raw := RawItem{
		"title":       "Title",
		"description": "Item description",
		"content":     map[string]any{"text": "Content text"},
	}

	c, _ := Extract(raw, "AAPL", 0)
	if c.Summary != "Content text" {
		t.Errorf("Expected content.text to win over item.description, got '%s'", c.Summary)
	}
}

func TestExtract_IDFallbacks(t *testing.T) {
	c, _ := Extract(RawItem{"title": "t", "id": float64(987654321)}, "AAPL", 0)
	if c.ID != "987654321" {
		t.Errorf("Expected numeric id rendered without exponent, got '%s'", c.ID)
	}

	c, _ = Extract(RawItem{"title": "t", "link": "https://example.com/a"}, "AAPL", 0)
	if c.ID != "https://example.com/a" {
		t.Errorf("Expected link to serve as id, got '%s'", c.ID)
	}

	first, _ := Extract(RawItem{"title": "Same title"}, "AAPL", 0)
	second, _ := Extract(RawItem{"title": "Same title"}, "AAPL", 1)
	again, _ := Extract(RawItem{"title": "Same title"}, "AAPL", 0)

	if !strings.HasPrefix(first.ID, "AAPL-0-") {
		t.Errorf("Expected synthetic id prefix 'AAPL-0-', got '%s'", first.ID)
	}
	if first.ID == second.ID {
		t.Errorf("Expected synthetic ids to differ by index, both were '%s'", first.ID)
	}
	if first.ID != again.ID {
		t.Errorf("Expected synthetic id to be stable, got '%s' and '%s'", first.ID, again.ID)
	}
}

func TestExtract_RelatedSymbolsAlwaysContainRequester(t *testing.T) {
	raw := RawItem{
		"title":          "t",
		"relatedTickers": "AAPL,MSFT", // not a sequence, ignored
	}

	c, _ := Extract(raw, "NVDA", 0)
	symbols := c.Symbols()
	if !reflect.DeepEqual(symbols, []string{"NVDA"}) {
		t.Errorf("Expected only the requesting symbol, got %v", symbols)
	}

	raw = RawItem{
		"title":          "t",
		"relatedTickers": []string{"MSFT"},
		"content":        map[string]any{"relatedTickers": []any{"GOOG", float64(7)}},
	}
	c, _ = Extract(raw, "NVDA", 0)
	symbols = c.Symbols()
	expected := []string{"7", "GOOG", "MSFT", "NVDA"}
	if !reflect.DeepEqual(symbols, expected) {
		t.Errorf("Expected %v, got %v", expected, symbols)
	}
}

func TestExtract_LinkSanitization(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawItem
		expected string
	}{
		{"relative link", RawItem{"title": "t", "link": "/news/abc"}, ""},
		{"mailto", RawItem{"title": "t", "link": "mailto:x@example.com"}, ""},
		{"nested non-http", RawItem{"title": "t", "link": map[string]any{"url": "ftp://x"}}, ""},
		{"click through", RawItem{"title": "t", "content": map[string]any{"clickThroughUrl": map[string]any{"url": "https://x.example.com"}}}, "https://x.example.com"},
		{"missing", RawItem{"title": "t"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := Extract(tt.raw, "AAPL", 0)
			if c.Link != tt.expected {
				t.Errorf("Expected link '%s', got '%s'", tt.expected, c.Link)
			}
		})
	}
}

func TestSafeExtract_InvalidInputDoesNotPanic(t *testing.T) {
	raw := RawItem{
		"title":               "t",
		"content":             map[string]any{"relatedTickers": []any{map[string]any{"x": 1}}},
		"providerPublishTime": []any{1, 2},
	}

	c, ok := SafeExtract(raw, "AAPL", 0)
	if !ok {
		t.Fatal("Expected item to survive odd field types")
	}
	if c.Date != 0 {
		t.Errorf("Expected date 0 for non-scalar timestamp, got %d", c.Date)
	}
}

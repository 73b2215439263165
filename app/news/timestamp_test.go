package news

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCoerceTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int64
	}{
		{"iso with Z", "2024-01-15T10:00:00Z", 1705312800},
		{"iso with offset", "2024-01-15T19:00:00+09:00", 1705312800},
		{"iso with fraction", "2024-01-15T10:00:00.123Z", 1705312800},
		{"iso without zone", "2024-01-15T10:00:00", 1705312800},
		{"space separator with offset", "2024-01-15 10:00:00+00:00", 1705312800},
		{"space separator with Z", "2024-01-15 19:00:00.5+09:00", 1705312800},
		{"minutes precision", "2024-01-15T10:00", 1705312800},
		{"minutes precision with Z", "2024-01-15T10:00Z", 1705312800},
		{"space separator minutes", "2024-01-15 10:00", 1705312800},
		{"date only", "2024-01-15", 1705276800},
		{"float epoch", float64(1705312800.9), 1705312800},
		{"int epoch", 1705312800, 1705312800},
		{"int64 epoch", int64(1705312800), 1705312800},
		{"json number", json.Number("1705312800"), 1705312800},
		{"garbage string", "yesterday", 0},
		{"rfc1123 is not iso", "Mon, 15 Jan 2024 10:00:00 GMT", 0},
		{"negative", float64(-5), 0},
		{"nan", math.NaN(), 0},
		{"bool", true, 0},
		{"nil", nil, 0},
		{"map", map[string]any{"t": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceTimestamp(tt.input); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestRecordTimestamp_SearchOrder(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawItem
		expected int64
	}{
		{
			name:     "no timestamp",
			raw:      RawItem{"title": "t"},
			expected: 0,
		},
		{
			name: "content before item for same field",
			raw: RawItem{
				"providerPublishTime": float64(200),
				"content":             map[string]any{"providerPublishTime": float64(100)},
			},
			expected: 100,
		},
		{
			name: "item providerPublishTime before content pubDate",
			raw: RawItem{
				"providerPublishTime": float64(200),
				"content":             map[string]any{"pubDate": "2024-01-15T10:00:00Z"},
			},
			expected: 200,
		},
		{
			name: "zero values are skipped",
			raw: RawItem{
				"providerPublishTime": float64(0),
				"pubDate":             "",
				"publishedAt":         "2024-01-15T10:00:00Z",
			},
			expected: 1705312800,
		},
		{
			name:     "pubDateUTC last resort",
			raw:      RawItem{"pubDateUTC": float64(1705312800)},
			expected: 1705312800,
		},
		{
			name: "first hit wins even when unparseable",
			raw: RawItem{
				"providerPublishTime": "not a date",
				"pubDate":             float64(1705312800),
			},
			expected: 0,
		},
		{
			name: "unsupported type is a hit and yields zero",
			raw: RawItem{
				"providerPublishTime": true,
				"pubDate":             "2024-01-15T10:00:00Z",
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newRecord(tt.raw).timestamp(); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

package news

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Extract normalizes one raw item fetched for symbol. index is the item's
// position in that symbol's list and only feeds the synthetic id. The second
// return value is false when the item has no usable title.
func Extract(raw RawItem, symbol string, index int) (Candidate, bool) {
	if raw == nil {
		return Candidate{}, false
	}

	r := newRecord(raw)

	title := r.firstString(titleRules)
	if title == "" {
		return Candidate{}, false
	}

	c := Candidate{
		ID:      r.id(symbol, index, title),
		Title:   title,
		Source:  r.publisher(),
		Date:    r.timestamp(),
		Summary: r.firstString(summaryRules),
		Link:    r.link(),
	}
	if c.Summary == "" {
		c.Summary = title
	}

	c.AddSymbols(symbol)
	c.AddSymbols(r.relatedTickers()...)

	return c, true
}

// SafeExtract is Extract with a recover guard, so one malformed item can never
// abort a batch.
func SafeExtract(raw RawItem, symbol string, index int) (c Candidate, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Debug("Skipping news item after extraction panic", "symbol", symbol, "index", index, "panic", rec)
			c, ok = Candidate{}, false
		}
	}()
	return Extract(raw, symbol, index)
}

func (r record) publisher() string {
	publisher, _ := firstOf(r, publisherRules, func(v any) (string, bool) {
		// Yahoo nests the provider as {"displayName": ..., "url": ...}.
		if m, ok := v.(map[string]any); ok {
			v = m["displayName"]
		}
		return nonEmptyString(v)
	})
	if publisher == "" || strings.EqualFold(publisher, "unknown") {
		return DefaultPublisher
	}
	return publisher
}

func (r record) id(symbol string, index int, title string) string {
	if id, ok := firstOf(r, idRules, idString); ok {
		return id
	}
	sum := sha256.Sum256([]byte(title))
	return fmt.Sprintf("%s-%d-%s", symbol, index, hex.EncodeToString(sum[:])[:12])
}

func idString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case json.Number:
		return id.String(), true
	}
	return "", false
}

func (r record) relatedTickers() []string {
	var tickers []string
	for _, rule := range relatedRules {
		v, ok := r.lookup(rule)
		if !ok {
			continue
		}
		for _, entry := range sequence(v) {
			if s := tickerString(entry); s != "" {
				tickers = append(tickers, s)
			}
		}
	}
	return tickers
}

func sequence(v any) []any {
	switch seq := v.(type) {
	case []any:
		return seq
	case []string:
		out := make([]any, len(seq))
		for i, s := range seq {
			out[i] = s
		}
		return out
	}
	return nil
}

func tickerString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

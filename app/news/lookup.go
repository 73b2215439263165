package news

import (
	"strings"
)

type Scope int

const (
	InContent Scope = iota
	InItem
)

// Rule names one place a field may live in a raw item.
type Rule struct {
	Scope Scope
	Key   string
}

var (
	titleRules = []Rule{
		{InContent, "title"},
		{InItem, "title"},
		{InContent, "headline"},
	}
	publisherRules = []Rule{
		{InContent, "publisher"},
		{InContent, "publisherName"},
		{InContent, "provider"},
		{InItem, "publisher"},
		{InItem, "publisherName"},
	}
	summaryRules = []Rule{
		{InContent, "summary"},
		{InContent, "description"},
		{InContent, "text"},
		{InItem, "summary"},
		{InItem, "description"},
	}
	idRules = []Rule{
		{InContent, "id"},
		{InItem, "uuid"},
		{InItem, "id"},
		{InItem, "link"},
	}
	linkRules = []Rule{
		{InContent, "link"},
		{InContent, "url"},
		{InContent, "canonicalUrl"},
		{InContent, "clickThroughUrl"},
		{InContent, "clickThroughURL"},
		{InItem, "link"},
		{InItem, "url"},
		{InItem, "canonicalUrl"},
		{InItem, "clickThroughUrl"},
		{InItem, "clickThroughURL"},
	}
	relatedRules = []Rule{
		{InContent, "relatedTickers"},
		{InItem, "relatedTickers"},
	}
	// Field-major: content.providerPublishTime, item.providerPublishTime, content.pubDate, ...
	timestampRules = []Rule{
		{InContent, "providerPublishTime"},
		{InItem, "providerPublishTime"},
		{InContent, "pubDate"},
		{InItem, "pubDate"},
		{InContent, "publishedAt"},
		{InItem, "publishedAt"},
		{InContent, "pubDateUTC"},
		{InItem, "pubDateUTC"},
	}
)

// record gives rule-based access to a raw item and its optional content map.
type record struct {
	content map[string]any
	item    map[string]any
}

func newRecord(raw RawItem) record {
	content, _ := raw["content"].(map[string]any)
	return record{content: content, item: raw}
}

func (r record) lookup(rule Rule) (any, bool) {
	m := r.item
	if rule.Scope == InContent {
		m = r.content
	}
	if m == nil {
		return nil, false
	}
	v, ok := m[rule.Key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// firstOf returns the first value, in rule order, that accept converts into a
// usable result.
func firstOf[T any](r record, rules []Rule, accept func(any) (T, bool)) (T, bool) {
	for _, rule := range rules {
		v, ok := r.lookup(rule)
		if !ok {
			continue
		}
		if out, ok := accept(v); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

func (r record) firstString(rules []Rule) string {
	s, _ := firstOf(r, rules, nonEmptyString)
	return s
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

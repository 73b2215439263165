package news

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Aggregator merges candidates seen across several symbol fetches. The first
// candidate for a key keeps its scalar fields; later duplicates only
// contribute related symbols.
type Aggregator struct {
	lower   cases.Caser
	entries map[string]*Candidate
	order   []*Candidate
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		lower:   cases.Lower(language.Und),
		entries: make(map[string]*Candidate),
	}
}

// Key is lower(title) + "|" + lower(source).
func (a *Aggregator) Key(c Candidate) string {
	return a.lower.String(c.Title) + "|" + a.lower.String(c.Source)
}

// Add inserts c or merges it into an existing entry. It reports whether c
// started a new entry.
func (a *Aggregator) Add(c Candidate) bool {
	key := a.Key(c)
	if existing, ok := a.entries[key]; ok {
		for s := range c.RelatedSymbols {
			existing.AddSymbols(s)
		}
		return false
	}

	entry := c
	entry.RelatedSymbols = make(map[string]struct{}, len(c.RelatedSymbols))
	for s := range c.RelatedSymbols {
		entry.RelatedSymbols[s] = struct{}{}
	}
	a.entries[key] = &entry
	a.order = append(a.order, &entry)
	return true
}

func (a *Aggregator) Len() int {
	return len(a.order)
}

// Finalize returns the merged items newest first, at most limit of them.
// Items with equal dates keep first-seen order.
func (a *Aggregator) Finalize(limit int) []Item {
	sorted := slices.Clone(a.order)
	slices.SortStableFunc(sorted, func(x, y *Candidate) int {
		return cmp.Compare(y.Date, x.Date)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]Item, 0, len(sorted))
	for _, c := range sorted {
		items = append(items, c.Finalize())
	}
	return items
}

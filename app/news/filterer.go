package news

import (
	"fmt"
	"strings"
)

// FilterRule excludes items whose field contains any of Excludes, or none of
// Includes. Matching is case-insensitive substring search.
type FilterRule struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

var FilterFields = map[string]bool{
	"title":           true,
	"summary":         true,
	"source":          true,
	"link":            true,
	"related_symbols": true,
}

type Filterer struct {
	rules []FilterRule
}

func NewFilterer(rules []FilterRule) *Filterer {
	return &Filterer{rules: rules}
}

// Apply marks c as filtered when one of the rules rejects it.
func (f *Filterer) Apply(c *Candidate) {
	if f == nil || len(f.rules) == 0 {
		return
	}
	c.IsFiltered, c.FilterReason = f.applyFilters(c)
}

func (f *Filterer) applyFilters(c *Candidate) (bool, string) {
	for _, filter := range f.rules {
		value := f.getFieldValue(c, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(c *Candidate, field string) string {
	switch field {
	case "title":
		return c.Title
	case "summary":
		return c.Summary
	case "source":
		return c.Source
	case "link":
		return c.Link
	case "related_symbols":
		return strings.Join(c.Symbols(), " ")
	default:
		return ""
	}
}

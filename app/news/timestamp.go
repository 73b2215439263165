package news

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CoerceTimestamp converts an epoch number or ISO-8601 string into epoch
// seconds. Anything else, or an unparseable string, yields 0.
func CoerceTimestamp(v any) int64 {
	switch t := v.(type) {
	case float64:
		return truncate(t)
	case float32:
		return truncate(float64(t))
	case int:
		return clamp(int64(t))
	case int32:
		return clamp(int64(t))
	case int64:
		return clamp(t)
	case uint32:
		return int64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return clamp(i)
		}
		if f, err := t.Float64(); err == nil {
			return truncate(f)
		}
		return 0
	case string:
		return parseISO(t)
	}
	return 0
}

func parseISO(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return clamp(parsed.Unix())
		}
	}
	return 0
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return clamp(int64(f))
}

func clamp(i int64) int64 {
	if i < 0 {
		return 0
	}
	return i
}

func isZeroTimestamp(v any) bool {
	switch t := v.(type) {
	case float64:
		return t == 0
	case float32:
		return t == 0
	case int:
		return t == 0
	case int32:
		return t == 0
	case int64:
		return t == 0
	case uint32:
		return t == 0
	case json.Number:
		return t.String() == "0"
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func (r record) timestamp() int64 {
	v, ok := firstOf(r, timestampRules, func(v any) (any, bool) {
		return v, !isZeroTimestamp(v)
	})
	if !ok {
		return 0
	}
	return CoerceTimestamp(v)
}

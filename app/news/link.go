package news

import "strings"

var linkKeys = []string{"url", "webUrl", "canonicalUrl", "clickThroughUrl", "clickThroughURL", "href"}

// ResolveLink turns a link field into a single URL string. Plain strings are
// returned as-is; nested objects are searched by linkKeys.
func ResolveLink(v any) string {
	switch link := v.(type) {
	case string:
		return link
	case map[string]any:
		for _, key := range linkKeys {
			if s, ok := link[key].(string); ok {
				return s
			}
		}
	}
	return ""
}

// SanitizeLink drops anything that is not an http(s) URL.
func SanitizeLink(link string) string {
	if !strings.HasPrefix(link, "http") {
		return ""
	}
	return link
}

func (r record) link() string {
	link, _ := firstOf(r, linkRules, func(v any) (string, bool) {
		s := ResolveLink(v)
		return s, s != ""
	})
	return SanitizeLink(link)
}

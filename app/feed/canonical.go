package feed

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

const maxTitleKeyLength = 200

var trackingParams = map[string]bool{
	"gclid":   true,
	"dclid":   true,
	"fbclid":  true,
	"msclkid": true,
	"yclid":   true,
	"igshid":  true,
	"mc_cid":  true,
	"mc_eid":  true,
	"_ga":     true,
	"_gl":     true,
	"ref_src": true,
}

func isTrackingParam(name string) bool {
	name = strings.ToLower(name)
	return strings.HasPrefix(name, "utm_") || trackingParams[name]
}

// stripTracking drops tracking parameters while keeping the order and encoding
// of everything else.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, _, _ := strings.Cut(part, "=")
		if decoded, err := url.QueryUnescape(name); err == nil {
			name = decoded
		}
		if isTrackingParam(name) {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "&")
}

// CanonicalURL resolves raw against base and removes tracking parameters and
// the fragment. It reports false when the result is not an absolute http(s) URL.
func CanonicalURL(raw string, base *url.URL) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if !u.IsAbs() && base != nil {
		u = base.ResolveReference(u)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false
	u.RawQuery = stripTracking(u.RawQuery)
	return u.String(), true
}

// CanonicalKey is the identity used for deduplication. Scheme and host are
// lowercased, the path keeps its case. Items whose URL does not parse fall
// back to a key derived from the title.
func CanonicalKey(item Item) string {
	u, err := url.Parse(strings.TrimSpace(item.URL))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return titleKey(item.Title)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false
	u.RawQuery = stripTracking(u.RawQuery)
	return u.String()
}

func titleKey(title string) string {
	folded := cases.Fold().String(collapseSpace(title))
	runes := []rune(folded)
	if len(runes) > maxTitleKeyLength {
		runes = runes[:maxTitleKeyLength]
	}
	return "title:" + string(runes)
}

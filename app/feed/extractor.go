package feed

import (
	"net/url"
	"regexp"
	"strings"
)

const DefaultMaxItems = 12

// Extractor turns one fetched payload into normalized items. Records without
// a title or a link are skipped; an error means the payload as a whole could
// not be read.
type Extractor interface {
	Extract(src Source, body []byte) ([]Item, error)
}

var (
	rssExtractor   Extractor = &RSSExtractor{}
	atomExtractor  Extractor = &AtomExtractor{}
	postsExtractor Extractor = &PostsExtractor{}
	strictParser   Extractor = &StrictExtractor{}
)

// ExtractorFor picks the extractor matching the source format. Sources marked
// with the strict parser use gofeed for rss and atom payloads.
func ExtractorFor(src Source) Extractor {
	switch src.Format {
	case FormatJSONPosts:
		return postsExtractor
	case FormatAtom:
		if src.Parser == ParserStrict {
			return strictParser
		}
		return atomExtractor
	default:
		if src.Parser == ParserStrict {
			return strictParser
		}
		return rssExtractor
	}
}

func maxItems(src Source) int {
	if src.Settings.MaxItems > 0 {
		return src.Settings.MaxItems
	}
	return DefaultMaxItems
}

// newItem applies the shared normalization rules. It reports false when the
// record has no usable title or link.
func newItem(src Source, base *url.URL, rawTitle, rawLink, rawDate, rawSummary string) (Item, bool) {
	title := cleanTitle(rawTitle)
	link := strings.TrimSpace(decodeText(rawLink))
	if title == "" || link == "" {
		return Item{}, false
	}

	if canonical, ok := CanonicalURL(link, base); ok {
		link = canonical
	}

	return Item{
		Title:       title,
		URL:         link,
		Source:      src.Label,
		Category:    src.Category,
		PublishedAt: parseDate(rawDate),
		Summary:     summarize(rawSummary),
	}, true
}

// Regex helpers shared by the lenient XML extractors.

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func firstNonEmpty(s string, res ...*regexp.Regexp) string {
	for _, re := range res {
		if v := strings.TrimSpace(firstMatch(re, s)); v != "" {
			return v
		}
	}
	return ""
}

// tagRe matches the text content of an element. Self-closing tags never match.
func tagRe(name string) *regexp.Regexp {
	q := regexp.QuoteMeta(name)
	return regexp.MustCompile(`(?is)<` + q + `(?:\s[^>]*[^/>]|\s)?>(.*?)</` + q + `\s*>`)
}

func blockRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(name) + `\b[^>]*>.*?</` + regexp.QuoteMeta(name) + `\s*>`)
}

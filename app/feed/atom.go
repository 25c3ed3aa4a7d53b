package feed

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	atomEntryRe     = blockRe("entry")
	atomTitleRe     = tagRe("title")
	atomLinkTagRe   = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	atomAttrRe      = regexp.MustCompile(`(?is)([\w:-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	atomUpdatedRe   = tagRe("updated")
	atomPublishedRe = tagRe("published")
	atomSummaryRe   = tagRe("summary")
	atomContentRe   = tagRe("content")
)

// AtomExtractor reads Atom entries with the same tolerance as RSSExtractor.
type AtomExtractor struct{}

func (e *AtomExtractor) Extract(src Source, body []byte) ([]Item, error) {
	base, _ := url.Parse(src.Endpoint())
	limit := maxItems(src)

	blocks := atomEntryRe.FindAllString(string(body), -1)
	items := make([]Item, 0, min(len(blocks), limit))
	for _, block := range blocks {
		if len(items) >= limit {
			break
		}

		item, ok := newItem(src, base,
			firstMatch(atomTitleRe, block),
			atomLink(block),
			firstNonEmpty(block, atomUpdatedRe, atomPublishedRe),
			firstNonEmpty(block, atomSummaryRe, atomContentRe),
		)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// atomLink returns the href of the rel="alternate" link, or of a link without
// rel, falling back to the first link carrying an href.
func atomLink(block string) string {
	var fallback string
	for _, tag := range atomLinkTagRe.FindAllString(block, -1) {
		attrs := parseAttrs(tag)
		href := strings.TrimSpace(attrs["href"])
		if href == "" {
			continue
		}

		rel := strings.ToLower(strings.TrimSpace(attrs["rel"]))
		if rel == "" || rel == "alternate" {
			return href
		}
		if fallback == "" {
			fallback = href
		}
	}
	return fallback
}

func parseAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range atomAttrRe.FindAllStringSubmatch(tag, -1) {
		name := strings.ToLower(m[1])
		if _, seen := attrs[name]; seen {
			continue
		}
		attrs[name] = m[2] + m[3]
	}
	return attrs
}

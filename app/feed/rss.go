package feed

import (
	"net/url"
	"regexp"
)

var (
	rssItemRe        = blockRe("item")
	rssTitleRe       = tagRe("title")
	rssLinkRe        = tagRe("link")
	rssLinkHrefRe    = regexp.MustCompile(`(?is)<link\b[^>]*\shref\s*=\s*["']([^"']+)["']`)
	rssGUIDLinkRe    = regexp.MustCompile(`(?is)<guid\b[^>]*isPermaLink\s*=\s*["']true["'][^>]*>(.*?)</guid\s*>`)
	rssPubDateRe     = tagRe("pubDate")
	rssDCDateRe      = tagRe("dc:date")
	rssDescriptionRe = tagRe("description")
	rssContentRe     = tagRe("content:encoded")
)

// RSSExtractor is a tolerant RSS 2.0 reader built on regular expressions.
// It does not validate the document, so feeds with broken markup still yield
// whatever items can be recognized.
type RSSExtractor struct{}

func (e *RSSExtractor) Extract(src Source, body []byte) ([]Item, error) {
	base, _ := url.Parse(src.Endpoint())
	limit := maxItems(src)

	blocks := rssItemRe.FindAllString(string(body), -1)
	items := make([]Item, 0, min(len(blocks), limit))
	for _, block := range blocks {
		if len(items) >= limit {
			break
		}

		link := firstNonEmpty(block, rssLinkRe, rssLinkHrefRe, rssGUIDLinkRe)
		item, ok := newItem(src, base,
			firstMatch(rssTitleRe, block),
			link,
			firstNonEmpty(block, rssPubDateRe, rssDCDateRe),
			firstNonEmpty(block, rssDescriptionRe, rssContentRe),
		)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

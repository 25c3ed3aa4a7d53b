package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
)

// StrictExtractor parses rss and atom payloads with gofeed. It rejects
// documents gofeed cannot read, where the lenient extractors would still
// salvage items.
type StrictExtractor struct{}

func (e *StrictExtractor) Extract(src Source, body []byte) ([]Item, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	base, _ := url.Parse(cmp.Or(parsed.Link, src.Endpoint()))
	limit := maxItems(src)

	items := make([]Item, 0, min(len(parsed.Items), limit))
	for _, entry := range parsed.Items {
		if len(items) >= limit {
			break
		}
		if entry == nil {
			continue
		}

		item, ok := newItem(src, base,
			entry.Title,
			entryLink(entry),
			"",
			cmp.Or(entry.Description, entry.Content),
		)
		if !ok {
			continue
		}
		item.PublishedAt = entryDate(entry)
		items = append(items, item)
	}

	return items, nil
}

func entryLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	for _, link := range entry.Links {
		if link != "" {
			return link
		}
	}
	return ""
}

func entryDate(entry *gofeed.Item) *time.Time {
	switch {
	case entry.PublishedParsed != nil:
		return utcPtr(*entry.PublishedParsed)
	case entry.UpdatedParsed != nil:
		return utcPtr(*entry.UpdatedParsed)
	}
	return nil
}

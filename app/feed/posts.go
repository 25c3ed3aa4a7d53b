package feed

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// post is one record of a community "hot posts" listing.
type post struct {
	Title               string  `json:"title"`
	URL                 string  `json:"url"`
	URLOverriddenByDest string  `json:"url_overridden_by_dest"`
	Permalink           string  `json:"permalink"`
	CreatedUTC          float64 `json:"created_utc"`
	Selftext            string  `json:"selftext"`
	IsSelf              bool    `json:"is_self"`
	Stickied            bool    `json:"stickied"`
	Pinned              bool    `json:"pinned"`
}

type postListing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// PostsExtractor reads Reddit style listings ({"data":{"children":[{"data":{...}}]}})
// as well as a bare array of post records.
type PostsExtractor struct{}

func (e *PostsExtractor) Extract(src Source, body []byte) ([]Item, error) {
	posts, err := decodePosts(body)
	if err != nil {
		return nil, err
	}

	base := siteRoot(src.Endpoint())
	limit := maxItems(src)

	items := make([]Item, 0, min(len(posts), limit))
	for _, p := range posts {
		if len(items) >= limit {
			break
		}
		if p.Stickied || p.Pinned || strings.TrimSpace(p.Title) == "" {
			continue
		}

		link, ok := postLink(p, base)
		if !ok {
			continue
		}

		item := Item{
			Title:       cleanTitle(p.Title),
			URL:         link,
			Source:      src.Label,
			Category:    src.Category,
			PublishedAt: epochSeconds(p.CreatedUTC),
			Summary:     summarize(p.Selftext),
		}
		if item.Title == "" {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func decodePosts(body []byte) ([]post, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var posts []post
		if err := json.Unmarshal(trimmed, &posts); err != nil {
			return nil, fmt.Errorf("failed to decode posts: %w", err)
		}
		return posts, nil
	}

	var listing postListing
	if err := json.Unmarshal(trimmed, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	posts := make([]post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// postLink prefers the external destination of link posts. Self posts and
// posts without a destination link to their permalink on the source site.
func postLink(p post, base *url.URL) (string, bool) {
	external := strings.TrimSpace(cmp.Or(p.URLOverriddenByDest, p.URL))
	if !p.IsSelf && external != "" {
		if link, ok := CanonicalURL(decodeText(external), nil); ok {
			return link, true
		}
	}

	if permalink := strings.TrimSpace(p.Permalink); permalink != "" {
		return CanonicalURL(permalink, base)
	}

	if external != "" {
		return CanonicalURL(decodeText(external), base)
	}
	return "", false
}

func siteRoot(endpoint string) *url.URL {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}

func epochSeconds(v float64) *time.Time {
	if v <= 0 {
		return nil
	}
	t := time.UnixMilli(int64(v * 1000)).UTC()
	return &t
}

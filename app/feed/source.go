package feed

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	acceptXML  = "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8"
	acceptJSON = "application/json, text/json;q=0.9, */*;q=0.8"
	AcceptHTML = "text/html, application/xhtml+xml;q=0.9, */*;q=0.8"
)

var placeholderRe = regexp.MustCompile(`\{[A-Za-z0-9_]+\}`)

// Endpoint fills the {param} placeholders of the URL template. Values are
// path-escaped before the query string and query-escaped after it.
func (s Source) Endpoint() string {
	if len(s.Params) == 0 {
		return s.URL
	}

	path, query, hasQuery := strings.Cut(s.URL, "?")
	for name, value := range s.Params {
		placeholder := "{" + name + "}"
		path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
		query = strings.ReplaceAll(query, placeholder, url.QueryEscape(value))
	}

	if !hasQuery {
		return path
	}
	return path + "?" + query
}

// Accept is the Accept header sent when fetching the source.
func (s Source) Accept() string {
	if s.Format == FormatJSONPosts {
		return acceptJSON
	}
	return acceptXML
}

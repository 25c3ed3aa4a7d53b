package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"

	"codeberg.org/readeck/go-readability"
)

type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run pulls the readable part of an HTML page and reduces it to a title and a
// short summary.
func (e *ContentExtractor) Run(data []byte, pageURL *url.URL) (*Article, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return nil, fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(article.Content))

	return &Article{
		Title:   cleanTitle(article.Title),
		Summary: summarize(article.Content),
	}, nil
}

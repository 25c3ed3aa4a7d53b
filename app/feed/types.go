package feed

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoSources = errors.New("no sources configured")

type Format string

const (
	FormatRSS       Format = "rss"
	FormatAtom      Format = "atom"
	FormatJSONPosts Format = "json-posts"
)

const (
	ParserLenient = "lenient"
	ParserStrict  = "strict"
)

// Item is one normalized headline. Title and URL are never empty.
type Item struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Category    string     `json:"category"`
	PublishedAt *time.Time `json:"publishedAt"`
	Summary     string     `json:"summary"`
}

type Result struct {
	Items       []Item
	Count       int
	GeneratedAt time.Time
}

// Configuration types

type Source struct {
	Name      string            // Derived from filename (without .yml extension)
	Label     string            `yaml:"label"`
	Category  string            `yaml:"category"`
	Format    Format            `yaml:"format"`
	URL       string            `yaml:"url"` // may contain {param} placeholders
	Params    map[string]string `yaml:"params"`
	Community bool              `yaml:"community"`
	Parser    string            `yaml:"parser"`
	Settings  SourceSettings    `yaml:"settings"`
	Filters   []SourceFilter    `yaml:"filters"`
}

type SourceSettings struct {
	Enabled  bool `yaml:"enabled"`
	MaxItems int  `yaml:"max_items"`
	Timeout  int  `yaml:"timeout"` // seconds
}

type SourceFilter struct {
	Field    string   `yaml:"field"` // title, summary or url
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Fetch results

type FetchErrorKind string

const (
	FetchTimeout    FetchErrorKind = "timeout"
	FetchHTTPStatus FetchErrorKind = "http-status"
	FetchTransport  FetchErrorKind = "transport"
)

type FetchError struct {
	Kind   FetchErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("unexpected HTTP status %d", e.Status)
	case FetchTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	default:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchResult holds either Body or Err for one attempt against Source.
type FetchResult struct {
	Source Source
	Body   []byte
	Err    *FetchError
}

func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Outcome is the metrics label for the attempt.
func (r FetchResult) Outcome() string {
	if r.Err == nil {
		return "ok"
	}
	return string(r.Err.Kind)
}

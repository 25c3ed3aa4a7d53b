package feed

import (
	"strings"
	"testing"
	"time"
)

func testSource(format Format) Source {
	return Source{
		Name:     "test",
		Label:    "Test Source",
		Category: "Tech",
		Format:   format,
		URL:      "https://example.com/feed",
		Settings: SourceSettings{Enabled: true, MaxItems: DefaultMaxItems},
	}
}

func TestRSSExtractorSingleItem(t *testing.T) {
	body := `<item><title>A &amp; B</title><link>http://x/a</link><pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate></item>`

	items, err := (&RSSExtractor{}).Extract(testSource(FormatRSS), []byte(body))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Title != "A & B" {
		t.Errorf("Expected title 'A & B', got %q", item.Title)
	}
	if item.URL != "http://x/a" {
		t.Errorf("Expected url 'http://x/a', got %q", item.URL)
	}
	if item.PublishedAt == nil {
		t.Fatal("Expected publishedAt to be set")
	}
	if got := item.PublishedAt.Format(time.RFC3339); got != "2024-01-01T00:00:00Z" {
		t.Errorf("Expected publishedAt 2024-01-01T00:00:00Z, got %s", got)
	}
	if item.Source != "Test Source" || item.Category != "Tech" {
		t.Errorf("Expected source metadata to be copied, got %q/%q", item.Source, item.Category)
	}
	if item.Summary != SummaryUnavailable {
		t.Errorf("Expected sentinel summary, got %q", item.Summary)
	}
}

func TestRSSExtractorFeed(t *testing.T) {
	body := `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Channel title is ignored</title>
    <link>https://example.com</link>
    <atom:link href="https://example.com/feed" rel="self"/>
    <item>
      <title><![CDATA[Markets <rally> again]]></title>
      <link>https://example.com/markets?utm_source=rss&amp;id=7#comments</link>
      <description><![CDATA[<p>Stocks rose on <b>Tuesday</b>.</p>]]></description>
      <dc:date>2024-02-01T12:00:00Z</dc:date>
    </item>
    <item>
      <title>Self closing link</title>
      <link href="https://example.com/self-closing"/>
      <pubDate>not a date</pubDate>
    </item>
    <item>
      <title>   </title>
      <link>https://example.com/untitled</link>
    </item>
    <item>
      <title>No link</title>
    </item>
    <item>
      <title>Relative</title>
      <link>/relative/path</link>
    </item>
  </channel>
</rss>`

	items, err := (&RSSExtractor{}).Extract(testSource(FormatRSS), []byte(body))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d: %+v", len(items), items)
	}

	if items[0].Title != "Markets <rally> again" {
		t.Errorf("Expected CDATA title, got %q", items[0].Title)
	}
	if items[0].URL != "https://example.com/markets?id=7" {
		t.Errorf("Expected canonical url, got %q", items[0].URL)
	}
	if items[0].Summary != "Stocks rose on Tuesday." {
		t.Errorf("Expected stripped summary, got %q", items[0].Summary)
	}
	if items[0].PublishedAt == nil || items[0].PublishedAt.Format(time.RFC3339) != "2024-02-01T12:00:00Z" {
		t.Errorf("Expected dc:date fallback, got %v", items[0].PublishedAt)
	}

	if items[1].URL != "https://example.com/self-closing" {
		t.Errorf("Expected href fallback, got %q", items[1].URL)
	}
	if items[1].PublishedAt != nil {
		t.Errorf("Expected nil date for unparseable pubDate, got %v", items[1].PublishedAt)
	}

	if items[2].URL != "https://example.com/relative/path" {
		t.Errorf("Expected relative link resolved against source, got %q", items[2].URL)
	}
}

func TestRSSExtractorCapsItems(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("<item><title>Story</title><link>https://example.com/")
		b.WriteString(strings.Repeat("s", i+1))
		b.WriteString("</link></item>")
	}

	src := testSource(FormatRSS)
	src.Settings.MaxItems = 5

	items, err := (&RSSExtractor{}).Extract(src, []byte(b.String()))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 5 {
		t.Errorf("Expected 5 items, got %d", len(items))
	}
}

func TestRSSExtractorMalformed(t *testing.T) {
	body := `<rss><channel><item><title>Good</title><link>https://example.com/good</link></item><item><title>Broken`

	items, err := (&RSSExtractor{}).Extract(testSource(FormatRSS), []byte(body))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Good" {
		t.Errorf("Expected the intact item only, got %+v", items)
	}
}

func TestExtractorFor(t *testing.T) {
	tests := []struct {
		format Format
		parser string
		want   Extractor
	}{
		{FormatRSS, ParserLenient, rssExtractor},
		{FormatAtom, ParserLenient, atomExtractor},
		{FormatJSONPosts, ParserLenient, postsExtractor},
		{FormatRSS, ParserStrict, strictParser},
		{FormatAtom, ParserStrict, strictParser},
	}

	for _, tt := range tests {
		src := testSource(tt.format)
		src.Parser = tt.parser
		if got := ExtractorFor(src); got != tt.want {
			t.Errorf("ExtractorFor(%s, %s) = %T, want %T", tt.format, tt.parser, got, tt.want)
		}
	}
}

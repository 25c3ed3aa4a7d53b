package feed

import (
	"strings"
	"testing"
	"time"
)

func TestGeneratorRendersChannel(t *testing.T) {
	published := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	items := []Item{
		{
			Title:       "Rates & markets",
			URL:         "https://example.com/rates",
			Source:      "Google News: Business",
			Category:    "Business",
			PublishedAt: &published,
			Summary:     "Markets <moved>.",
		},
		{
			Title:   "Undated",
			URL:     "https://example.com/undated",
			Summary: SummaryUnavailable,
		},
	}

	out, err := NewGenerator().Run(Channel{
		Title:       "Headlines",
		Link:        "https://headlines.example.com/",
		Description: "Latest headlines",
		SelfLink:    "https://headlines.example.com/headlines.rss?limit=2",
		Generator:   "Headlines/test",
		BuildDate:   published,
	}, items)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<rss version="2.0"`,
		"<title>Headlines</title>",
		`<atom:link href="https://headlines.example.com/headlines.rss?limit=2" rel="self"`,
		"<lastBuildDate>Tue, 02 Jan 2024 15:04:05 +0000</lastBuildDate>",
		"<generator>Headlines/test</generator>",
		`<guid isPermaLink="true">https://example.com/rates</guid>`,
		"<title>Rates &amp; markets</title>",
		"<description>Markets &lt;moved&gt;.</description>",
		"<pubDate>Tue, 02 Jan 2024 15:04:05 +0000</pubDate>",
		"<category>Business</category>",
		`<source url="https://headlines.example.com/headlines.rss?limit=2">Google News: Business</source>`,
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}

	if strings.Count(out, "<item>") != 2 {
		t.Errorf("Expected 2 items, got %d", strings.Count(out, "<item>"))
	}
	if strings.Count(out, "<pubDate>") != 1 {
		t.Error("Expected undated item to have no pubDate")
	}
	if strings.Contains(out, "<source>") {
		t.Error("Expected every source element to carry a url")
	}

	// the feed must stay readable by the strict extractor
	src := testSource(FormatRSS)
	parsed, err := (&StrictExtractor{}).Extract(src, []byte(out))
	if err != nil {
		t.Fatalf("Expected rendered feed to parse, got: %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("Expected 2 parsed items, got %d", len(parsed))
	}
}

func TestGeneratorSourceFallsBackToChannelLink(t *testing.T) {
	items := []Item{{Title: "A", URL: "https://example.com/a", Source: "Wire"}}

	out, err := NewGenerator().Run(Channel{Title: "Headlines", Link: "https://headlines.example.com/"}, items)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<source url="https://headlines.example.com/">Wire</source>`) {
		t.Errorf("Expected source with channel link, got:\n%s", out)
	}

	out, err = NewGenerator().Run(Channel{Title: "Headlines"}, items)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<source") {
		t.Error("Expected source element omitted without a url")
	}
}

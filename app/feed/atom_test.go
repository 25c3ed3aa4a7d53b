package feed

import (
	"testing"
	"time"
)

func TestAtomExtractor(t *testing.T) {
	body := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example</title>
  <link href="https://example.com/" rel="alternate"/>
  <entry>
    <title type="html">Rust &amp;amp; Go</title>
    <link rel="replies" href="https://example.com/a/comments"/>
    <link rel="alternate" type="text/html" href="https://example.com/a?utm_campaign=x"/>
    <updated>2024-05-02T10:00:00Z</updated>
    <published>2024-05-01T10:00:00Z</published>
    <summary>Short summary</summary>
  </entry>
  <entry>
    <title>Only published</title>
    <link href='https://example.com/b'/>
    <published>2024-04-01T08:30:00+02:00</published>
    <content type="html">&lt;p&gt;Body text&lt;/p&gt;</content>
  </entry>
  <entry>
    <title>Only non-alternate link</title>
    <link rel="related" href="https://example.com/c"/>
  </entry>
  <entry>
    <title>No link at all</title>
  </entry>
</feed>`

	items, err := (&AtomExtractor{}).Extract(testSource(FormatAtom), []byte(body))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d: %+v", len(items), items)
	}

	if items[0].Title != "Rust &amp; Go" {
		t.Errorf("Expected single-pass entity decoding, got %q", items[0].Title)
	}
	if items[0].URL != "https://example.com/a" {
		t.Errorf("Expected alternate link, got %q", items[0].URL)
	}
	if items[0].PublishedAt == nil || items[0].PublishedAt.Format(time.RFC3339) != "2024-05-02T10:00:00Z" {
		t.Errorf("Expected updated date, got %v", items[0].PublishedAt)
	}
	if items[0].Summary != "Short summary" {
		t.Errorf("Expected summary, got %q", items[0].Summary)
	}

	if items[1].URL != "https://example.com/b" {
		t.Errorf("Expected link without rel, got %q", items[1].URL)
	}
	if items[1].PublishedAt == nil || items[1].PublishedAt.Format(time.RFC3339) != "2024-04-01T06:30:00Z" {
		t.Errorf("Expected published date in UTC, got %v", items[1].PublishedAt)
	}
	if items[1].Summary != "Body text" {
		t.Errorf("Expected content summary, got %q", items[1].Summary)
	}

	if items[2].URL != "https://example.com/c" {
		t.Errorf("Expected fallback link, got %q", items[2].URL)
	}
	if items[2].PublishedAt != nil {
		t.Errorf("Expected no date, got %v", items[2].PublishedAt)
	}
}

func TestAtomLink(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  string
	}{
		{"alternate wins over earlier self", `<link rel="self" href="https://a/self"/><link rel="alternate" href="https://a/alt"/>`, "https://a/alt"},
		{"no rel counts as alternate", `<link rel="enclosure" href="https://a/e.mp3"/><link href="https://a/plain"/>`, "https://a/plain"},
		{"first href as fallback", `<link rel="related" href="https://a/r1"/><link rel="via" href="https://a/r2"/>`, "https://a/r1"},
		{"missing href skipped", `<link rel="alternate"/><link rel="related" href="https://a/r"/>`, "https://a/r"},
		{"none", `<title>x</title>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := atomLink(tt.block); got != tt.want {
				t.Errorf("atomLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

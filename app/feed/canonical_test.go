package feed

import (
	"net/url"
	"strings"
	"testing"
)

func TestCanonicalURL(t *testing.T) {
	base, _ := url.Parse("https://news.example.com/section/index.xml")

	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"strips utm and fragment", "https://example.com/a?id=1&utm_source=x&utm_medium=y#top", "https://example.com/a?id=1", true},
		{"strips click ids", "https://example.com/a?gclid=1&fbclid=2&keep=yes", "https://example.com/a?keep=yes", true},
		{"keeps param order", "https://example.com/a?z=1&a=2", "https://example.com/a?z=1&a=2", true},
		{"resolves relative", "/story/42", "https://news.example.com/story/42", true},
		{"drops empty query", "https://example.com/a?", "https://example.com/a", true},
		{"rejects mailto", "mailto:someone@example.com", "", false},
		{"rejects garbage", "http://[::1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalURL(tt.raw, base)
			if ok != tt.ok {
				t.Fatalf("CanonicalURL(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalKey(t *testing.T) {
	a := Item{Title: "A", URL: "HTTPS://Example.COM/Path/Story?utm_source=rss"}
	b := Item{Title: "B", URL: "https://example.com/Path/Story"}
	if CanonicalKey(a) != CanonicalKey(b) {
		t.Errorf("Expected equal keys, got %q and %q", CanonicalKey(a), CanonicalKey(b))
	}

	c := Item{Title: "C", URL: "https://example.com/path/story"}
	if CanonicalKey(b) == CanonicalKey(c) {
		t.Error("Expected path case to be significant")
	}

	d := Item{Title: "D", URL: "https://example.com/Path/Story?"}
	if CanonicalKey(d) != CanonicalKey(b) {
		t.Errorf("Expected empty query to be ignored, got %q and %q", CanonicalKey(d), CanonicalKey(b))
	}
}

func TestCanonicalKeyTitleFallback(t *testing.T) {
	a := Item{Title: "Big  News Today", URL: "not a url"}
	b := Item{Title: "big news today", URL: "::also broken"}

	if CanonicalKey(a) != CanonicalKey(b) {
		t.Errorf("Expected title fallback keys to match, got %q and %q", CanonicalKey(a), CanonicalKey(b))
	}
	if !strings.HasPrefix(CanonicalKey(a), "title:") {
		t.Errorf("Expected title key prefix, got %q", CanonicalKey(a))
	}

	long := Item{Title: strings.Repeat("x", 500), URL: "broken"}
	if n := len([]rune(CanonicalKey(long))); n != len("title:")+maxTitleKeyLength {
		t.Errorf("Expected bounded title key, got %d runes", n)
	}
}

package feed

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxTitleLength     = 140
	MaxSummaryLength   = 250
	SummaryUnavailable = "Summary unavailable."

	// a sentence cut earlier than this reads like a truncated teaser
	minSentenceCut = 100
)

var (
	cdataRe = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&apos;", "'",
	)

	// elements that end a run of text when rendered
	blockTags = map[string]bool{
		"address": true, "article": true, "aside": true, "blockquote": true,
		"br": true, "dd": true, "div": true, "dl": true, "dt": true,
		"figcaption": true, "figure": true, "footer": true, "h1": true,
		"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"header": true, "hr": true, "li": true, "main": true, "ol": true,
		"p": true, "pre": true, "section": true, "table": true, "td": true,
		"th": true, "tr": true, "ul": true,
	}

	dateLayouts = []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339Nano,
		time.RFC3339,
	}
)

// decodeText unwraps CDATA sections and decodes the basic XML entities in one pass.
func decodeText(s string) string {
	s = cdataRe.ReplaceAllString(s, "$1")
	return entityReplacer.Replace(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clamp(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

func cleanTitle(raw string) string {
	title := collapseSpace(norm.NFC.String(decodeText(raw)))
	return clamp(title, MaxTitleLength)
}

// summarize turns an HTML or plain-text body into a short display summary.
func summarize(raw string) string {
	text := collapseSpace(norm.NFC.String(stripHTML(decodeText(raw))))
	if text == "" {
		return SummaryUnavailable
	}
	return clipSummary(text, MaxSummaryLength)
}

func clipSummary(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	cut := string([]rune(text)[:max])
	if idx := strings.LastIndex(cut, ". "); idx >= 0 && utf8.RuneCountInString(cut[:idx]) >= minSentenceCut {
		return cut[:idx+1]
	}
	return clamp(text, max)
}

func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}
	return b.String()
}

// writeText appends the text under n, separating block elements with a space.
func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		b.WriteByte(' ')
	}
}

// parseDate returns nil when the value is empty or not a recognizable date.
func parseDate(raw string) *time.Time {
	s := strings.TrimSpace(decodeText(raw))
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utcPtr(t)
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.IsZero() {
		return nil
	}
	return utcPtr(t)
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.Client(), "TestAgent/1.0", time.Second)
	src := testSource(FormatRSS)
	src.URL = server.URL + "/feed"

	res := fetcher.Run(context.Background(), src)
	if !res.OK() {
		t.Fatalf("Expected success, got: %v", res.Err)
	}
	if string(res.Body) != "<rss></rss>" {
		t.Errorf("Unexpected body: %q", res.Body)
	}
	if res.Source.Name != src.Name {
		t.Errorf("Expected originating source to be kept, got %q", res.Source.Name)
	}
	if gotUA != "TestAgent/1.0" {
		t.Errorf("Expected user agent header, got %q", gotUA)
	}
	if gotAccept != acceptXML {
		t.Errorf("Expected XML accept header, got %q", gotAccept)
	}
	if res.Outcome() != "ok" {
		t.Errorf("Expected outcome 'ok', got %q", res.Outcome())
	}
}

func TestHTTPFetcherJSONAccept(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	src := testSource(FormatJSONPosts)
	src.URL = server.URL

	NewHTTPFetcher(server.Client(), "ua", time.Second).Run(context.Background(), src)
	if gotAccept != acceptJSON {
		t.Errorf("Expected JSON accept header, got %q", gotAccept)
	}
}

func TestHTTPFetcherHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	src := testSource(FormatRSS)
	src.URL = server.URL

	res := NewHTTPFetcher(server.Client(), "ua", time.Second).Run(context.Background(), src)
	if res.OK() {
		t.Fatal("Expected failure for HTTP 500")
	}
	if res.Err.Kind != FetchHTTPStatus || res.Err.Status != http.StatusInternalServerError {
		t.Errorf("Expected http-status/500, got %s/%d", res.Err.Kind, res.Err.Status)
	}
	if res.Body != nil {
		t.Errorf("Expected no body on failure, got %q", res.Body)
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	src := testSource(FormatRSS)
	src.URL = server.URL

	start := time.Now()
	res := NewHTTPFetcher(server.Client(), "ua", 100*time.Millisecond).Run(context.Background(), src)
	if res.OK() {
		t.Fatal("Expected timeout failure")
	}
	if res.Err.Kind != FetchTimeout {
		t.Errorf("Expected timeout kind, got %s (%v)", res.Err.Kind, res.Err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected fetch to stop near its deadline, took %s", elapsed)
	}
}

func TestNewHTTPFetcherDefaults(t *testing.T) {
	fetcher := NewHTTPFetcher(nil, "ua", 0)
	if fetcher.timeout != DefaultFetchTimeout {
		t.Errorf("Expected default timeout, got %s", fetcher.timeout)
	}
	if fetcher.client == nil {
		t.Error("Expected a default client")
	}
}

func TestHTTPFetcherSourceTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	src := testSource(FormatRSS)
	src.URL = server.URL
	src.Settings.Timeout = 1

	start := time.Now()
	res := NewHTTPFetcher(server.Client(), "ua", time.Minute).Run(context.Background(), src)
	if res.OK() || res.Err.Kind != FetchTimeout {
		t.Fatalf("Expected per-source timeout to apply, got %+v", res.Err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Expected per-source timeout of 1s, took %s", elapsed)
	}
}

func TestHTTPFetcherTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	src := testSource(FormatRSS)
	src.URL = url

	res := NewHTTPFetcher(nil, "ua", time.Second).Run(context.Background(), src)
	if res.OK() {
		t.Fatal("Expected failure for closed server")
	}
	if res.Err.Kind != FetchTransport {
		t.Errorf("Expected transport kind, got %s", res.Err.Kind)
	}
}

func TestSourceEndpoint(t *testing.T) {
	src := Source{
		URL:    "https://news.example.com/{section}/rss?q={q}&hl=en",
		Params: map[string]string{"section": "top stories", "q": "S&P 500 OR inflation"},
	}

	want := "https://news.example.com/top%20stories/rss?q=S%26P+500+OR+inflation&hl=en"
	if got := src.Endpoint(); got != want {
		t.Errorf("Endpoint() = %q, want %q", got, want)
	}
}

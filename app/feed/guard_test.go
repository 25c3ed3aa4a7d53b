package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestIsPublicHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"example.com", true},
		{"93.184.216.34", true},
		{"2606:2800:220:1::", true},
		{"localhost", false},
		{"api.localhost", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"fd00::1", false},
		{"fe80::1", false},
		{"::ffff:127.0.0.1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPublicHost(tt.host); got != tt.want {
			t.Errorf("IsPublicHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestIsPublicAddrUnmapsIPv4(t *testing.T) {
	if IsPublicAddr(netip.MustParseAddr("::ffff:10.0.0.1")) {
		t.Error("Expected IPv4-mapped private address to be blocked")
	}
}

func TestPublicHTTPClientRefusesLoopback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><title>Internal admin</title></html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(NewPublicHTTPClient(), "test-agent", 0)
	body, fetchErr := fetcher.Get(context.Background(), server.URL+"/admin", AcceptHTML, 0)
	if fetchErr == nil {
		t.Fatalf("Expected loopback fetch to be refused, got body %q", body)
	}
	if fetchErr.Kind != FetchTransport {
		t.Errorf("Expected transport error, got %s", fetchErr.Kind)
	}
	if !errors.Is(fetchErr, ErrBlockedAddress) {
		t.Errorf("Expected ErrBlockedAddress, got: %v", fetchErr)
	}
}

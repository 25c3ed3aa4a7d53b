package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	DefaultFetchTimeout = 7 * time.Second
	maxBodySize         = 4 << 20
)

// HTTPFetcher performs a single bounded GET per call. Failures are returned
// as values; nothing is retried.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

func NewHTTPFetcher(client *http.Client, userAgent string, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

func (f *HTTPFetcher) Run(ctx context.Context, src Source) FetchResult {
	timeout := f.timeout
	if src.Settings.Timeout > 0 {
		timeout = time.Duration(src.Settings.Timeout) * time.Second
	}

	body, fetchErr := f.Get(ctx, src.Endpoint(), src.Accept(), timeout)
	return FetchResult{
		Source: src,
		Body:   body,
		Err:    fetchErr,
	}
}

// Get fetches rawURL with the given Accept header. A zero timeout uses the
// fetcher default.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL, accept string, timeout time.Duration) ([]byte, *FetchError) {
	if timeout <= 0 {
		timeout = f.timeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{Kind: FetchHTTPStatus, Status: resp.StatusCode, Err: fmt.Errorf("HTTP error: %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyFetchError(fmt.Errorf("failed to read response body: %w", err))
	}

	return data, nil
}

func classifyFetchError(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: FetchTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: FetchTimeout, Err: err}
	}

	return &FetchError{Kind: FetchTransport, Err: err}
}

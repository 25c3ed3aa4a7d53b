package headlines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/lysyi3m/headlines/app/cache"
	"github.com/lysyi3m/headlines/app/feed"
)

var ErrInvalidURL = errors.New("url must be an absolute public http(s) URL")

type ArticleResponse struct {
	OK          bool      `json:"ok"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type PageFetcher interface {
	Get(ctx context.Context, rawURL, accept string, timeout time.Duration) ([]byte, *feed.FetchError)
}

type ContentExtractorInterface interface {
	Run(data []byte, pageURL *url.URL) (*feed.Article, error)
}

var (
	_ PageFetcher               = (*feed.HTTPFetcher)(nil)
	_ ContentExtractorInterface = (*feed.ContentExtractor)(nil)
)

// Summarizer fetches a single article and caches its short summary.
type Summarizer struct {
	fetcher   PageFetcher
	extractor ContentExtractorInterface
	cache     *cache.EdgeCache
	policy    cache.Policy
	now       func() time.Time
}

func NewSummarizer(fetcher PageFetcher, extractor ContentExtractorInterface, edgeCache *cache.EdgeCache, policy cache.Policy) *Summarizer {
	return &Summarizer{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     edgeCache,
		policy:    policy,
		now:       time.Now,
	}
}

func (s *Summarizer) Run(ctx context.Context, rawURL string) ([]byte, cache.Status, error) {
	pageURL, ok := feed.CanonicalURL(rawURL, nil)
	if !ok {
		return nil, "", ErrInvalidURL
	}
	u, err := url.Parse(pageURL)
	if err != nil || !feed.IsPublicHost(u.Hostname()) {
		return nil, "", ErrInvalidURL
	}

	return s.cache.GetOrCompute(ctx, cache.HashKey("extract", pageURL), s.policy, func(ctx context.Context) ([]byte, error) {
		ctx = context.WithoutCancel(ctx)

		data, fetchErr := s.fetcher.Get(ctx, pageURL, feed.AcceptHTML, 0)
		if fetchErr != nil {
			return nil, fmt.Errorf("failed to fetch article: %w", fetchErr)
		}

		article, err := s.extractor.Run(data, u)
		if err != nil {
			return nil, err
		}

		body, err := json.Marshal(ArticleResponse{
			OK:          true,
			URL:         pageURL,
			Title:       article.Title,
			Summary:     article.Summary,
			GeneratedAt: s.now().UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode response: %w", err)
		}
		return body, nil
	})
}

func (s *Summarizer) Policy() cache.Policy {
	return s.policy
}

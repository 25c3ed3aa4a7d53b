package headlines

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/headlines/app/cache"
	"github.com/lysyi3m/headlines/app/feed"
)

type Response struct {
	OK          bool        `json:"ok"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Count       int         `json:"count"`
	Items       []feed.Item `json:"items"`
}

type SourceProvider interface {
	Sources(includeCommunity bool) []feed.Source
}

type AggregatorInterface interface {
	Run(ctx context.Context, sources []feed.Source, limit int) (*feed.Result, error)
}

var (
	_ SourceProvider      = (*feed.ConfigCache)(nil)
	_ AggregatorInterface = (*feed.Aggregator)(nil)
)

// Service answers headline queries through the edge cache.
type Service struct {
	sources    SourceProvider
	aggregator AggregatorInterface
	cache      *cache.EdgeCache
	policy     cache.Policy
}

func NewService(sources SourceProvider, aggregator AggregatorInterface, edgeCache *cache.EdgeCache, policy cache.Policy) *Service {
	return &Service{
		sources:    sources,
		aggregator: aggregator,
		cache:      edgeCache,
		policy:     policy,
	}
}

// Run returns the encoded response body for q along with how it was served.
func (s *Service) Run(ctx context.Context, q Query) ([]byte, cache.Status, error) {
	return s.cache.GetOrCompute(ctx, q.CacheKey(), s.policy, s.compute(q))
}

// Refresh recomputes q and replaces the cached response once the stored one
// is no longer fresh.
func (s *Service) Refresh(ctx context.Context, q Query) (bool, error) {
	return s.cache.Refresh(ctx, q.CacheKey(), s.policy, s.compute(q))
}

func (s *Service) Invalidate(ctx context.Context, q Query) error {
	return s.cache.Invalidate(ctx, q.CacheKey())
}

func (s *Service) Policy() cache.Policy {
	return s.policy
}

func (s *Service) compute(q Query) cache.ComputeFunc {
	return func(ctx context.Context) ([]byte, error) {
		// fetches keep their own deadlines even if the caller goes away
		ctx = context.WithoutCancel(ctx)

		result, err := s.aggregator.Run(ctx, s.sources.Sources(q.Community), q.Limit)
		if err != nil {
			return nil, err
		}

		body, err := json.Marshal(Response{
			OK:          true,
			GeneratedAt: result.GeneratedAt,
			Count:       result.Count,
			Items:       result.Items,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode response: %w", err)
		}
		return body, nil
	}
}

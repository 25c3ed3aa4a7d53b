package api

import (
	"context"

	"github.com/lysyi3m/headlines/app/cache"
	"github.com/lysyi3m/headlines/app/feed"
	"github.com/lysyi3m/headlines/app/headlines"
)

type HeadlinesInterface interface {
	Run(ctx context.Context, q headlines.Query) ([]byte, cache.Status, error)
	Invalidate(ctx context.Context, q headlines.Query) error
	Policy() cache.Policy
}

type SummarizerInterface interface {
	Run(ctx context.Context, rawURL string) ([]byte, cache.Status, error)
	Policy() cache.Policy
}

type SourceListerInterface interface {
	GetConfigs() map[string]*feed.Source
	GetConfigCount() int
}

type CacheAdminInterface interface {
	Clear(ctx context.Context) error
}

var (
	_ HeadlinesInterface    = (*headlines.Service)(nil)
	_ SummarizerInterface   = (*headlines.Summarizer)(nil)
	_ SourceListerInterface = (*feed.ConfigCache)(nil)
	_ CacheAdminInterface   = (*cache.EdgeCache)(nil)
)

// ErrorResponse is returned with HTTP 200 so dashboard clients can render it.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type Options struct {
	APIAccessKey   string
	AllowedOrigins []string
	DefaultLimit   int
	MaxLimit       int
	Version        string
}

type Handler struct {
	headlines  HeadlinesInterface
	summarizer SummarizerInterface
	sources    SourceListerInterface
	cacheAdmin CacheAdminInterface
	generator  *feed.Generator
	opts       Options
}

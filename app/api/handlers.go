package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/headlines/app/feed"
	"github.com/lysyi3m/headlines/app/headlines"
)

const jsonContentType = "application/json; charset=utf-8"

func NewHandler(headlinesService HeadlinesInterface, summarizer SummarizerInterface,
	sources SourceListerInterface, cacheAdmin CacheAdminInterface, opts Options) *Handler {
	if opts.MaxLimit <= 0 || opts.MaxLimit > headlines.MaxLimit {
		opts.MaxLimit = headlines.MaxLimit
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = min(40, opts.MaxLimit)
	}

	return &Handler{
		headlines:  headlinesService,
		summarizer: summarizer,
		sources:    sources,
		cacheAdmin: cacheAdmin,
		generator:  feed.NewGenerator(),
		opts:       opts,
	}
}

func (h *Handler) GetHeadlines(c *gin.Context) {
	query := h.parseQuery(c)

	body, status, err := h.headlines.Run(c.Request.Context(), query)
	if err != nil {
		slog.Error("Headlines unavailable", "limit", query.Limit, "community", query.Community, "error", err)
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", h.headlines.Policy().CacheControl())
	c.Header("X-Cache", string(status))
	c.Data(http.StatusOK, jsonContentType, body)
}

// GetHeadlinesRSS renders the same cached variant as an RSS 2.0 channel.
func (h *Handler) GetHeadlinesRSS(c *gin.Context) {
	query := h.parseQuery(c)

	body, status, err := h.headlines.Run(c.Request.Context(), query)
	if err != nil {
		slog.Error("Headlines unavailable", "limit", query.Limit, "community", query.Community, "error", err)
		c.Header("Cache-Control", "no-store")
		c.String(http.StatusServiceUnavailable, "headlines unavailable")
		return
	}

	var resp headlines.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Error("Failed to decode cached headlines", "key", query.CacheKey(), "error", err)
		c.String(http.StatusInternalServerError, "headlines unavailable")
		return
	}

	baseURL := requestBaseURL(c)
	rss, err := h.generator.Run(feed.Channel{
		Title:       "Headlines",
		Link:        baseURL + "/",
		Description: fmt.Sprintf("Latest %d headlines", query.Limit),
		SelfLink:    baseURL + c.Request.URL.RequestURI(),
		Generator:   "Headlines/" + h.opts.Version,
		BuildDate:   resp.GeneratedAt,
	}, resp.Items)
	if err != nil {
		slog.Error("Failed to render headlines feed", "key", query.CacheKey(), "error", err)
		c.String(http.StatusInternalServerError, "headlines unavailable")
		return
	}

	c.Header("Cache-Control", h.headlines.Policy().CacheControl())
	c.Header("X-Cache", string(status))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (h *Handler) GetExtract(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{OK: false, Error: "missing url parameter"})
		return
	}

	body, status, err := h.summarizer.Run(c.Request.Context(), rawURL)
	if errors.Is(err, headlines.ErrInvalidURL) {
		c.JSON(http.StatusBadRequest, ErrorResponse{OK: false, Error: err.Error()})
		return
	}
	if err != nil {
		slog.Warn("Article summary unavailable", "url", rawURL, "error", err)
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", h.summarizer.Policy().CacheControl())
	c.Header("X-Cache", string(status))
	c.Data(http.StatusOK, jsonContentType, body)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"loaded_configurations": h.sources.GetConfigCount(),
		"version":               h.opts.Version,
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.sources.GetConfigs()

	sources := make([]gin.H, 0, len(configs))
	for _, source := range configs {
		sources = append(sources, gin.H{
			"name":      source.Name,
			"label":     source.Label,
			"category":  source.Category,
			"format":    source.Format,
			"parser":    source.Parser,
			"url":       source.Endpoint(),
			"community": source.Community,
			"enabled":   source.Settings.Enabled,
			"max_items": source.Settings.MaxItems,
			"timeout":   source.Settings.Timeout,
		})
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i]["name"].(string) < sources[j]["name"].(string)
	})

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"count":   len(sources),
	})
}

// APIPurgeCache drops a single variant when limit is given, otherwise every
// cached response.
func (h *Handler) APIPurgeCache(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("limit") != "" {
		query := h.parseQuery(c)

		if err := h.headlines.Invalidate(ctx, query); err != nil {
			slog.Error("Cache invalidation failed", "key", query.CacheKey(), "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{OK: false, Error: "cache invalidation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "purged": query.CacheKey()})
		return
	}

	if err := h.cacheAdmin.Clear(ctx); err != nil {
		slog.Error("Cache clear failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{OK: false, Error: "cache clear failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "purged": "all"})
}

func (h *Handler) parseQuery(c *gin.Context) headlines.Query {
	return headlines.Query{
		Limit:     getQueryInt("limit", h.opts.DefaultLimit, c),
		Community: getQueryBool("community", true, c),
	}.Clamp(h.opts.MaxLimit)
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// writeError reports failures in the response body with HTTP 200 so callers
// can render a degraded state instead of failing on the status code.
func writeError(c *gin.Context, err error) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, ErrorResponse{OK: false, Error: err.Error()})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)
	if param == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsedValue
}

func getQueryBool(name string, defaultValue bool, c *gin.Context) bool {
	param := c.Query(name)
	if param == "" {
		return defaultValue
	}

	parsedValue, err := headlines.ParseCommunity(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsedValue
}

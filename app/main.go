package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/headlines/app/api"
	"github.com/lysyi3m/headlines/app/cache"
	"github.com/lysyi3m/headlines/app/cfg"
	"github.com/lysyi3m/headlines/app/database"
	"github.com/lysyi3m/headlines/app/feed"
	"github.com/lysyi3m/headlines/app/headlines"
	"github.com/lysyi3m/headlines/app/metrics"
	"github.com/lysyi3m/headlines/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Headlines server", "version", appCfg.Version)

	metrics.Init()

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount(), "dir", appCfg.FeedsDir)

	store, closeStore, err := openStore(appCfg)
	if err != nil {
		slog.Error("Failed to open cache store", "backend", appCfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	edgeCache := cache.NewEdgeCache(store)

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	fetcher := feed.NewHTTPFetcher(httpClient, appCfg.UserAgent, appCfg.FetchTimeout)
	aggregator := feed.NewAggregator(fetcher)

	headlinesPolicy := cache.Policy{TTL: appCfg.CacheTTL, Stale: appCfg.CacheStale}
	service := headlines.NewService(configCache, aggregator, edgeCache, headlinesPolicy)

	extractPolicy := cache.Policy{TTL: appCfg.ExtractTTL, Stale: 4 * appCfg.ExtractTTL}
	pageFetcher := feed.NewHTTPFetcher(feed.NewPublicHTTPClient(), appCfg.UserAgent, appCfg.FetchTimeout)
	summarizer := headlines.NewSummarizer(pageFetcher, feed.NewContentExtractor(), edgeCache, extractPolicy)

	var scheduler *tasks.Scheduler
	if appCfg.WarmInterval > 0 {
		variants, err := headlines.ParseVariants(appCfg.WarmVariants)
		if err != nil {
			slog.Error("Invalid warm variants", "error", err)
			os.Exit(1)
		}

		purgeAge := max(appCfg.CacheTTL+appCfg.CacheStale, extractPolicy.TTL+extractPolicy.Stale)
		scheduler = tasks.NewScheduler(service, edgeCache, variants, appCfg.WarmInterval, purgeAge, appCfg.WorkerCount)
		scheduler.Start()
		slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.WarmInterval, "variants", len(variants))
	}

	handler := api.NewHandler(service, summarizer, configCache, edgeCache, api.Options{
		APIAccessKey:   appCfg.APIAccessKey,
		AllowedOrigins: appCfg.AllowedOrigins,
		DefaultLimit:   appCfg.DefaultLimit,
		MaxLimit:       appCfg.MaxLimit,
		Version:        appCfg.Version,
	})
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if scheduler != nil {
		scheduler.Stop()
		slog.Info("Background scheduler stopped")
	}

	edgeCache.Wait()

	slog.Info("Headlines server shutdown complete")
}

// openStore builds the configured cache backend and returns its cleanup func.
func openStore(appCfg *cfg.Cfg) (cache.Store, func(), error) {
	switch appCfg.CacheBackend {
	case "sqlite":
		db, err := database.NewConnection(appCfg.CacheDBPath)
		if err != nil {
			return nil, nil, err
		}

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("Cache database ready", "path", appCfg.CacheDBPath, "migration_version", version, "dirty", dirty)

		return cache.NewSQLiteStore(database.NewCacheRepository(db)), func() { db.Close() }, nil

	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := cache.NewRedisStore(ctx, appCfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		return cache.NewMemoryStore(), func() {}, nil
	}
}

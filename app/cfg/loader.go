package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey   string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`
	AllowedOrigins string `long:"allowed-origins" env:"ALLOWED_ORIGINS" default:"*" description:"Comma separated list of CORS origins"`

	// Aggregation configuration
	FeedsDir     string        `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing source configuration files"`
	UserAgent    string        `long:"user-agent" env:"USER_AGENT" default:"EdgeHeadlines/1.0 (+https://github.com/lysyi3m/headlines)" description:"User agent string for upstream requests"`
	FetchTimeout time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"7s" description:"Deadline for a single upstream fetch"`
	DefaultLimit int           `long:"default-limit" env:"DEFAULT_LIMIT" default:"40" description:"Number of headlines returned when no limit is given"`
	MaxLimit     int           `long:"max-limit" env:"MAX_LIMIT" default:"80" description:"Upper bound for the limit parameter"`

	// Cache configuration
	CacheBackend string        `long:"cache-backend" env:"CACHE_BACKEND" default:"memory" choice:"memory" choice:"sqlite" choice:"redis" description:"Edge cache store"`
	CacheTTL     time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"3m" description:"How long a cached response is served as fresh"`
	CacheStale   time.Duration `long:"cache-stale" env:"CACHE_STALE" default:"10m" description:"How long past TTL a cached response may stand in for a failed refresh"`
	ExtractTTL   time.Duration `long:"extract-ttl" env:"EXTRACT_TTL" default:"6h" description:"Cache TTL for article summaries"`
	CacheDBPath  string        `long:"cache-db-path" env:"CACHE_DB_PATH" default:"./data/cache.db" description:"SQLite file used by the sqlite cache backend"`
	RedisURL     string        `long:"redis-url" env:"REDIS_URL" default:"redis://localhost:6379/0" description:"Redis URL used by the redis cache backend"`

	// Background tasks
	WarmInterval time.Duration `long:"warm-interval" env:"WARM_INTERVAL" default:"150s" description:"Cache warming interval (0 disables background tasks)"`
	WarmVariants string        `long:"warm-variants" env:"WARM_VARIANTS" default:"40:1,40:0" description:"Comma separated limit:community variants to keep warm"`
	WorkerCount  int           `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for log timestamps (e.g., UTC, America/Phoenix)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads configuration from flags and environment variables. A .env file
// in the working directory is applied first when present.
func Load() (*Cfg, error) {
	return load(nil)
}

func load(args []string) (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		AllowedOrigins: splitList(raw.AllowedOrigins),
		FeedsDir:       raw.FeedsDir,
		UserAgent:      raw.UserAgent,
		FetchTimeout:   raw.FetchTimeout,
		DefaultLimit:   raw.DefaultLimit,
		MaxLimit:       raw.MaxLimit,
		CacheBackend:   raw.CacheBackend,
		CacheTTL:       raw.CacheTTL,
		CacheStale:     raw.CacheStale,
		ExtractTTL:     raw.ExtractTTL,
		CacheDBPath:    raw.CacheDBPath,
		RedisURL:       raw.RedisURL,
		WarmInterval:   raw.WarmInterval,
		WarmVariants:   raw.WarmVariants,
		WorkerCount:    raw.WorkerCount,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.CacheStale < 0 || c.WarmInterval < 0 {
		return fmt.Errorf("cache stale window and warm interval must be non-negative")
	}
	if c.MaxLimit < 1 {
		return fmt.Errorf("max limit must be at least 1")
	}
	if c.DefaultLimit < 1 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default limit must be between 1 and %d", c.MaxLimit)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

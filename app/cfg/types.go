package cfg

import "time"

type Cfg struct {
	// Server configuration
	Port           string
	APIAccessKey   string
	AllowedOrigins []string

	// Aggregation configuration
	FeedsDir     string
	UserAgent    string
	FetchTimeout time.Duration
	DefaultLimit int
	MaxLimit     int

	// Cache configuration
	CacheBackend string
	CacheTTL     time.Duration
	CacheStale   time.Duration
	ExtractTTL   time.Duration
	CacheDBPath  string
	RedisURL     string

	// Background tasks
	WarmInterval time.Duration
	WarmVariants string
	WorkerCount  int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

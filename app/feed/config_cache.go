package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	feedsDir string
	cache    map[string]*Source
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Source),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		sourceName := strings.TrimSuffix(filepath.Base(file), ".yml")

		source, err := cc.LoadConfig(sourceName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded", "source", sourceName, "format", source.Format, "enabled", source.Settings.Enabled, "community", source.Community)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(sourceName string) (*Source, error) {
	configFile := cc.getConfigFilePath(sourceName)
	source, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	source.Name = sourceName
	if source.Label == "" {
		source.Label = sourceName
	}

	if err := cc.validateConfig(source); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[source.Name] = source

	return source, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Source {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Source, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Source {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Source)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

// Sources returns enabled sources ordered by name. Community sources are
// left out unless includeCommunity is set.
func (cc *ConfigCache) Sources(includeCommunity bool) []Source {
	enabled := cc.GetEnabledConfigs()

	sources := make([]Source, 0, len(enabled))
	for _, v := range enabled {
		if v.Community && !includeCommunity {
			continue
		}
		sources = append(sources, *v)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})
	return sources
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Source, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if source.Format == "" {
		source.Format = FormatRSS
	}
	if source.Parser == "" {
		source.Parser = ParserLenient
	}
	if source.Settings.MaxItems == 0 {
		source.Settings.MaxItems = DefaultMaxItems
	}

	return &source, nil
}

func (cc *ConfigCache) validateConfig(source *Source) error {
	if source == nil {
		return fmt.Errorf("source is nil")
	}

	requiredFields := map[string]string{
		"source name": source.Name,
		"source URL":  source.URL,
		"category":    source.Category,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	switch source.Format {
	case FormatRSS, FormatAtom, FormatJSONPosts:
	default:
		return fmt.Errorf("unsupported format: %s", source.Format)
	}

	switch source.Parser {
	case ParserLenient:
	case ParserStrict:
		if source.Format == FormatJSONPosts {
			return fmt.Errorf("strict parser is not available for %s sources", source.Format)
		}
	default:
		return fmt.Errorf("unsupported parser: %s", source.Parser)
	}

	nonNegativeFields := map[string]int{
		"max items": source.Settings.MaxItems,
		"timeout":   source.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for _, filter := range source.Filters {
		if !isFilterField(filter.Field) {
			return fmt.Errorf("unsupported filter field: %s", filter.Field)
		}
	}

	endpoint := source.Endpoint()
	if placeholder := placeholderRe.FindString(endpoint); placeholder != "" {
		return fmt.Errorf("URL placeholder %s has no matching param", placeholder)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid source URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source URL must be an absolute http(s) URL: %s", endpoint)
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(sourceName string) string {
	return filepath.Join(cc.feedsDir, sourceName+".yml")
}

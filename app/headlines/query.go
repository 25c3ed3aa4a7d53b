package headlines

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lysyi3m/headlines/app/cache"
)

const (
	MinLimit = 1
	MaxLimit = 80
)

// Query is one variant of the headlines request.
type Query struct {
	Limit     int
	Community bool
}

// Clamp bounds Limit to 1..upper, never above MaxLimit.
func (q Query) Clamp(upper int) Query {
	if upper <= 0 || upper > MaxLimit {
		upper = MaxLimit
	}
	q.Limit = min(max(q.Limit, MinLimit), upper)
	return q
}

// CacheKey covers every parameter that changes the response.
func (q Query) CacheKey() string {
	return cache.Key("headlines", map[string]string{
		"limit":     strconv.Itoa(q.Limit),
		"community": communityFlag(q.Community),
	})
}

func (q Query) String() string {
	return fmt.Sprintf("%d:%s", q.Limit, communityFlag(q.Community))
}

// ParseVariants reads a comma separated list of limit:community pairs such as
// "40:1,40:0".
func ParseVariants(s string) ([]Query, error) {
	var variants []Query
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		limitStr, communityStr, _ := strings.Cut(part, ":")
		limit, err := strconv.Atoi(strings.TrimSpace(limitStr))
		if err != nil {
			return nil, fmt.Errorf("invalid variant %q: %w", part, err)
		}

		community := true
		if communityStr != "" {
			community, err = ParseCommunity(communityStr)
			if err != nil {
				return nil, fmt.Errorf("invalid variant %q: %w", part, err)
			}
		}

		variants = append(variants, Query{Limit: limit, Community: community}.Clamp(MaxLimit))
	}
	return variants, nil
}

func ParseCommunity(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized community flag %q", s)
}

func communityFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

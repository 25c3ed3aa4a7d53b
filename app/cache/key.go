package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Key builds a cache key from a namespace and every parameter that shapes
// the response. Parameter order does not matter.
func Key(namespace string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(namespace)
	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}

// HashKey keeps keys short for arbitrary values such as URLs.
func HashKey(namespace, value string) string {
	hash := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%s:%x", namespace, hash[:8])
}

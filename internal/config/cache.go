package config

import (
	"strings"
	"time"
)

// CacheConfig drives the Redis response cache in front of fetchWeatherInfo.
// The payload depends only on the event id in the path, so the default key
// strategy is "path".  Weather for an event changes slowly, hence the
// half-hour default TTL.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string // path | route | path_query | method_path
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methodSet(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Minute),
		KeyStrategy:  strings.ToLower(envStr("CACHE_KEY_STRATEGY", "path")),
		Prefix:       envStr("CACHE_PREFIX", "weather"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 64<<10),
	}
	if c.TTL <= 0 || len(c.Methods) == 0 {
		c.Enabled = false
	}
	return c
}

// Caches reports whether responses to method are eligible.
func (c CacheConfig) Caches(method string) bool {
	return c.Enabled && c.Methods[strings.ToUpper(method)]
}

func methodSet(csv string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range strings.Split(csv, ",") {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			set[m] = true
		}
	}
	return set
}

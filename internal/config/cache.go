package config

import (
    "strings"
    "time"
)

// CacheConfig controls the response cache middleware.  Caching is skipped
// entirely when Enabled is false or no Redis client could be constructed.
// Methods lists the HTTP methods eligible for caching, TTL bounds the
// lifetime of an entry, and Prefix namespaces keys so the cache can share a
// Redis database with the rate limiter.  MaxBodyBytes caps the size of a
// cached response body.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from environment variables, falling
// back to defaults that cache GET responses for thirty seconds.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "30s")),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

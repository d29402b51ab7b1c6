package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL is the default recommendation cache entry lifetime.
const DefaultTTL = time.Hour

// defaultCacheSize bounds the in-process cache's entry count, a sane
// ceiling for the in-memory implementation.
const defaultCacheSize = 4096

// Cache is the shared key-value store fronting the recommendation
// pipeline: writes are idempotent, reads/writes are safe for concurrent
// use. It is backed by github.com/hashicorp/golang-lru/v2/expirable.
type Cache struct {
	lru *lru.LRU[string, Response]
}

// NewCache constructs a Cache with the given TTL; ttl<=0 falls back to
// DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lru: lru.NewLRU[string, Response](defaultCacheSize, nil, ttl)}
}

// Get returns the cached Response for key, if present and unexpired.
func (c *Cache) Get(key string) (Response, bool) {
	return c.lru.Get(key)
}

// Set stores resp under key. Writes are idempotent: the same key/value
// pair stored twice has the same effect as storing it once.
func (c *Cache) Set(key string, resp Response) {
	c.lru.Add(key, resp)
}

// cacheKey derives the recommendation cache key: a hash of
// (userID, limit, objective, sorted domains, difficulty, timebox,
// promptVersion, chainId).
func cacheKey(req Request, promptVersion, chainID string) string {
	domains := append([]string(nil), req.TargetDomains...)
	sort.Strings(domains)

	raw := fmt.Sprintf("%s|%d|%s|%s|%s|%d|%s|%s",
		req.UserID, req.Limit, req.Objective, strings.Join(domains, ","),
		req.DifficultyPreference, req.TimeboxMinutes, promptVersion, chainID)

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ABOUTME: Result cache for LLM outputs keyed by operation, model and a hash of the exact prompt text
// ABOUTME: Entries are JSON documents holding the result and when it was produced; they never expire

package enrichment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"aiml-digests/core/interfaces"
)

// ResultCache wraps a byte cache with the LLM result envelope
type ResultCache struct {
	cache  interfaces.Cache
	logger interfaces.Logger
	now    func() time.Time
}

type cacheEntry struct {
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}

// NewResultCache creates a result cache; a nil cache disables caching
func NewResultCache(cache interfaces.Cache, logger interfaces.Logger) *ResultCache {
	return &ResultCache{
		cache:  cache,
		logger: interfaces.Dependencies{Logger: logger}.WithDefaults().Logger,
		now:    time.Now,
	}
}

// Key builds the cache key for an operation on text
func Key(operation, model, text string) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("%s_%s_%s", operation, model, hex.EncodeToString(sum[:]))
}

// Get returns the cached result, or false on a miss or unreadable entry
func (c *ResultCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.cache == nil {
		return "", false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil || len(data) == 0 {
		return "", false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("Unreadable cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		return "", false
	}
	if entry.Result == "" {
		return "", false
	}
	return entry.Result, true
}

// Put stores result under key; failures are logged, never returned
func (c *ResultCache) Put(ctx context.Context, key, result string) {
	if c == nil || c.cache == nil {
		return
	}
	data, err := json.Marshal(cacheEntry{Result: result, Timestamp: c.now().Format(time.RFC3339)})
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, 0); err != nil {
		c.logger.Warn("Failed to write cache entry", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/credvet/credvet/internal/model"
)

// MemoryCache holds attestation results in process memory with TTL eviction.
// Results are stored by value so callers cannot mutate a cached entry.
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns a copy of the cached result for the digest, if present.
func (c *MemoryCache) Get(digest string) (*model.ClaimVerificationResult, bool) {
	val, found := c.cache.Get(Key(digest))
	if !found {
		return nil, false
	}
	result, ok := val.(model.ClaimVerificationResult)
	if !ok {
		c.cache.Delete(Key(digest))
		return nil, false
	}
	out := result
	return &out, true
}

// Set stores the result under the digest for the given TTL.
func (c *MemoryCache) Set(digest string, result *model.ClaimVerificationResult, ttl time.Duration) {
	if result == nil {
		return
	}
	c.cache.Set(Key(digest), *result, ttl)
}

// Delete removes the entry for the digest.
func (c *MemoryCache) Delete(digest string) {
	c.cache.Delete(Key(digest))
}

// Clear drops all cached attestations.
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

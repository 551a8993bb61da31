package descramble

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// functionCacheTTL and valueCacheTTL bound the lifetime of a single
// resolver call. Caches are per-call, not process-global, so there is no
// cross-call staleness to reason about — the TTL only protects against a
// single call reusing a cache long after it should have been freed.
const (
	functionCacheTTL = 10 * time.Minute
	valueCacheTTL    = 10 * time.Minute
	cacheSweepEvery  = 0 // no background janitor; the cache dies with the call
)

// Cache memoizes located function source and descrambled values for the
// lifetime of one resolver call. It has a single owner and is never
// shared across goroutines, so it needs no locking of its own beyond what
// go-cache already does internally.
type Cache struct {
	functions *cache.Cache
	values    *cache.Cache
}

// NewCache returns a fresh, empty per-call cache.
func NewCache() *Cache {
	return &Cache{
		functions: cache.New(functionCacheTTL, cacheSweepEvery),
		values:    cache.New(valueCacheTTL, cacheSweepEvery),
	}
}

func (c *Cache) getFunction(kind, playerJSKey string) (string, bool) {
	v, ok := c.functions.Get(kind + ":" + playerJSKey)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (c *Cache) putFunction(kind, playerJSKey, source string) {
	c.functions.Set(kind+":"+playerJSKey, source, cache.DefaultExpiration)
}

func (c *Cache) getValue(kind, playerJSKey, input string) (string, bool) {
	v, ok := c.values.Get(kind + ":" + playerJSKey + ":" + input)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (c *Cache) putValue(kind, playerJSKey, input, output string) {
	c.values.Set(kind+":"+playerJSKey+":"+input, output, cache.DefaultExpiration)
}

package riot

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// responseCache memoizes GET response bodies for a short window so bursts of
// identical lookups (poller + interactive commands) hit upstream once.
//
// Entries past TTL are treated as misses and removed on that miss; there is no
// background sweeper. No capacity bound: the tracked-account count bounds the
// working set and the TTL keeps it fresh.
type responseCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time // injectable for tests

	entries map[string]cacheEntry
}

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *responseCache) Lookup(key string) ([]byte, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.body, true
}

func (c *responseCache) Store(key string, body []byte) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{body: body, fetchedAt: c.now()}
	c.mu.Unlock()
}

// cacheKey normalizes a request signature: method, URL, and query parameters
// in sorted order, so parameter ordering never splits the cache.
func cacheKey(method, rawURL string, params url.Values) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(':')
	b.WriteString(rawURL)
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			vs := append([]string(nil), params[k]...)
			sort.Strings(vs)
			for _, v := range vs {
				b.WriteByte(':')
				b.WriteString(k)
				b.WriteByte('=')
				b.WriteString(v)
			}
		}
	}
	return b.String()
}

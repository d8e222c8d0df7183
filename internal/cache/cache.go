// Package cache is an in-memory memo with per-entry expiry. Entries live
// only as long as the process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

func New() *Cache {
	return &Cache{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func (c *Cache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{value: value, expires: c.now().Add(ttl)}
}

// Get returns a live entry. Expired entries are dropped on access.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expires) {
		delete(c.items, key)
		return "", false
	}
	return e.value, true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Key hashes parts into a fixed-size key. Parts are separated so that
// ("ab","c") and ("a","bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// Package cache holds recent GET responses so that repeated loads of the
// same URL under the same token are answered locally.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 256

// Entry is a cached response.
type Entry struct {
	Body         []byte
	ContentType  string
	ContentRange string
}

// Cache is a bounded LRU. A nil *Cache caches nothing.
type Cache struct {
	lru *lru.Cache[string, Entry]
}

// New returns a cache holding up to size entries. A size of zero or less
// returns nil, which disables caching.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	l, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Key builds the cache key of a request. The token is part of the key so
// that one session never sees another session's responses.
func Key(url, token string) string {
	return token + " " + url
}

func (c *Cache) Get(key string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.lru.Get(key)
	if !ok {
		return Entry{}, false
	}
	e.Body = append([]byte(nil), e.Body...)
	return e, true
}

func (c *Cache) Add(key string, e Entry) {
	if c == nil {
		return
	}
	e.Body = append([]byte(nil), e.Body...)
	c.lru.Add(key, e)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache is a size-bounded cache whose entries also expire after a TTL.
// A zero TTL disables expiry.
type LRUCache[K comparable, V any] struct {
	cache *expirable.LRU[K, V]
}

func NewLRUCache[K comparable, V any](size int, ttl time.Duration) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		cache: expirable.NewLRU[K, V](size, nil, ttl),
	}
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

func (c *LRUCache[K, V]) Put(key K, value V) {
	c.cache.Add(key, value)
}

func (c *LRUCache[K, V]) Invalidate(key K) {
	c.cache.Remove(key)
}

func (c *LRUCache[K, V]) Len() int {
	return c.cache.Len()
}

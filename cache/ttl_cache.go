// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type TTLCacheItem[V any] struct {
	value     V
	timestamp time.Time
}

// Cache with per-key TTL tracking and single-flight fetch
type TTLCache[K comparable, V any] struct {
	data map[K]TTLCacheItem[V]
	ttl  time.Duration
	lock sync.RWMutex

	// epoch advances on every Invalidate. A load that started in an older
	// epoch is returned to its callers but not stored.
	epoch   uint64
	sfGroup singleflight.Group
}

func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data: make(map[K]TTLCacheItem[V]),
		ttl:  ttl,
	}
}

// Get returns the cached value if it is younger than the TTL.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.lock.RLock()
	item, exists := c.data[key]
	c.lock.RUnlock()
	if exists && time.Since(item.timestamp) < c.ttl {
		return item.value, true
	}
	return *new(V), false
}

func (c *TTLCache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	c.data[key] = TTLCacheItem[V]{
		value:     value,
		timestamp: time.Now(),
	}
	c.lock.Unlock()
}

func (c *TTLCache[K, V]) Invalidate(key K) {
	c.lock.Lock()
	c.epoch++
	delete(c.data, key)
	c.lock.Unlock()
}

// Fetch returns the fresh cached value for key, otherwise loads it with
// fetchFunc. Concurrent fetches for the same key are deduplicated.
// If [invalidate] is true the entry is cleared before fetching, so no caller
// can read the stale value while the reload is in flight.
func (c *TTLCache[K, V]) Fetch(key K, fetchFunc FetchFunc[K, V], invalidate bool) (V, error) {
	if invalidate {
		c.Invalidate(key)
	} else if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.sfGroup.Do(keyToString(key), func() (interface{}, error) {
		c.lock.RLock()
		started := c.epoch
		c.lock.RUnlock()

		newValue, fetchErr := fetchFunc(key)
		if fetchErr != nil {
			return *new(V), fetchErr
		}

		c.lock.Lock()
		if c.epoch == started {
			c.data[key] = TTLCacheItem[V]{
				value:     newValue,
				timestamp: time.Now(),
			}
		}
		c.lock.Unlock()
		return newValue, nil
	})
	if err != nil {
		return *new(V), err
	}
	return v.(V), nil
}

// Len counts entries, including expired ones not yet overwritten.
func (c *TTLCache[K, V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.data)
}

// keyToString is defined to allow for both fmt.Stringer and primitive string types.
func keyToString[K comparable](key K) string {
	if s, ok := any(key).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", key)
}

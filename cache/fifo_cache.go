// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FIFOCache holds at most capacity entries and evicts in insertion order. It
// suits immutable values such as decoded certificates, which never go stale
// but must stay bounded.
type FIFOCache[K comparable, V any] struct {
	lock     sync.RWMutex
	entries  map[K]V
	order    []K
	capacity int

	// epoch advances on every Invalidate. A load that started in an older
	// epoch is returned to its callers but not stored.
	epoch   uint64
	sfGroup singleflight.Group
}

func NewFIFOCache[K comparable, V any](capacity int) *FIFOCache[K, V] {
	return &FIFOCache[K, V]{
		entries:  make(map[K]V, capacity),
		order:    make([]K, 0, capacity),
		capacity: capacity,
	}
}

func (c *FIFOCache[K, V]) Get(key K) (V, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *FIFOCache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.insert(key, value)
}

func (c *FIFOCache[K, V]) Invalidate(key K) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.epoch++
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Fetch returns the cached value for key, otherwise loads it with fetchFunc.
// Concurrent fetches for the same key share one load.
func (c *FIFOCache[K, V]) Fetch(key K, fetchFunc FetchFunc[K, V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.sfGroup.Do(keyToString(key), func() (interface{}, error) {
		c.lock.RLock()
		started := c.epoch
		c.lock.RUnlock()

		loaded, err := fetchFunc(key)
		if err != nil {
			return *new(V), err
		}

		c.lock.Lock()
		if c.epoch == started {
			c.insert(key, loaded)
		}
		c.lock.Unlock()
		return loaded, nil
	})
	if err != nil {
		return *new(V), err
	}
	return v.(V), nil
}

// insert requires the write lock.
func (c *FIFOCache[K, V]) insert(key K, value V) {
	if c.capacity <= 0 {
		return
	}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.order) >= c.capacity {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

func (c *FIFOCache[K, V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}

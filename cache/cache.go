// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

// Cache is the port injected into components that memoize lookups.
// Implementations are safe for concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Invalidate(key K)
}

// FetchFunc loads the value of key on a cache miss.
type FetchFunc[K comparable, V any] func(key K) (V, error)

// Noop never stores anything.
type Noop[K comparable, V any] struct{}

func (Noop[K, V]) Get(K) (v V, ok bool) { return v, false }
func (Noop[K, V]) Put(K, V)             {}
func (Noop[K, V]) Invalidate(K)         {}

var (
	_ Cache[string, int] = (*TTLCache[string, int])(nil)
	_ Cache[string, int] = (*LRUCache[string, int])(nil)
	_ Cache[string, int] = (*FIFOCache[string, int])(nil)
	_ Cache[string, int] = Noop[string, int]{}
)

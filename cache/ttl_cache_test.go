// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCacheSingleKey(t *testing.T) {
	tests := []struct {
		name           string
		invalidate     bool
		waitBeforeNext time.Duration
		expectedCount  int
	}{
		{
			name:          "fresh cache, fetch",
			expectedCount: 1,
		},
		{
			name:          "use cache, no fetch",
			expectedCount: 1,
		},
		{
			name:          "invalidate=true, fetch",
			invalidate:    true,
			expectedCount: 2,
		},
		{
			name:           "ttl expired, fetch",
			waitBeforeNext: 150 * time.Millisecond,
			expectedCount:  3,
		},
	}
	cache := NewTTLCache[string, int](100 * time.Millisecond)
	fetchCount := 0
	fetchFunc := func(_ string) (int, error) {
		fetchCount++
		return 42, nil
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			if tt.waitBeforeNext > 0 {
				time.Sleep(tt.waitBeforeNext)
			}

			val, err := cache.Fetch("test", fetchFunc, tt.invalidate)
			require.NoError(err)
			require.Equal(42, val)
			require.Equal(tt.expectedCount, fetchCount)
		})
	}
}

func TestTTLCachePort(t *testing.T) {
	require := require.New(t)

	var c Cache[string, int] = NewTTLCache[string, int](time.Hour)
	_, ok := c.Get("a")
	require.False(ok)

	c.Put("a", 1)
	v, ok := c.Get("a")
	require.True(ok)
	require.Equal(1, v)

	c.Invalidate("a")
	_, ok = c.Get("a")
	require.False(ok)
}

func TestTTLCacheFetchErrorNotCached(t *testing.T) {
	require := require.New(t)

	errFetch := errors.New("unavailable")
	cache := NewTTLCache[string, int](time.Hour)
	_, err := cache.Fetch("a", func(string) (int, error) { return 0, errFetch }, false)
	require.ErrorIs(err, errFetch)
	require.Zero(cache.Len())
}

func TestTTLCacheInvalidateDuringFetch(t *testing.T) {
	require := require.New(t)

	cache := NewTTLCache[string, int](time.Hour)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)
	go func() {
		v, _ := cache.Fetch("k", func(string) (int, error) {
			close(started)
			<-release
			return 1, nil
		}, false)
		done <- v
	}()

	<-started
	cache.Invalidate("k")
	close(release)
	require.Equal(1, <-done)

	_, ok := cache.Get("k")
	require.False(ok)
	require.Zero(cache.Len())

	v, err := cache.Fetch("k", func(string) (int, error) { return 2, nil }, false)
	require.NoError(err)
	require.Equal(2, v)
	v, ok = cache.Get("k")
	require.True(ok)
	require.Equal(2, v)
}

func TestNoopCache(t *testing.T) {
	var c Cache[string, int] = Noop[string, int]{}
	c.Put("a", 1)
	_, ok := c.Get("a")
	require.False(t, ok)
	c.Invalidate("a")
}

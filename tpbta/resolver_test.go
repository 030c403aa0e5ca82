// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tpbta

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cache"
)

var (
	sender   = xchain.Identity{0xaa}
	receiver = xchain.Identity{0xbb}
	other    = xchain.Identity{0xcc}
)

func anchor(lane xchain.CrossChainLane, version uint32) *TpBTA {
	return &TpBTA{
		PTCServiceID:           "committee",
		Lane:                   lane,
		Version:                version,
		PTCVerifyAnchorVersion: 1,
		BTASubjectVersion:      1,
	}
}

func newTestResolver(t *testing.T, anchors ...*TpBTA) *Resolver {
	r := NewResolver(NewIndex(), cache.NewTTLCache[ExactKey, *TpBTA](time.Minute), nil, nil)
	for _, a := range anchors {
		require.NoError(t, r.Register(a))
	}
	return r
}

// countingStore counts Versions calls to observe caching.
type countingStore struct {
	*Index
	versionCalls int
}

func (s *countingStore) Versions(lane xchain.CrossChainLane) ([]*TpBTA, error) {
	s.versionCalls++
	return s.Index.Versions(lane)
}

func TestResolveMatchedScopePrecedence(t *testing.T) {
	fullLane := xchain.NewLane("bank.fin", sender, "shop.retail", receiver)

	tests := []struct {
		name     string
		anchors  []*TpBTA
		query    xchain.CrossChainLane
		version  int64
		expected *TpBTA
	}{
		{
			name: "blockchain level wins over lane level",
			anchors: []*TpBTA{
				anchor(fullLane, 7),
				anchor(xchain.NewBlockchainLane("bank.fin"), 1),
			},
			query:    fullLane,
			version:  LatestVersion,
			expected: anchor(xchain.NewBlockchainLane("bank.fin"), 1),
		},
		{
			name: "channel level wins over lane level",
			anchors: []*TpBTA{
				anchor(fullLane, 3),
				anchor(xchain.NewChannelLane("bank.fin", "shop.retail"), 2),
			},
			query:    fullLane,
			version:  LatestVersion,
			expected: anchor(xchain.NewChannelLane("bank.fin", "shop.retail"), 2),
		},
		{
			name:     "lane level when nothing broader",
			anchors:  []*TpBTA{anchor(fullLane, 3), anchor(fullLane, 4)},
			query:    fullLane,
			version:  LatestVersion,
			expected: anchor(fullLane, 4),
		},
		{
			name:     "other receiver identity does not match",
			anchors:  []*TpBTA{anchor(xchain.NewLane("bank.fin", sender, "shop.retail", other), 1)},
			query:    fullLane,
			version:  LatestVersion,
			expected: nil,
		},
		{
			name:     "blockchain query ignores channel anchors",
			anchors:  []*TpBTA{anchor(xchain.NewChannelLane("bank.fin", "shop.retail"), 1)},
			query:    xchain.NewBlockchainLane("bank.fin"),
			version:  LatestVersion,
			expected: nil,
		},
		{
			name: "pinned version absent at a broad level falls through",
			anchors: []*TpBTA{
				anchor(xchain.NewBlockchainLane("bank.fin"), 1),
				anchor(fullLane, 2),
			},
			query:    fullLane,
			version:  2,
			expected: anchor(fullLane, 2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			r := newTestResolver(t, tt.anchors...)
			got, err := r.ResolveMatched(tt.query, tt.version)
			require.NoError(err)
			require.Equal(tt.expected, got)
		})
	}
}

func TestResolveExactVersionTieBreak(t *testing.T) {
	require := require.New(t)

	lane := xchain.NewLane("bank.fin", sender, "shop.retail", receiver)
	r := newTestResolver(t, anchor(lane, 1), anchor(lane, 5), anchor(lane, 2))

	got, err := r.ResolveExact(lane, LatestVersion)
	require.NoError(err)
	require.Equal(uint32(5), got.Version)

	got, err = r.ResolveExact(lane, 2)
	require.NoError(err)
	require.Equal(uint32(2), got.Version)

	got, err = r.ResolveExact(lane, 9)
	require.NoError(err)
	require.Nil(got)

	got, err = r.ResolveExact(lane.ChannelLevel(), LatestVersion)
	require.NoError(err)
	require.Nil(got, "exact resolution never falls back to broader scopes")
}

func TestResolveExactCache(t *testing.T) {
	require := require.New(t)

	lane := xchain.NewChannelLane("bank.fin", "shop.retail")
	store := &countingStore{Index: NewIndex()}
	registry := prometheus.NewRegistry()
	metrics := NewResolverMetrics(registry)
	r := NewResolver(store, cache.NewLRUCache[ExactKey, *TpBTA](16, time.Minute), nil, metrics)
	require.NoError(r.Register(anchor(lane, 1)))

	for range 3 {
		got, err := r.ResolveExact(lane, LatestVersion)
		require.NoError(err)
		require.Equal(uint32(1), got.Version)
	}
	require.Equal(1, store.versionCalls)
	require.InDelta(2, testutil.ToFloat64(metrics.cacheHitCount), 0)

	// Registering an upgrade drops the cached latest lookup.
	require.NoError(r.Register(anchor(lane, 2)))
	got, err := r.ResolveExact(lane, LatestVersion)
	require.NoError(err)
	require.Equal(uint32(2), got.Version)
	require.Equal(2, store.versionCalls)

	// Misses are not cached.
	for range 2 {
		got, err = r.ResolveExact(lane, 9)
		require.NoError(err)
		require.Nil(got)
	}
	require.Equal(4, store.versionCalls)
	require.InDelta(2, testutil.ToFloat64(metrics.resolutionCount.WithLabelValues("exact", "miss")), 0)
}

func TestResolveAllForDomain(t *testing.T) {
	retailLane := xchain.NewLane("bank.fin", sender, "shop.retail", receiver)
	dexLane := xchain.NewLane("bank.fin", sender, "dex.defi", receiver)
	dexLane2 := xchain.NewLane("bank.fin", sender, "dex.defi", other)
	retailChannel := xchain.NewChannelLane("bank.fin", "shop.retail")

	tests := []struct {
		name     string
		anchors  []*TpBTA
		expected []*TpBTA
	}{
		{
			name: "blockchain anchor supersedes everything",
			anchors: []*TpBTA{
				anchor(retailChannel, 4),
				anchor(xchain.NewBlockchainLane("bank.fin"), 1),
				anchor(xchain.NewBlockchainLane("bank.fin"), 3),
				anchor(dexLane, 1),
			},
			expected: []*TpBTA{anchor(xchain.NewBlockchainLane("bank.fin"), 3)},
		},
		{
			name: "lane anchors only for receivers without a channel anchor",
			anchors: []*TpBTA{
				anchor(retailChannel, 1),
				anchor(retailChannel, 2),
				anchor(retailLane, 9),
				anchor(dexLane, 1),
				anchor(dexLane, 2),
				anchor(dexLane2, 1),
				anchor(xchain.NewBlockchainLane("other.fin"), 1),
			},
			expected: []*TpBTA{
				anchor(retailChannel, 2),
				anchor(dexLane, 2),
				anchor(dexLane2, 1),
			},
		},
		{
			name:     "nothing registered",
			anchors:  []*TpBTA{anchor(xchain.NewBlockchainLane("other.fin"), 1)},
			expected: []*TpBTA{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			r := newTestResolver(t, tt.anchors...)
			got, err := r.ResolveAllForDomain("bank.fin")
			require.NoError(err)
			require.Equal(tt.expected, got)
		})
	}
}

func TestResolverRejectsInvalidLanes(t *testing.T) {
	require := require.New(t)

	r := newTestResolver(t)
	invalid := xchain.NewLane("bank.fin", sender, "", receiver)

	_, err := r.ResolveMatched(invalid, LatestVersion)
	require.ErrorIs(err, xchain.ErrInvalidLane)
	_, err = r.ResolveExact(invalid, LatestVersion)
	require.ErrorIs(err, xchain.ErrInvalidLane)
	require.ErrorIs(r.Register(anchor(invalid, 1)), xchain.ErrInvalidLane)
}

type failingStore struct{ Store }

var errStore = errors.New("store offline")

func (failingStore) Versions(xchain.CrossChainLane) ([]*TpBTA, error) { return nil, errStore }
func (failingStore) ListByDomain(string) ([]*TpBTA, error)            { return nil, errStore }

func TestResolverStoreErrors(t *testing.T) {
	require := require.New(t)

	r := NewResolver(failingStore{}, nil, nil, nil)
	_, err := r.ResolveMatched(xchain.NewBlockchainLane("bank.fin"), LatestVersion)
	require.ErrorIs(err, errStore)
	_, err = r.ResolveAllForDomain("bank.fin")
	require.ErrorIs(err, errStore)
}

func TestResolverHas(t *testing.T) {
	require := require.New(t)

	lane := xchain.NewChannelLane("bank.fin", "shop.retail")
	r := newTestResolver(t, anchor(lane, 3))
	ok, err := r.Has(lane, 3)
	require.NoError(err)
	require.True(ok)
	ok, err = r.Has(lane, 4)
	require.NoError(err)
	require.False(ok)
}

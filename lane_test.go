// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xchain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLaneScope(t *testing.T) {
	id := Identity{1}
	tests := []struct {
		name     string
		lane     CrossChainLane
		expected LaneScope
	}{
		{
			name:     "blockchain",
			lane:     NewBlockchainLane("bank.fin"),
			expected: ScopeBlockchain,
		},
		{
			name:     "channel",
			lane:     NewChannelLane("bank.fin", "shop.retail"),
			expected: ScopeChannel,
		},
		{
			name:     "lane",
			lane:     NewLane("bank.fin", id, "shop.retail", Identity{2}),
			expected: ScopeLane,
		},
		{
			name:     "identities without receiver domain",
			lane:     NewLane("bank.fin", id, "", Identity{2}),
			expected: ScopeInvalid,
		},
		{
			name:     "single identity",
			lane:     NewLane("bank.fin", id, "shop.retail", EmptyIdentity),
			expected: ScopeInvalid,
		},
		{
			name:     "no sender",
			lane:     NewChannelLane("", "shop.retail"),
			expected: ScopeInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.expected, tt.lane.Scope())
			if tt.expected == ScopeInvalid {
				require.ErrorIs(tt.lane.Validate(), ErrInvalidLane)
			} else {
				require.NoError(tt.lane.Validate())
			}
		})
	}
}

func TestLaneProjectionsAndKeys(t *testing.T) {
	require := require.New(t)

	lane := NewLane("bank.fin", Identity{1}, "shop.retail", Identity{2})
	require.Equal(NewBlockchainLane("bank.fin"), lane.BlockchainLevel())
	require.Equal(NewChannelLane("bank.fin", "shop.retail"), lane.ChannelLevel())
	require.NotEqual(lane.Key(), lane.ChannelLevel().Key())

	seen := map[CrossChainLane]int{lane: 1}
	require.Equal(1, seen[NewLane("bank.fin", Identity{1}, "shop.retail", Identity{2})])
	require.Zero(seen[lane.ChannelLevel()])
}

func TestNames(t *testing.T) {
	require := require.New(t)

	require.Equal("nif.knab", ReverseName("bank.fin"))
	for _, n := range []string{"\xff.fin", "b\u00e4nk.fin", ""} {
		require.Equal(n, ReverseName(ReverseName(n)))
	}
	require.NotEqual(ReverseName("\xff.fin"), ReverseName("\xfe.fin"))
	require.True(IsAncestorSpace("fin", "bank.fin"))
	require.True(IsAncestorSpace(RootDomainSpace, "fin"))
	require.False(IsAncestorSpace("in", "bank.fin"))
	require.False(IsAncestorSpace("fin", "fin"))
}

func TestIdentity(t *testing.T) {
	require := require.New(t)

	_, err := IdentityFromBytes(make([]byte, 20))
	require.ErrorIs(err, ErrInvalidIdentity)

	id, err := IdentityFromAddress([]byte{0xab, 0xcd})
	require.NoError(err)
	require.Equal(byte(0xab), id[30])
	require.Equal(byte(0xcd), id[31])

	parsed, err := IdentityFromHex("0xabcd")
	require.NoError(err)
	require.Equal(id, parsed)
	require.False(id.IsZero())
	require.True(EmptyIdentity.IsZero())
}

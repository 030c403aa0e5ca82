// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tpbta

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/tlv"
)

func TestTpBTARoundTrip(t *testing.T) {
	lanes := []xchain.CrossChainLane{
		xchain.NewBlockchainLane("bank.fin"),
		xchain.NewChannelLane("bank.fin", "shop.retail"),
		xchain.NewLane("bank.fin", sender, "shop.retail", receiver),
	}
	for _, lane := range lanes {
		t.Run(lane.Scope().String(), func(t *testing.T) {
			require := require.New(t)

			in := anchor(lane, 4)
			in.EndorseRoot = []byte{1, 2, 3}
			out, err := Decode(in.Encode())
			require.NoError(err)
			require.Equal(in, out)
			require.Equal(lane.Scope(), out.Scope())
		})
	}
}

func TestTpBTADecodeErrors(t *testing.T) {
	require := require.New(t)

	_, err := Decode([]byte{1, 2})
	require.ErrorIs(err, ErrMalformedTpBTA)

	noLane := tlv.New(tlv.Uint32(tagVersion, 1), tlv.String(tagPTCServiceID, "p")).Encode()
	_, err = Decode(noLane)
	require.ErrorIs(err, ErrMalformedTpBTA)

	badLane := tlv.New(
		tlv.String(tagSenderDomain, "bank.fin"),
		tlv.Bytes(tagSenderID, sender.Bytes()),
		tlv.Bytes(tagReceiverID, receiver.Bytes()),
	).Encode()
	_, err = DecodeLane(badLane)
	require.ErrorIs(err, ErrMalformedTpBTA)
	require.ErrorIs(err, xchain.ErrInvalidLane)
}

func TestIndexSnapshots(t *testing.T) {
	require := require.New(t)

	idx := NewIndex()
	lane := xchain.NewChannelLane("bank.fin", "shop.retail")

	var wg sync.WaitGroup
	for v := uint32(1); v <= 20; v++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = idx.Put(anchor(lane, v))
		}()
	}
	wg.Wait()

	versions, err := idx.Versions(lane)
	require.NoError(err)
	require.Len(versions, 20)

	require.NoError(idx.Put(anchor(xchain.NewBlockchainLane("bank.fin"), 1)))
	require.NoError(idx.Put(anchor(xchain.NewBlockchainLane("other.fin"), 1)))
	all, err := idx.ListByDomain("bank.fin")
	require.NoError(err)
	require.Len(all, 21)

	// Re-registering a version replaces it without duplicating the lane.
	replacement := anchor(lane, 3)
	replacement.PTCServiceID = "upgraded"
	require.NoError(idx.Put(replacement))
	all, err = idx.ListByDomain("bank.fin")
	require.NoError(err)
	require.Len(all, 21)
	ok, err := idx.Has(lane, 3)
	require.NoError(err)
	require.True(ok)
}

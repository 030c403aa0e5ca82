// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trust

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cert"
)

func TestBlockchainInfoFeatures(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	info := newInfo(t, f.bank, "fin", xchain.RootDomainSpace)
	require.Equal("bank.fin", info.Domain)

	added := info.AddFeatures(map[string]string{"a": "1", "b": "2"})
	require.Empty(info.Features)
	require.Equal(map[string]string{"a": "1", "b": "2"}, added.Features)

	removed := added.RemoveFeatures("a", "missing")
	require.Equal(map[string]string{"b": "2"}, removed.Features)
	require.Len(added.Features, 2)

	incoming := newInfo(t, f.bank, "fin")
	incoming.AMContract = "0xam"
	incoming.Features = map[string]string{"b": "3", "c": "4"}
	updated := removed.Update(incoming)
	require.Equal("0xam", updated.AMContract)
	require.Equal([]string{"fin"}, updated.DomainSpaceChain)
	require.Equal(map[string]string{"b": "3", "c": "4"}, updated.Features)

	withPrior := added.Update(incoming)
	require.Equal(map[string]string{"a": "1", "b": "3", "c": "4"}, withPrior.Features)
}

func TestNewBlockchainInfoRejectsDomainSpace(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	_, err := NewBlockchainInfo(f.fin.Cert, nil)
	require.ErrorIs(err, xchain.ErrInvalidDomain)
	_, err = NewBlockchainInfo(f.root.Cert, nil)
	require.ErrorIs(err, cert.ErrSubjectKindMismatch)
	_, err = NewBlockchainInfo(nil, nil)
	require.ErrorIs(err, xchain.ErrInvalidDomain)
}

func TestSortedChain(t *testing.T) {
	info := &BlockchainInfo{DomainSpaceChain: []string{"visa.card.fin", xchain.RootDomainSpace, "fin", "card.fin"}}
	require.Equal(t, []string{"fin", "card.fin", "visa.card.fin"}, info.SortedChain())
}

func TestTrustContentQueries(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	content := buildContent(t, f.spaces(), f.infos(t)...)

	require.Equal(4, content.Len())

	name, _, ok := content.ClosestDomainSpace("visa.card.fin")
	require.True(ok)
	require.Equal("card.fin", name)
	name, _, ok = content.ClosestDomainSpace("solo")
	require.True(ok)
	require.Equal(xchain.RootDomainSpace, name)

	trimmed := content.WithoutBlockchain("solo")
	require.Equal(3, trimmed.Len())
	require.Equal(4, content.Len())
}

func TestTrustContentMergeLaterWins(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	older := buildContent(t, f.spaces(), f.infos(t)...)
	replacement := newInfo(t, f.bank, "fin").AddFeatures(map[string]string{"v": "2"})
	newer := NewTrustContent().WithBlockchain(replacement)

	merged := older.Merge(newer)
	got, ok := merged.Blockchain("bank.fin")
	require.True(ok)
	require.Same(replacement, got)
	require.Equal(4, merged.Len())
	require.Len(merged.DomainSpaces(), 4)
}

func TestHolderCopyOnWrite(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	h := NewHolder(nil)
	before := h.Load()

	infos := f.infos(t)
	errs := make([]error, len(infos))
	var wg sync.WaitGroup
	for i, info := range infos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = h.Update(func(c *TrustContent) (*TrustContent, error) {
				return c.WithBlockchain(info), nil
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(err)
	}

	require.Zero(before.Len())
	require.Equal(4, h.Load().Len())
	require.True(h.Trusted("bank.fin"))

	errStop := errors.New("stop")
	current := h.Load()
	require.ErrorIs(h.Update(func(*TrustContent) (*TrustContent, error) {
		return nil, errStop
	}), errStop)
	require.Same(current, h.Load())

	h.Replace(NewTrustContent())
	require.False(h.Trusted("bank.fin"))
}

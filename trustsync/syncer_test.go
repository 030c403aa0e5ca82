// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trustsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cert"
	"github.com/luxfi/xchain/cert/certtest"
	"github.com/luxfi/xchain/trust"
)

var errUnavailable = errors.New("source unavailable")

// memorySource serves certificates from maps. The first flaky[name] lookups
// of a name fail with errUnavailable.
type memorySource struct {
	mu         sync.Mutex
	domains    map[string]*cert.Certificate
	spaces     map[string]*cert.Certificate
	chains     map[string][]string
	flaky      map[string]int
	spaceLoads map[string]int
}

func newMemorySource() *memorySource {
	return &memorySource{
		domains:    make(map[string]*cert.Certificate),
		spaces:     make(map[string]*cert.Certificate),
		chains:     make(map[string][]string),
		flaky:      make(map[string]int),
		spaceLoads: make(map[string]int),
	}
}

func (s *memorySource) fail(name string) bool {
	if s.flaky[name] > 0 {
		s.flaky[name]--
		return true
	}
	return false
}

func (s *memorySource) GetDomainCert(_ context.Context, domain string) (*cert.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail(domain) {
		return nil, errUnavailable
	}
	c, ok := s.domains[domain]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *memorySource) GetDomainSpaceCert(_ context.Context, name string) (*cert.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaceLoads[name]++
	c, ok := s.spaces[name]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *memorySource) GetDomainSpaceChain(_ context.Context, domain string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chain, ok := s.chains[domain]
	if !ok {
		return nil, ErrNotFound
	}
	return chain, nil
}

type fixture struct {
	root, fin, card *certtest.Authority
	source          *memorySource
}

// newFixture serves ROOT -> fin -> card.fin with domains bank.fin and
// visa.card.fin.
func newFixture(t *testing.T) *fixture {
	f := &fixture{root: certtest.NewRoot(t, "bcdns"), source: newMemorySource()}
	f.fin = f.root.IssueDomainSpace(t, "fin")
	f.card = f.fin.IssueDomainSpace(t, "card.fin")
	bank := f.fin.IssueDomain(t, "bank.fin")
	visa := f.card.IssueDomain(t, "visa.card.fin")

	f.source.spaces[xchain.RootDomainSpace] = f.root.Cert
	f.source.spaces["fin"] = f.fin.Cert
	f.source.spaces["card.fin"] = f.card.Cert
	f.source.domains["bank.fin"] = bank.Cert
	f.source.domains["visa.card.fin"] = visa.Cert
	f.source.chains["bank.fin"] = []string{xchain.RootDomainSpace, "fin"}
	f.source.chains["visa.card.fin"] = []string{"card.fin", "fin", xchain.RootDomainSpace}
	return f
}

func (f *fixture) syncer(holder *trust.Holder) *Syncer {
	return f.syncerWith(holder, 2)
}

func (f *fixture) syncerWith(holder *trust.Holder, concurrency int) *Syncer {
	return NewSyncer(f.source, trust.NewValidator(nil, nil), holder, Options{
		Concurrency:  concurrency,
		RetryTimeout: 2 * time.Second,
	}, nil)
}

func TestBuild(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	f.source.flaky["bank.fin"] = 2

	s := f.syncerWith(trust.NewHolder(nil), 1)
	content, err := s.Build(context.Background(), []string{"bank.fin", "visa.card.fin", "ghost"})
	require.ErrorIs(err, ErrNotFound)
	require.Len(multierr.Errors(err), 1)
	require.ElementsMatch([]string{"bank.fin", "visa.card.fin"}, content.Domains())
	require.ElementsMatch([]string{xchain.RootDomainSpace, "fin", "card.fin"}, content.DomainSpaces())

	for name, loads := range f.source.spaceLoads {
		require.Equal(1, loads, "domain space %s loaded more than once", name)
	}
}

func TestBuildMissingDomainSpace(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	delete(f.source.spaces, "card.fin")

	content, err := f.syncer(trust.NewHolder(nil)).Build(context.Background(), []string{"bank.fin", "visa.card.fin"})
	require.ErrorIs(err, ErrNotFound)
	require.Equal([]string{"bank.fin"}, content.Domains())
}

func TestBuildCanceled(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	f.source.flaky["bank.fin"] = 1_000_000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	content, err := f.syncer(trust.NewHolder(nil)).Build(ctx, []string{"bank.fin"})
	require.ErrorIs(err, context.Canceled)
	require.Nil(content)
}

func TestSync(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	holder := trust.NewHolder(nil)
	s := f.syncer(holder)

	result, err := s.Sync(context.Background(), f.root.Cert, []string{"bank.fin", "visa.card.fin"})
	require.NoError(err)
	require.Equal([]string{"bank.fin", "visa.card.fin"}, result.Domains())
	require.True(holder.Trusted("bank.fin"))
	require.True(holder.Trusted("visa.card.fin"))

	// A tampered intermediate drops its subtree on the next sync only.
	f.source.spaces["card.fin"] = certtest.TamperSignature(f.card.Cert)
	fresh := trust.NewHolder(nil)
	result, err = f.syncer(fresh).Sync(context.Background(), f.root.Cert, []string{"bank.fin", "visa.card.fin"})
	require.NoError(err)
	require.Equal([]string{"bank.fin"}, result.Domains())
	require.False(fresh.Trusted("visa.card.fin"))
}

func TestSyncForeignRoot(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	holder := trust.NewHolder(nil)
	foreign := certtest.NewRoot(t, "other-bcdns")

	_, err := f.syncer(holder).Sync(context.Background(), foreign.Cert, []string{"bank.fin"})
	require.ErrorIs(err, trust.ErrRootMismatch)
	require.Zero(holder.Load().Len())
}

func TestMergeRemoteKeepsLocalEntries(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	holder := trust.NewHolder(nil)
	s := f.syncer(holder)

	_, err := s.Sync(context.Background(), f.root.Cert, []string{"bank.fin"})
	require.NoError(err)

	remote, err := s.Build(context.Background(), []string{"visa.card.fin"})
	require.NoError(err)
	_, err = s.MergeRemote(f.root.Cert, remote)
	require.NoError(err)

	require.ElementsMatch([]string{"bank.fin", "visa.card.fin"}, holder.Load().Domains())
}

func TestSyncEvictsRejectedDomains(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	holder := trust.NewHolder(nil)
	s := f.syncer(holder)

	_, err := s.Sync(context.Background(), f.root.Cert, []string{"bank.fin", "visa.card.fin"})
	require.NoError(err)
	require.True(holder.Trusted("visa.card.fin"))

	// Remote content never evicts.
	f.source.spaces["card.fin"] = certtest.TamperSignature(f.card.Cert)
	remote, err := s.Build(context.Background(), []string{"visa.card.fin"})
	require.NoError(err)
	result, err := s.MergeRemote(f.root.Cert, remote)
	require.NoError(err)
	require.Empty(result.Domains())
	require.True(holder.Trusted("visa.card.fin"))

	// An unreachable domain is kept.
	delete(f.source.domains, "bank.fin")
	result, err = s.Sync(context.Background(), f.root.Cert, []string{"bank.fin", "visa.card.fin"})
	require.ErrorIs(err, ErrNotFound)
	require.Empty(result.Domains())
	require.True(holder.Trusted("bank.fin"))
	require.False(holder.Trusted("visa.card.fin"))
}

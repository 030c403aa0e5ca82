// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tpbta

import (
	"maps"
	"sync"
	"sync/atomic"

	"github.com/luxfi/xchain"
)

// Store persists TpBTAs. Versions and ListByDomain return every stored
// version; the resolver applies the selection rules.
type Store interface {
	Put(t *TpBTA) error
	Has(lane xchain.CrossChainLane, version uint32) (bool, error)
	// Versions lists the TpBTAs registered for exactly lane.
	Versions(lane xchain.CrossChainLane) ([]*TpBTA, error)
	// ListByDomain lists the TpBTAs of every lane whose sender is domain.
	ListByDomain(senderDomain string) ([]*TpBTA, error)
}

type indexSnapshot struct {
	byLane   map[xchain.CrossChainLane]map[uint32]*TpBTA
	byDomain map[string][]xchain.CrossChainLane
}

// Index is an in-memory Store. Readers see immutable snapshots; writers are
// serialized and publish a new snapshot per Put.
type Index struct {
	snapshot atomic.Pointer[indexSnapshot]
	writeMu  sync.Mutex
}

var _ Store = (*Index)(nil)

func NewIndex() *Index {
	idx := &Index{}
	idx.snapshot.Store(&indexSnapshot{
		byLane:   map[xchain.CrossChainLane]map[uint32]*TpBTA{},
		byDomain: map[string][]xchain.CrossChainLane{},
	})
	return idx
}

func (i *Index) Put(t *TpBTA) error {
	if err := t.Lane.Validate(); err != nil {
		return err
	}
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	cur := i.snapshot.Load()
	next := &indexSnapshot{
		byLane:   maps.Clone(cur.byLane),
		byDomain: maps.Clone(cur.byDomain),
	}
	versions, exists := cur.byLane[t.Lane]
	versions = maps.Clone(versions)
	if versions == nil {
		versions = map[uint32]*TpBTA{}
	}
	versions[t.Version] = t
	next.byLane[t.Lane] = versions
	if !exists {
		lanes := cur.byDomain[t.Lane.SenderDomain]
		next.byDomain[t.Lane.SenderDomain] = append(lanes[:len(lanes):len(lanes)], t.Lane)
	}
	i.snapshot.Store(next)
	return nil
}

func (i *Index) Has(lane xchain.CrossChainLane, version uint32) (bool, error) {
	_, ok := i.snapshot.Load().byLane[lane][version]
	return ok, nil
}

func (i *Index) Versions(lane xchain.CrossChainLane) ([]*TpBTA, error) {
	versions := i.snapshot.Load().byLane[lane]
	out := make([]*TpBTA, 0, len(versions))
	for _, t := range versions {
		out = append(out, t)
	}
	return out, nil
}

func (i *Index) ListByDomain(senderDomain string) ([]*TpBTA, error) {
	snap := i.snapshot.Load()
	var out []*TpBTA
	for _, lane := range snap.byDomain[senderDomain] {
		for _, t := range snap.byLane[lane] {
			out = append(out, t)
		}
	}
	return out, nil
}

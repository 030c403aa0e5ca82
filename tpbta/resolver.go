// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tpbta

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cache"
)

// LatestVersion selects the highest registered version.
const LatestVersion int64 = -1

// ExactKey keys the exact-lookup cache.
type ExactKey struct {
	Lane    xchain.CrossChainLane
	Version int64
}

func (k ExactKey) String() string {
	return fmt.Sprintf("%s@%d", k.Lane.Key(), k.Version)
}

// Resolver finds the TpBTA governing a lane. A nil TpBTA with a nil error
// means no anchor is registered; errors are reserved for invalid lanes and
// store failures.
type Resolver struct {
	store   Store
	cache   cache.Cache[ExactKey, *TpBTA]
	log     *zap.Logger
	metrics *ResolverMetrics
}

// NewResolver builds a resolver over store. A nil cache disables caching.
func NewResolver(store Store, c cache.Cache[ExactKey, *TpBTA], log *zap.Logger, metrics *ResolverMetrics) *Resolver {
	if c == nil {
		c = cache.Noop[ExactKey, *TpBTA]{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{store: store, cache: c, log: log, metrics: metrics}
}

// ResolveMatched searches the blockchain, channel and lane levels of lane in
// that order and returns the anchor of the first level that has one. A
// blockchain-level anchor therefore governs every lane of its sender, even
// lanes with their own anchor.
func (r *Resolver) ResolveMatched(lane xchain.CrossChainLane, version int64) (*TpBTA, error) {
	if err := lane.Validate(); err != nil {
		return nil, err
	}
	levels := []xchain.CrossChainLane{lane.BlockchainLevel()}
	if lane.ReceiverDomain != "" {
		levels = append(levels, lane.ChannelLevel())
	}
	if lane.Scope() == xchain.ScopeLane {
		levels = append(levels, lane)
	}
	for _, level := range levels {
		t, err := r.exact(level, version)
		if err != nil {
			return nil, err
		}
		if t != nil {
			r.log.Debug(
				"Resolved matched tpbta",
				zap.String("lane", lane.Key()),
				zap.Stringer("scope", level.Scope()),
				zap.Uint32("version", t.Version),
			)
			r.metrics.resolved("matched", true)
			return t, nil
		}
	}
	r.metrics.resolved("matched", false)
	return nil, nil
}

// ResolveExact looks up lane verbatim, without falling back to broader scopes.
func (r *Resolver) ResolveExact(lane xchain.CrossChainLane, version int64) (*TpBTA, error) {
	if err := lane.Validate(); err != nil {
		return nil, err
	}
	t, err := r.exact(lane, version)
	if err != nil {
		return nil, err
	}
	r.metrics.resolved("exact", t != nil)
	return t, nil
}

func (r *Resolver) exact(lane xchain.CrossChainLane, version int64) (*TpBTA, error) {
	key := ExactKey{Lane: lane, Version: version}
	if t, ok := r.cache.Get(key); ok {
		r.metrics.cacheHit()
		return t, nil
	}
	versions, err := r.store.Versions(lane)
	if err != nil {
		return nil, fmt.Errorf("failed to load tpbta versions of %s: %w", lane.Key(), err)
	}
	t := pick(versions, version)
	if t != nil {
		r.cache.Put(key, t)
	}
	return t, nil
}

func pick(versions []*TpBTA, version int64) *TpBTA {
	var best *TpBTA
	for _, t := range versions {
		if version != LatestVersion {
			if int64(t.Version) == version {
				return t
			}
			continue
		}
		if best == nil || t.Version > best.Version {
			best = t
		}
	}
	return best
}

// ResolveAllForDomain returns the current anchors covering every lane sent
// from domain. A blockchain-level anchor supersedes everything else.
// Otherwise each receiver domain contributes its channel-level anchor, and
// lane-level anchors are returned only for receivers without one.
func (r *Resolver) ResolveAllForDomain(domain string) ([]*TpBTA, error) {
	all, err := r.store.ListByDomain(domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list tpbtas of %s: %w", domain, err)
	}

	var (
		blockchain *TpBTA
		channels   = map[string]*TpBTA{}
		lanes      = map[xchain.CrossChainLane]*TpBTA{}
	)
	for _, t := range all {
		if t.Lane.SenderDomain != domain {
			continue
		}
		switch t.Scope() {
		case xchain.ScopeBlockchain:
			blockchain = higher(blockchain, t)
		case xchain.ScopeChannel:
			channels[t.Lane.ReceiverDomain] = higher(channels[t.Lane.ReceiverDomain], t)
		case xchain.ScopeLane:
			lanes[t.Lane] = higher(lanes[t.Lane], t)
		}
	}
	if blockchain != nil {
		r.metrics.resolved("domain", true)
		return []*TpBTA{blockchain}, nil
	}

	out := make([]*TpBTA, 0, len(channels)+len(lanes))
	for _, t := range channels {
		out = append(out, t)
	}
	for lane, t := range lanes {
		if _, covered := channels[lane.ReceiverDomain]; !covered {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Lane.Key() < out[j].Lane.Key()
	})
	r.metrics.resolved("domain", len(out) > 0)
	return out, nil
}

func higher(cur, t *TpBTA) *TpBTA {
	if cur == nil || t.Version > cur.Version {
		return t
	}
	return cur
}

// Register stores t and drops the cached lookups it may change.
func (r *Resolver) Register(t *TpBTA) error {
	if err := t.Lane.Validate(); err != nil {
		return err
	}
	if err := r.store.Put(t); err != nil {
		return fmt.Errorf("failed to store tpbta %s: %w", t, err)
	}
	r.cache.Invalidate(ExactKey{Lane: t.Lane, Version: LatestVersion})
	r.cache.Invalidate(ExactKey{Lane: t.Lane, Version: int64(t.Version)})
	r.log.Info(
		"Registered tpbta",
		zap.String("lane", t.Lane.Key()),
		zap.Uint32("version", t.Version),
		zap.String("ptcServiceID", t.PTCServiceID),
	)
	return nil
}

func (r *Resolver) Has(lane xchain.CrossChainLane, version uint32) (bool, error) {
	return r.store.Has(lane, version)
}

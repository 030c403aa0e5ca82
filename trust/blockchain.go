// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trust

import (
	"fmt"
	"maps"
	"sort"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cert"
)

// BlockchainInfo is everything known about one registered domain.
//
// A BlockchainInfo reachable from a TrustContent is never modified. The
// mutators return updated copies.
type BlockchainInfo struct {
	Domain     string
	DomainCert *cert.Certificate
	// DomainSpaceChain lists the ancestor domain spaces of Domain, in any order.
	DomainSpaceChain []string
	PTCCert          *cert.Certificate
	TpBTA            []byte
	AMContract       string
	Features         map[string]string
}

// NewBlockchainInfo registers a domain from its certificate and ancestor chain.
func NewBlockchainInfo(domainCert *cert.Certificate, chain []string) (*BlockchainInfo, error) {
	if domainCert == nil {
		return nil, fmt.Errorf("%w: nil domain certificate", xchain.ErrInvalidDomain)
	}
	subject, err := domainCert.DomainNameSubject()
	if err != nil {
		return nil, err
	}
	if subject.IsDomainSpace() {
		return nil, fmt.Errorf("%w: %s is a domain space", xchain.ErrInvalidDomain, subject.Name())
	}
	return &BlockchainInfo{
		Domain:           subject.Name(),
		DomainCert:       domainCert,
		DomainSpaceChain: append([]string(nil), chain...),
		Features:         map[string]string{},
	}, nil
}

func (b *BlockchainInfo) Clone() *BlockchainInfo {
	out := *b
	out.DomainSpaceChain = append([]string(nil), b.DomainSpaceChain...)
	out.TpBTA = append([]byte(nil), b.TpBTA...)
	out.Features = maps.Clone(b.Features)
	if out.Features == nil {
		out.Features = map[string]string{}
	}
	return &out
}

// AddFeatures returns a copy with features merged in.
func (b *BlockchainInfo) AddFeatures(features map[string]string) *BlockchainInfo {
	out := b.Clone()
	maps.Copy(out.Features, features)
	return out
}

// RemoveFeatures returns a copy without the named features.
func (b *BlockchainInfo) RemoveFeatures(keys ...string) *BlockchainInfo {
	out := b.Clone()
	for _, k := range keys {
		delete(out.Features, k)
	}
	return out
}

// Update returns incoming's scalar fields with both feature maps merged.
// Features of incoming win on collision.
func (b *BlockchainInfo) Update(incoming *BlockchainInfo) *BlockchainInfo {
	out := incoming.Clone()
	merged := maps.Clone(b.Features)
	if merged == nil {
		merged = map[string]string{}
	}
	maps.Copy(merged, incoming.Features)
	out.Features = merged
	return out
}

// SortedChain returns the ancestor chain root-first, without ROOT.
// Sorting by reversed name puts every domain space before its descendants.
func (b *BlockchainInfo) SortedChain() []string {
	out := make([]string, 0, len(b.DomainSpaceChain))
	for _, name := range b.DomainSpaceChain {
		if name != xchain.RootDomainSpace {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return xchain.ReverseName(out[i]) < xchain.ReverseName(out[j])
	})
	return out
}

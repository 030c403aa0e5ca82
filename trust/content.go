// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trust

import (
	"sync"
	"sync/atomic"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cert"
	"github.com/luxfi/xchain/trie"
)

// TrustContent is an immutable snapshot of registered blockchains and
// domain-space certificates, both indexed by reversed name.
type TrustContent struct {
	blockchains  *trie.Store[*BlockchainInfo]
	domainSpaces *trie.Store[*cert.Certificate]
}

func NewTrustContent() *TrustContent {
	return &TrustContent{
		blockchains:  trie.New[*BlockchainInfo](),
		domainSpaces: trie.New[*cert.Certificate](),
	}
}

func (c *TrustContent) WithBlockchain(info *BlockchainInfo) *TrustContent {
	return &TrustContent{
		blockchains:  c.blockchains.Insert(info.Domain, info),
		domainSpaces: c.domainSpaces,
	}
}

func (c *TrustContent) WithoutBlockchain(domain string) *TrustContent {
	return &TrustContent{
		blockchains:  c.blockchains.Delete(domain),
		domainSpaces: c.domainSpaces,
	}
}

// WithDomainSpaceCert stores a domain-space or trust root certificate under
// the name its subject binds.
func (c *TrustContent) WithDomainSpaceCert(dsCert *cert.Certificate) (*TrustContent, error) {
	subject, err := dsCert.Subject()
	if err != nil {
		return nil, err
	}
	return &TrustContent{
		blockchains:  c.blockchains,
		domainSpaces: c.domainSpaces.Insert(subject.Name(), dsCert),
	}, nil
}

func (c *TrustContent) Blockchain(domain string) (*BlockchainInfo, bool) {
	return c.blockchains.Get(domain)
}

func (c *TrustContent) DomainSpaceCert(name string) (*cert.Certificate, bool) {
	return c.domainSpaces.Get(name)
}

func (c *TrustContent) RootCertificate() (*cert.Certificate, bool) {
	return c.domainSpaces.Get(xchain.RootDomainSpace)
}

// ClosestDomainSpace returns the deepest stored domain space above domain.
func (c *TrustContent) ClosestDomainSpace(domain string) (string, *cert.Certificate, bool) {
	return c.domainSpaces.ClosestAncestor(domain)
}

func (c *TrustContent) Domains() []string {
	return c.blockchains.Names()
}

func (c *TrustContent) DomainSpaces() []string {
	return c.domainSpaces.Names()
}

func (c *TrustContent) Len() int {
	return c.blockchains.Len()
}

// Merge returns the union of both snapshots. Entries of other win.
func (c *TrustContent) Merge(other *TrustContent) *TrustContent {
	if other == nil {
		return c
	}
	return &TrustContent{
		blockchains:  c.blockchains.Merge(other.blockchains),
		domainSpaces: c.domainSpaces.Merge(other.domainSpaces),
	}
}

func (c *TrustContent) walkBlockchains(fn func(info *BlockchainInfo)) {
	c.blockchains.Walk(func(_ string, info *BlockchainInfo) bool {
		fn(info)
		return true
	})
}

// Holder publishes TrustContent snapshots to concurrent readers. Readers
// never block; writers are serialized and swap in a new snapshot.
type Holder struct {
	current atomic.Pointer[TrustContent]
	writeMu sync.Mutex
}

func NewHolder(initial *TrustContent) *Holder {
	if initial == nil {
		initial = NewTrustContent()
	}
	h := &Holder{}
	h.current.Store(initial)
	return h
}

func (h *Holder) Load() *TrustContent {
	return h.current.Load()
}

// Update applies fn to the current snapshot and publishes the result. A nil
// result or an error leaves the current snapshot in place.
func (h *Holder) Update(fn func(*TrustContent) (*TrustContent, error)) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	next, err := fn(h.current.Load())
	if err != nil {
		return err
	}
	if next != nil {
		h.current.Store(next)
	}
	return nil
}

func (h *Holder) Replace(next *TrustContent) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.current.Store(next)
}

// Trusted reports whether domain is registered in the current snapshot.
func (h *Holder) Trusted(domain string) bool {
	_, ok := h.Load().Blockchain(domain)
	return ok
}

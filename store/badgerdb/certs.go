// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cert"
)

// maxChainDepth bounds the parent walk of GetDomainSpaceChain.
const maxChainDepth = 32

var ErrBrokenChain = errors.New("broken domain space chain")

// PutDomainCert stores a leaf domain certificate under its domain name.
func (s *Store) PutDomainCert(c *cert.Certificate) error {
	subject, err := c.DomainNameSubject()
	if err != nil {
		return err
	}
	if subject.IsDomainSpace() {
		return fmt.Errorf("%w: %s is a domain space", xchain.ErrInvalidDomain, subject.DomainName)
	}
	return s.putCert(key(keyDomainCert, subject.DomainName), c)
}

// PutDomainSpaceCert stores a domain-space or trust root certificate under
// the name its subject binds.
func (s *Store) PutDomainSpaceCert(c *cert.Certificate) error {
	subject, err := c.Subject()
	if err != nil {
		return err
	}
	if dn, ok := subject.(*cert.DomainNameSubject); ok && !dn.IsDomainSpace() {
		return fmt.Errorf("%w: %s is not a domain space", xchain.ErrInvalidDomain, dn.DomainName)
	}
	if _, ok := subject.(*cert.TrustRootSubject); !ok && c.Type != cert.TypeDomainName {
		return fmt.Errorf("%w: %s certificate", cert.ErrSubjectKindMismatch, c.Type)
	}
	return s.putCert(key(keyDomainSpaceCert, subject.Name()), c)
}

func (s *Store) putCert(k []byte, c *cert.Certificate) error {
	if err := s.set(k, c.Encode()); err != nil {
		return err
	}
	s.certs.Invalidate(string(k))
	s.log.Debug("Stored certificate", zap.String("id", c.ID), zap.Stringer("type", c.Type))
	return nil
}

func (s *Store) GetDomainCert(_ context.Context, domain string) (*cert.Certificate, error) {
	return s.getCert(key(keyDomainCert, domain))
}

func (s *Store) GetDomainSpaceCert(_ context.Context, name string) (*cert.Certificate, error) {
	return s.getCert(key(keyDomainSpaceCert, name))
}

func (s *Store) getCert(k []byte) (*cert.Certificate, error) {
	return s.certs.Fetch(string(k), func(string) (*cert.Certificate, error) {
		raw, err := s.get(k)
		if err != nil {
			return nil, err
		}
		return cert.Decode(raw)
	})
}

// GetDomainSpaceChain follows parent domain spaces from domain up to ROOT
// and returns them leaf to root.
func (s *Store) GetDomainSpaceChain(ctx context.Context, domain string) ([]string, error) {
	c, err := s.GetDomainCert(ctx, domain)
	if err != nil {
		return nil, err
	}
	subject, err := c.DomainNameSubject()
	if err != nil {
		return nil, err
	}

	var chain []string
	parent := subject.ParentDomainSpace
	for len(chain) < maxChainDepth {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chain = append(chain, parent)
		if parent == xchain.RootDomainSpace {
			return chain, nil
		}
		spaceCert, err := s.GetDomainSpaceCert(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBrokenChain, parent, err)
		}
		spaceSubject, err := spaceCert.DomainNameSubject()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBrokenChain, parent, err)
		}
		parent = spaceSubject.ParentDomainSpace
	}
	return nil, fmt.Errorf("%w: %s is deeper than %d", ErrBrokenChain, domain, maxChainDepth)
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trustsync builds trust content from a certificate source,
// validates it against the local root and merges the result into the
// published snapshot.
package trustsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/xchain/cache"
	"github.com/luxfi/xchain/cert"
	"github.com/luxfi/xchain/trust"
	"github.com/luxfi/xchain/utils"
)

const (
	DefaultConcurrency  = 8
	DefaultRetryTimeout = 10 * time.Second
)

var ErrNotFound = errors.New("certificate not found")

// CertificateSource serves certificates from a BCDNS or a peer relayer.
// Misses are reported with ErrNotFound.
type CertificateSource interface {
	GetDomainCert(ctx context.Context, domain string) (*cert.Certificate, error)
	GetDomainSpaceCert(ctx context.Context, name string) (*cert.Certificate, error)
	// GetDomainSpaceChain returns the ancestor domain-spaces of domain in
	// any order.
	GetDomainSpaceChain(ctx context.Context, domain string) ([]string, error)
}

type Options struct {
	Concurrency  int
	RetryTimeout time.Duration
}

type Syncer struct {
	source    CertificateSource
	validator *trust.Validator
	holder    *trust.Holder
	opts      Options
	log       *zap.Logger
}

func NewSyncer(
	source CertificateSource,
	validator *trust.Validator,
	holder *trust.Holder,
	opts Options,
	log *zap.Logger,
) *Syncer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.RetryTimeout <= 0 {
		opts.RetryTimeout = DefaultRetryTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{
		source:    source,
		validator: validator,
		holder:    holder,
		opts:      opts,
		log:       log,
	}
}

// Build fetches the certificates of domains and of every domain-space on
// their chains. Domains that cannot be fetched are left out and their errors
// combined into the returned error; the content of the rest is still
// returned. Only a done ctx makes Build return no content.
func (s *Syncer) Build(ctx context.Context, domains []string) (*trust.TrustContent, error) {
	// Domain-spaces are shared between many domains; load each once per build.
	spaces := cache.NewTTLCache[string, *cert.Certificate](s.opts.RetryTimeout)

	var (
		mu      sync.Mutex
		infos   = make([]*trust.BlockchainInfo, 0, len(domains))
		spaceBy = make(map[string]*cert.Certificate)
		errs    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, domain := range domains {
		g.Go(func() error {
			info, chainCerts, err := s.fetchDomain(gctx, domain, spaces)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.log.Warn(
					"Skipping domain",
					zap.String("domain", domain),
					zap.Error(err),
				)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("domain %s: %w", domain, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			infos = append(infos, info)
			for name, c := range chainCerts {
				spaceBy[name] = c
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	content := trust.NewTrustContent()
	for _, c := range spaceBy {
		next, err := content.WithDomainSpaceCert(c)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		content = next
	}
	for _, info := range infos {
		content = content.WithBlockchain(info)
	}
	return content, errs
}

func (s *Syncer) fetchDomain(
	ctx context.Context,
	domain string,
	spaces *cache.TTLCache[string, *cert.Certificate],
) (*trust.BlockchainInfo, map[string]*cert.Certificate, error) {
	var domainCert *cert.Certificate
	err := s.retry(ctx, "get domain cert "+domain, func() (err error) {
		domainCert, err = s.source.GetDomainCert(ctx, domain)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var chain []string
	err = s.retry(ctx, "get domain space chain "+domain, func() (err error) {
		chain, err = s.source.GetDomainSpaceChain(ctx, domain)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	info, err := trust.NewBlockchainInfo(domainCert, chain)
	if err != nil {
		return nil, nil, err
	}

	certs := make(map[string]*cert.Certificate, len(chain))
	for _, name := range chain {
		c, err := spaces.Fetch(name, func(name string) (*cert.Certificate, error) {
			var c *cert.Certificate
			err := s.retry(ctx, "get domain space cert "+name, func() (err error) {
				c, err = s.source.GetDomainSpaceCert(ctx, name)
				return err
			})
			return c, err
		}, false)
		if err != nil {
			return nil, nil, fmt.Errorf("domain space %s: %w", name, err)
		}
		certs[name] = c
	}
	return info, certs, nil
}

// retry stops at the first ErrNotFound.
func (s *Syncer) retry(ctx context.Context, desc string, op func() error) error {
	return utils.WithRetriesTimeout(ctx, s.log, func() error {
		err := op()
		if errors.Is(err, ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, s.opts.RetryTimeout, desc)
}

// Sync builds trust content for domains, validates it against localRoot and
// merges the validated part into the holder. A built domain that fails
// validation is removed from the holder; a domain that could not be fetched
// is left as it is. Per-domain fetch errors are returned alongside the
// result; a root mismatch aborts without touching the holder.
func (s *Syncer) Sync(ctx context.Context, localRoot *cert.Certificate, domains []string) (*trust.ValidationResult, error) {
	content, fetchErr := s.Build(ctx, domains)
	if content == nil {
		return nil, fetchErr
	}
	result, err := s.merge(localRoot, content, true)
	if err != nil {
		return nil, err
	}
	return result, fetchErr
}

// MergeRemote validates remote content, for example content received from a
// peer relayer, and merges what validates into the holder. Entries of remote
// that fail validation never remove local entries.
func (s *Syncer) MergeRemote(localRoot *cert.Certificate, remote *trust.TrustContent) (*trust.ValidationResult, error) {
	return s.merge(localRoot, remote, false)
}

func (s *Syncer) merge(localRoot *cert.Certificate, content *trust.TrustContent, evict bool) (*trust.ValidationResult, error) {
	result, err := s.validator.Validate(localRoot, content)
	if err != nil {
		return nil, err
	}
	validated := result.Content()

	var rejected []string
	if evict {
		for _, domain := range content.Domains() {
			if !result.Trusted(domain) {
				rejected = append(rejected, domain)
			}
		}
	}
	err = s.holder.Update(func(current *trust.TrustContent) (*trust.TrustContent, error) {
		next := current.Merge(validated)
		for _, domain := range rejected {
			next = next.WithoutBlockchain(domain)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(
		"Merged trust content",
		zap.Int("domains", len(result.Domains())),
		zap.Int("rejected", content.Len()-len(result.Domains())),
		zap.Strings("evicted", rejected),
	)
	return result, nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trust

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cert"
)

var (
	// Fatal for a whole validation call.
	ErrNotRootCertificate = errors.New("not a trust root certificate")
	ErrMissingRoot        = errors.New("trust content has no root certificate")
	ErrRootMismatch       = errors.New("root owner mismatch")

	// Per-entry failures. These never escape Validate.
	ErrMissingDomainSpace = errors.New("missing domain space certificate")
	ErrNotAncestor        = errors.New("domain space is not an ancestor")
	ErrNameMismatch       = errors.New("certificate subject name mismatch")
	ErrIssuerMismatch     = errors.New("certificate issuer mismatch")
	ErrParentMismatch     = errors.New("declared parent domain space mismatch")
	ErrNameTypeMismatch   = errors.New("unexpected domain name type")
	ErrUntrustedPTC       = errors.New("untrusted ptc certificate")
)

// ValidationResult holds the entries that chain up to the local root.
// Anything absent from it is untrusted.
type ValidationResult struct {
	Blockchains  map[string]*BlockchainInfo
	DomainSpaces map[string]*cert.Certificate
}

func (r *ValidationResult) Trusted(domain string) bool {
	_, ok := r.Blockchains[domain]
	return ok
}

func (r *ValidationResult) Domains() []string {
	out := make([]string, 0, len(r.Blockchains))
	for d := range r.Blockchains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Content converts the result into a snapshot that can be merged into a
// Holder.
func (r *ValidationResult) Content() *TrustContent {
	c := NewTrustContent()
	for _, info := range r.Blockchains {
		c = c.WithBlockchain(info)
	}
	for name, dsCert := range r.DomainSpaces {
		c.domainSpaces = c.domainSpaces.Insert(name, dsCert)
	}
	return c
}

// Validator checks domain certificate chains against a local trust root.
type Validator struct {
	log     *zap.Logger
	metrics *ValidatorMetrics
}

func NewValidator(log *zap.Logger, metrics *ValidatorMetrics) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{log: log, metrics: metrics}
}

type validatedSpace struct {
	cert    *cert.Certificate
	subject cert.CredentialSubject
}

// validation is the state of one Validate call.
type validation struct {
	content  *TrustContent
	rootSubj *cert.TrustRootSubject
	// Outcomes are keyed by linkKey so a domain space reached through
	// different parents is checked once per parent.
	validated map[string]validatedSpace
	failed    map[string]error
}

func linkKey(name string, parent cert.CredentialSubject) string {
	return name + "\x00" + parent.Name()
}

// Validate returns the blockchains of content whose certificate chains lead
// to localRoot. Only a root owner mismatch, or a localRoot or stored root that
// is not a trust root, fails the call. Entries that do not verify are logged
// and left out of the result.
func (v *Validator) Validate(localRoot *cert.Certificate, content *TrustContent) (*ValidationResult, error) {
	if localRoot == nil {
		return nil, fmt.Errorf("%w: nil local root", ErrNotRootCertificate)
	}
	localSubj, err := localRoot.TrustRootSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: local root: %w", ErrNotRootCertificate, err)
	}
	storedRoot, ok := content.RootCertificate()
	if !ok {
		return nil, ErrMissingRoot
	}
	storedSubj, err := storedRoot.TrustRootSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: stored root: %w", ErrNotRootCertificate, err)
	}
	if !localSubj.RootOwner.Equal(storedSubj.RootOwner) {
		v.log.Error(
			"Trust content is rooted in a different authority",
			zap.Stringer("localRootOwner", localSubj.RootOwner),
			zap.Stringer("contentRootOwner", storedSubj.RootOwner),
		)
		v.metrics.rootMismatch()
		return nil, fmt.Errorf("%w: local %s, content %s", ErrRootMismatch, localSubj.RootOwner, storedSubj.RootOwner)
	}

	run := &validation{
		content:   content,
		rootSubj:  localSubj,
		validated: make(map[string]validatedSpace),
		failed:    make(map[string]error),
	}
	result := &ValidationResult{
		Blockchains:  make(map[string]*BlockchainInfo),
		DomainSpaces: map[string]*cert.Certificate{xchain.RootDomainSpace: localRoot},
	}

	content.walkBlockchains(func(info *BlockchainInfo) {
		domain := info.Domain
		validInfo, err := run.entry(info)
		if err != nil {
			v.log.Warn(
				"Excluding untrusted blockchain",
				zap.String("domain", domain),
				zap.Error(err),
			)
			v.metrics.rejected(err)
			return
		}
		if info.PTCCert != nil && validInfo.PTCCert == nil {
			v.log.Warn(
				"Dropping untrusted PTC certificate",
				zap.String("domain", domain),
				zap.String("ptcCertID", info.PTCCert.ID),
			)
		}
		v.metrics.accepted()
		result.Blockchains[domain] = validInfo
	})

	for _, s := range run.validated {
		result.DomainSpaces[s.subject.Name()] = s.cert
	}
	v.log.Debug(
		"Validated trust content",
		zap.Int("blockchains", len(result.Blockchains)),
		zap.Int("rejected", content.Len()-len(result.Blockchains)),
		zap.Int("domainSpaces", len(result.DomainSpaces)),
	)
	return result, nil
}

// entry walks info's ancestor chain from the root and then checks the leaf
// domain certificate against the last ancestor. An entry without a chain is
// checked against the domain spaces stored above it.
func (r *validation) entry(info *BlockchainInfo) (*BlockchainInfo, error) {
	out := info
	chain := info.SortedChain()
	if len(info.DomainSpaceChain) == 0 {
		chain = r.storedChain(info.Domain)
		if len(chain) > 0 {
			out = info.Clone()
			out.DomainSpaceChain = chain
		}
	}

	var parent cert.CredentialSubject = r.rootSubj
	for _, space := range chain {
		if !xchain.IsAncestorSpace(space, info.Domain) {
			return nil, fmt.Errorf("%w: %s is not above %s", ErrNotAncestor, space, info.Domain)
		}
		s, err := r.domainSpace(space, parent)
		if err != nil {
			return nil, err
		}
		parent = s.subject
	}

	if info.DomainCert == nil {
		return nil, fmt.Errorf("%w: %s has no domain certificate", ErrNameMismatch, info.Domain)
	}
	leaf, err := checkLink(info.Domain, info.DomainCert, parent)
	if err != nil {
		return nil, fmt.Errorf("domain %s: %w", info.Domain, err)
	}
	if leaf.IsDomainSpace() {
		return nil, fmt.Errorf("%w: domain %s is certified as a domain space", ErrNameTypeMismatch, info.Domain)
	}

	if info.PTCCert != nil && r.checkPTC(info.PTCCert) != nil {
		if out == info {
			out = info.Clone()
		}
		out.PTCCert = nil
	}
	return out, nil
}

// storedChain lists the stored domain spaces above domain, root-first and
// without ROOT.
func (r *validation) storedChain(domain string) []string {
	var chain []string
	for name := domain; ; {
		space, _, ok := r.content.ClosestDomainSpace(name)
		if !ok || space == xchain.RootDomainSpace {
			break
		}
		chain = append(chain, space)
		name = space
	}
	slices.Reverse(chain)
	return chain
}

func (r *validation) domainSpace(name string, parent cert.CredentialSubject) (validatedSpace, error) {
	k := linkKey(name, parent)
	if s, ok := r.validated[k]; ok {
		return s, nil
	}
	if err, ok := r.failed[k]; ok {
		return validatedSpace{}, err
	}
	s, err := r.checkDomainSpace(name, parent)
	if err != nil {
		r.failed[k] = err
		return validatedSpace{}, err
	}
	r.validated[k] = s
	return s, nil
}

func (r *validation) checkDomainSpace(name string, parent cert.CredentialSubject) (validatedSpace, error) {
	dsCert, ok := r.content.DomainSpaceCert(name)
	if !ok {
		return validatedSpace{}, fmt.Errorf("%w: %s", ErrMissingDomainSpace, name)
	}
	subject, err := checkLink(name, dsCert, parent)
	if err != nil {
		return validatedSpace{}, fmt.Errorf("domain space %s: %w", name, err)
	}
	if !subject.IsDomainSpace() {
		return validatedSpace{}, fmt.Errorf("%w: %s is certified as a domain", ErrNameTypeMismatch, name)
	}
	return validatedSpace{cert: dsCert, subject: subject}, nil
}

// checkPTC accepts PTC certificates issued directly by the root authority.
func (r *validation) checkPTC(c *cert.Certificate) error {
	if c.Type != cert.TypePTC {
		return fmt.Errorf("%w: %s certificate", ErrUntrustedPTC, c.Type)
	}
	if _, err := c.Subject(); err != nil {
		return fmt.Errorf("%w: %w", ErrUntrustedPTC, err)
	}
	if !c.Issuer.Equal(r.rootSubj.Applicant()) {
		return fmt.Errorf("%w: %w", ErrUntrustedPTC, ErrIssuerMismatch)
	}
	if err := cert.VerifyIssueProof(c, r.rootSubj); err != nil {
		return fmt.Errorf("%w: %w", ErrUntrustedPTC, err)
	}
	return nil
}

// checkLink applies the rules every chain link must satisfy against its
// parent: matching name, issuer, declared parent and signature.
func checkLink(name string, c *cert.Certificate, parent cert.CredentialSubject) (*cert.DomainNameSubject, error) {
	subject, err := c.DomainNameSubject()
	if err != nil {
		return nil, err
	}
	if subject.Name() != name {
		return nil, fmt.Errorf("%w: certificate names %q", ErrNameMismatch, subject.Name())
	}
	if !c.Issuer.Equal(parent.Applicant()) {
		return nil, fmt.Errorf("%w: issued by %s, parent applicant %s", ErrIssuerMismatch, c.Issuer, parent.Applicant())
	}
	if subject.ParentDomainSpace != parent.Name() {
		return nil, fmt.Errorf("%w: declares %q, parent is %q", ErrParentMismatch, subject.ParentDomainSpace, parent.Name())
	}
	if err := cert.VerifyIssueProof(c, parent); err != nil {
		return nil, err
	}
	return subject, nil
}

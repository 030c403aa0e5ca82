// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cert

import (
	"fmt"

	"github.com/luxfi/xchain/tlv"
)

// CurrentVersion is the certificate format version written by Issue.
const CurrentVersion uint16 = 1

const (
	tagCertVersion uint16 = iota
	tagCertID
	tagCertType
	tagCertIssuer
	tagCertIssuanceDate
	tagCertExpirationDate
	tagCertSubject
	tagCertProof
)

const (
	tagProofHashAlgo uint16 = iota
	tagProofCertHash
	tagProofSigAlgo
	tagProofRaw
)

// IssueProof is the issuer's signature over a certificate's to-be-signed
// encoding.
type IssueProof struct {
	HashAlgo HashAlgo
	CertHash []byte
	SigAlgo  SigAlgo
	RawProof []byte
}

func (p IssueProof) Encode() []byte {
	return tlv.New(
		tlv.Uint8(tagProofHashAlgo, uint8(p.HashAlgo)),
		tlv.Bytes(tagProofCertHash, p.CertHash),
		tlv.Uint8(tagProofSigAlgo, uint8(p.SigAlgo)),
		tlv.Bytes(tagProofRaw, p.RawProof),
	).Encode()
}

func decodeIssueProof(b []byte) (IssueProof, error) {
	p, err := tlv.Decode(b)
	if err != nil {
		return IssueProof{}, err
	}
	if err := p.Require(tagProofHashAlgo, tagProofCertHash, tagProofSigAlgo, tagProofRaw); err != nil {
		return IssueProof{}, err
	}
	hashAlgo, err := p.GetUint8(tagProofHashAlgo)
	if err != nil {
		return IssueProof{}, err
	}
	sigAlgo, err := p.GetUint8(tagProofSigAlgo)
	if err != nil {
		return IssueProof{}, err
	}
	certHash, _ := p.Get(tagProofCertHash)
	raw, _ := p.Get(tagProofRaw)
	return IssueProof{
		HashAlgo: HashAlgo(hashAlgo),
		CertHash: certHash,
		SigAlgo:  SigAlgo(sigAlgo),
		RawProof: raw,
	}, nil
}

// Certificate is an immutable signed record issued by a BCDNS authority.
// Dates are unix seconds.
type Certificate struct {
	Version           uint16
	ID                string
	Type              Type
	Issuer            ObjectIdentity
	IssuanceDate      uint64
	ExpirationDate    uint64
	CredentialSubject []byte
	Proof             IssueProof
}

func (c *Certificate) tbsPacket() *tlv.Packet {
	return tlv.New(
		tlv.Uint16(tagCertVersion, c.Version),
		tlv.String(tagCertID, c.ID),
		tlv.Uint8(tagCertType, uint8(c.Type)),
		tlv.Bytes(tagCertIssuer, c.Issuer.Encode()),
		tlv.Uint64(tagCertIssuanceDate, c.IssuanceDate),
		tlv.Uint64(tagCertExpirationDate, c.ExpirationDate),
		tlv.Bytes(tagCertSubject, c.CredentialSubject),
	)
}

// EncodeToBeSigned returns the bytes covered by the issue proof.
func (c *Certificate) EncodeToBeSigned() []byte {
	return c.tbsPacket().Encode()
}

func (c *Certificate) Encode() []byte {
	return c.tbsPacket().Add(tlv.Bytes(tagCertProof, c.Proof.Encode())).Encode()
}

func Decode(b []byte) (*Certificate, error) {
	p, err := tlv.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}
	if err := p.Require(
		tagCertVersion, tagCertID, tagCertType, tagCertIssuer,
		tagCertIssuanceDate, tagCertExpirationDate, tagCertSubject, tagCertProof,
	); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}

	c := &Certificate{}
	var typ uint8
	if c.Version, err = p.GetUint16(tagCertVersion); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}
	if typ, err = p.GetUint8(tagCertType); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}
	c.Type = Type(typ)
	if _, ok := subjectKinds[c.Type]; !ok {
		return nil, fmt.Errorf("%w: certificate type %d", ErrMalformedCertificate, typ)
	}
	if c.IssuanceDate, err = p.GetUint64(tagCertIssuanceDate); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}
	if c.ExpirationDate, err = p.GetUint64(tagCertExpirationDate); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}
	c.ID, _ = p.GetString(tagCertID)
	c.CredentialSubject, _ = p.Get(tagCertSubject)

	issuer, _ := p.Get(tagCertIssuer)
	if c.Issuer, err = DecodeObjectIdentity(issuer); err != nil {
		return nil, err
	}
	proof, _ := p.Get(tagCertProof)
	if c.Proof, err = decodeIssueProof(proof); err != nil {
		return nil, fmt.Errorf("%w: issue proof: %w", ErrMalformedCertificate, err)
	}
	return c, nil
}

// Subject decodes the credential subject and checks it matches the
// certificate type.
func (c *Certificate) Subject() (CredentialSubject, error) {
	s, err := DecodeSubject(c.CredentialSubject)
	if err != nil {
		return nil, err
	}
	if want := subjectKinds[c.Type]; s.Kind() != want {
		return nil, fmt.Errorf("%w: %s certificate carries subject kind %d", ErrSubjectKindMismatch, c.Type, s.Kind())
	}
	return s, nil
}

// DomainNameSubject decodes the subject of a domain-name certificate.
func (c *Certificate) DomainNameSubject() (*DomainNameSubject, error) {
	if c.Type != TypeDomainName {
		return nil, fmt.Errorf("%w: %s certificate is not a domain name certificate", ErrSubjectKindMismatch, c.Type)
	}
	s, err := c.Subject()
	if err != nil {
		return nil, err
	}
	return s.(*DomainNameSubject), nil
}

// TrustRootSubject decodes the subject of a trust root certificate.
func (c *Certificate) TrustRootSubject() (*TrustRootSubject, error) {
	if c.Type != TypeTrustRoot {
		return nil, fmt.Errorf("%w: %s certificate is not a trust root", ErrSubjectKindMismatch, c.Type)
	}
	s, err := c.Subject()
	if err != nil {
		return nil, err
	}
	return s.(*TrustRootSubject), nil
}

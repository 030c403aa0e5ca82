// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cert

import (
	"fmt"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/tlv"
)

// TrustRootSubject is the content of the self-signed ROOT certificate.
type TrustRootSubject struct {
	BCDNSName        string
	RootOwner        ObjectIdentity
	SubjectPublicKey PublicKey
}

const (
	tagRootName uint16 = iota
	tagRootOwner
	tagRootPublicKey
)

func (*TrustRootSubject) Kind() SubjectKind           { return KindTrustRoot }
func (*TrustRootSubject) Name() string                { return xchain.RootDomainSpace }
func (s *TrustRootSubject) Applicant() ObjectIdentity { return s.RootOwner }
func (s *TrustRootSubject) PublicKey() PublicKey      { return s.SubjectPublicKey }

func (s *TrustRootSubject) Encode() []byte {
	return encodeSubject(KindTrustRoot, tlv.New(
		tlv.String(tagRootName, s.BCDNSName),
		tlv.Bytes(tagRootOwner, s.RootOwner.Encode()),
		tlv.Bytes(tagRootPublicKey, s.SubjectPublicKey.Encode()),
	))
}

func decodeTrustRootSubject(b []byte) (CredentialSubject, error) {
	r := newSubjectReader(KindTrustRoot, b)
	s := &TrustRootSubject{
		BCDNSName:        r.str(tagRootName),
		RootOwner:        r.identity(tagRootOwner),
		SubjectPublicKey: r.publicKey(tagRootPublicKey),
	}
	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

// DomainNameType distinguishes domain-space certificates from leaf domains.
type DomainNameType uint8

const (
	DomainSpace DomainNameType = iota
	Domain
)

// DomainNameSubject binds a domain or domain-space to its applicant and
// records the domain space it was issued under.
type DomainNameSubject struct {
	Version           uint16
	NameType          DomainNameType
	ParentDomainSpace string
	DomainName        string
	ApplicantID       ObjectIdentity
	SubjectPublicKey  PublicKey
}

const (
	tagDomainVersion uint16 = iota
	tagDomainNameType
	tagDomainParent
	tagDomainName
	tagDomainApplicant
	tagDomainPublicKey
)

func (*DomainNameSubject) Kind() SubjectKind           { return KindDomainName }
func (s *DomainNameSubject) Name() string              { return s.DomainName }
func (s *DomainNameSubject) Applicant() ObjectIdentity { return s.ApplicantID }
func (s *DomainNameSubject) PublicKey() PublicKey      { return s.SubjectPublicKey }

func (s *DomainNameSubject) IsDomainSpace() bool {
	return s.NameType == DomainSpace
}

func (s *DomainNameSubject) Encode() []byte {
	return encodeSubject(KindDomainName, tlv.New(
		tlv.Uint16(tagDomainVersion, s.Version),
		tlv.Uint8(tagDomainNameType, uint8(s.NameType)),
		tlv.String(tagDomainParent, s.ParentDomainSpace),
		tlv.String(tagDomainName, s.DomainName),
		tlv.Bytes(tagDomainApplicant, s.ApplicantID.Encode()),
		tlv.Bytes(tagDomainPublicKey, s.SubjectPublicKey.Encode()),
	))
}

func decodeDomainNameSubject(b []byte) (CredentialSubject, error) {
	r := newSubjectReader(KindDomainName, b)
	s := &DomainNameSubject{
		Version:           r.u16(tagDomainVersion),
		NameType:          DomainNameType(r.u8(tagDomainNameType)),
		ParentDomainSpace: r.str(tagDomainParent),
		DomainName:        r.str(tagDomainName),
		ApplicantID:       r.identity(tagDomainApplicant),
		SubjectPublicKey:  r.publicKey(tagDomainPublicKey),
	}
	if r.err != nil {
		return nil, r.err
	}
	if s.NameType > Domain {
		return nil, fmt.Errorf("%w: domain name type %d", ErrMalformedCertificate, s.NameType)
	}
	if s.DomainName == "" {
		return nil, fmt.Errorf("%w: empty domain name", ErrMalformedCertificate)
	}
	return s, nil
}

// PTCType is the kind of proof a PTC service produces.
type PTCType uint8

const (
	PTCTypeExchange PTCType = iota
	PTCTypeCommittee
	PTCTypeRelayChain
)

// PTCSubject certifies a proof transformation component service.
type PTCSubject struct {
	Version          uint16
	ServiceName      string
	PTCType          PTCType
	ApplicantID      ObjectIdentity
	SubjectPublicKey PublicKey
}

const (
	tagPTCVersion uint16 = iota
	tagPTCName
	tagPTCType
	tagPTCApplicant
	tagPTCPublicKey
)

func (*PTCSubject) Kind() SubjectKind           { return KindPTC }
func (s *PTCSubject) Name() string              { return s.ServiceName }
func (s *PTCSubject) Applicant() ObjectIdentity { return s.ApplicantID }
func (s *PTCSubject) PublicKey() PublicKey      { return s.SubjectPublicKey }

func (s *PTCSubject) Encode() []byte {
	return encodeSubject(KindPTC, tlv.New(
		tlv.Uint16(tagPTCVersion, s.Version),
		tlv.String(tagPTCName, s.ServiceName),
		tlv.Uint8(tagPTCType, uint8(s.PTCType)),
		tlv.Bytes(tagPTCApplicant, s.ApplicantID.Encode()),
		tlv.Bytes(tagPTCPublicKey, s.SubjectPublicKey.Encode()),
	))
}

func decodePTCSubject(b []byte) (CredentialSubject, error) {
	r := newSubjectReader(KindPTC, b)
	s := &PTCSubject{
		Version:          r.u16(tagPTCVersion),
		ServiceName:      r.str(tagPTCName),
		PTCType:          PTCType(r.u8(tagPTCType)),
		ApplicantID:      r.identity(tagPTCApplicant),
		SubjectPublicKey: r.publicKey(tagPTCPublicKey),
	}
	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

// RelayerSubject certifies a relayer node.
type RelayerSubject struct {
	Version          uint16
	RelayerName      string
	ApplicantID      ObjectIdentity
	SubjectPublicKey PublicKey
}

const (
	tagRelayerVersion uint16 = iota
	tagRelayerName
	tagRelayerApplicant
	tagRelayerPublicKey
)

func (*RelayerSubject) Kind() SubjectKind           { return KindRelayer }
func (s *RelayerSubject) Name() string              { return s.RelayerName }
func (s *RelayerSubject) Applicant() ObjectIdentity { return s.ApplicantID }
func (s *RelayerSubject) PublicKey() PublicKey      { return s.SubjectPublicKey }

func (s *RelayerSubject) Encode() []byte {
	return encodeSubject(KindRelayer, tlv.New(
		tlv.Uint16(tagRelayerVersion, s.Version),
		tlv.String(tagRelayerName, s.RelayerName),
		tlv.Bytes(tagRelayerApplicant, s.ApplicantID.Encode()),
		tlv.Bytes(tagRelayerPublicKey, s.SubjectPublicKey.Encode()),
	))
}

func decodeRelayerSubject(b []byte) (CredentialSubject, error) {
	r := newSubjectReader(KindRelayer, b)
	s := &RelayerSubject{
		Version:          r.u16(tagRelayerVersion),
		RelayerName:      r.str(tagRelayerName),
		ApplicantID:      r.identity(tagRelayerApplicant),
		SubjectPublicKey: r.publicKey(tagRelayerPublicKey),
	}
	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cert

import (
	"fmt"

	"github.com/luxfi/xchain/tlv"
)

// SubjectKind is the explicit tag heading every encoded credential subject.
type SubjectKind uint8

const (
	KindTrustRoot SubjectKind = iota + 1
	KindDomainName
	KindPTC
	KindRelayer
)

// CredentialSubject is the certified content of a certificate.
type CredentialSubject interface {
	Kind() SubjectKind
	// Name is the domain, domain-space or service name bound by the subject.
	Name() string
	Applicant() ObjectIdentity
	PublicKey() PublicKey
	// Encode returns the kind byte followed by the subject body.
	Encode() []byte
}

var subjectDecoders = map[SubjectKind]func([]byte) (CredentialSubject, error){
	KindTrustRoot:  decodeTrustRootSubject,
	KindDomainName: decodeDomainNameSubject,
	KindPTC:        decodePTCSubject,
	KindRelayer:    decodeRelayerSubject,
}

// subjectKinds maps a certificate type to the only subject kind it may carry.
var subjectKinds = map[Type]SubjectKind{
	TypeTrustRoot:  KindTrustRoot,
	TypeDomainName: KindDomainName,
	TypePTC:        KindPTC,
	TypeRelayer:    KindRelayer,
}

// DecodeSubject reads the kind tag and dispatches to that kind's decoder.
func DecodeSubject(raw []byte) (CredentialSubject, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty credential subject", ErrMalformedCertificate)
	}
	decode, ok := subjectDecoders[SubjectKind(raw[0])]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSubjectKind, raw[0])
	}
	return decode(raw[1:])
}

func encodeSubject(kind SubjectKind, p *tlv.Packet) []byte {
	body := p.Encode()
	out := make([]byte, 1+len(body))
	out[0] = byte(kind)
	copy(out[1:], body)
	return out
}

// subjectReader accumulates the first decoding error so subject decoders can
// read every field before checking once.
type subjectReader struct {
	p   *tlv.Packet
	err error
}

func newSubjectReader(kind SubjectKind, b []byte) *subjectReader {
	p, err := tlv.Decode(b)
	if err != nil {
		return &subjectReader{err: fmt.Errorf("%w: subject kind %d: %w", ErrMalformedCertificate, kind, err)}
	}
	return &subjectReader{p: p}
}

func (r *subjectReader) wrap(err error) {
	if r.err == nil && err != nil {
		r.err = fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}
}

func (r *subjectReader) str(tag uint16) string {
	if r.err != nil {
		return ""
	}
	s, err := r.p.GetString(tag)
	r.wrap(err)
	return s
}

func (r *subjectReader) u8(tag uint16) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.p.GetUint8(tag)
	r.wrap(err)
	return v
}

func (r *subjectReader) u16(tag uint16) uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.p.GetUint16(tag)
	r.wrap(err)
	return v
}

func (r *subjectReader) identity(tag uint16) ObjectIdentity {
	if r.err != nil {
		return ObjectIdentity{}
	}
	raw, err := r.p.MustGet(tag)
	if err != nil {
		r.wrap(err)
		return ObjectIdentity{}
	}
	id, err := DecodeObjectIdentity(raw)
	r.wrap(err)
	return id
}

func (r *subjectReader) publicKey(tag uint16) PublicKey {
	if r.err != nil {
		return PublicKey{}
	}
	raw, err := r.p.MustGet(tag)
	if err != nil {
		r.wrap(err)
		return PublicKey{}
	}
	pk, err := DecodePublicKey(raw)
	r.wrap(err)
	return pk
}

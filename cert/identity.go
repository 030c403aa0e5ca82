// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cert

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/luxfi/xchain/tlv"
)

// IdentityType says how ObjectIdentity.RawID is to be read.
type IdentityType uint8

const (
	// IdentityPublicKey identities carry an encoded PublicKey.
	IdentityPublicKey IdentityType = iota
	// IdentityKeyHash identities carry a digest of an encoded PublicKey.
	IdentityKeyHash
)

const (
	tagIdentityType uint16 = iota
	tagIdentityRaw
)

// ObjectIdentity names the holder of a key: an applicant or an issuer.
// Two identities are equal when their encodings are equal.
type ObjectIdentity struct {
	Type  IdentityType
	RawID []byte
}

func NewPublicKeyIdentity(pk PublicKey) ObjectIdentity {
	return ObjectIdentity{Type: IdentityPublicKey, RawID: pk.Encode()}
}

func NewKeyHashIdentity(pk PublicKey) ObjectIdentity {
	sum := sha256.Sum256(pk.Encode())
	return ObjectIdentity{Type: IdentityKeyHash, RawID: sum[:]}
}

func (o ObjectIdentity) Encode() []byte {
	return tlv.New(
		tlv.Uint8(tagIdentityType, uint8(o.Type)),
		tlv.Bytes(tagIdentityRaw, o.RawID),
	).Encode()
}

func DecodeObjectIdentity(b []byte) (ObjectIdentity, error) {
	p, err := tlv.Decode(b)
	if err != nil {
		return ObjectIdentity{}, fmt.Errorf("%w: identity: %w", ErrMalformedCertificate, err)
	}
	typ, err := p.GetUint8(tagIdentityType)
	if err != nil {
		return ObjectIdentity{}, fmt.Errorf("%w: identity: %w", ErrMalformedCertificate, err)
	}
	raw, err := p.MustGet(tagIdentityRaw)
	if err != nil {
		return ObjectIdentity{}, fmt.Errorf("%w: identity: %w", ErrMalformedCertificate, err)
	}
	if IdentityType(typ) > IdentityKeyHash {
		return ObjectIdentity{}, fmt.Errorf("%w: identity type %d", ErrMalformedCertificate, typ)
	}
	return ObjectIdentity{Type: IdentityType(typ), RawID: raw}, nil
}

func (o ObjectIdentity) Equal(other ObjectIdentity) bool {
	return bytes.Equal(o.Encode(), other.Encode())
}

func (o ObjectIdentity) IsZero() bool {
	return len(o.RawID) == 0
}

func (o ObjectIdentity) String() string {
	if o.Type == IdentityKeyHash {
		return base58.Encode(o.RawID)
	}
	return hex.EncodeToString(o.RawID)
}

const (
	tagKeyAlgo uint16 = iota
	tagKeyRaw
)

// PublicKey is a raw public key tagged with the scheme it verifies.
type PublicKey struct {
	Algo SigAlgo
	Key  []byte
}

func (k PublicKey) Encode() []byte {
	return tlv.New(
		tlv.Uint8(tagKeyAlgo, uint8(k.Algo)),
		tlv.Bytes(tagKeyRaw, k.Key),
	).Encode()
}

func DecodePublicKey(b []byte) (PublicKey, error) {
	p, err := tlv.Decode(b)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	algo, err := p.GetUint8(tagKeyAlgo)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	raw, err := p.MustGet(tagKeyRaw)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return PublicKey{Algo: SigAlgo(algo), Key: raw}, nil
}

func (k PublicKey) IsZero() bool {
	return len(k.Key) == 0
}

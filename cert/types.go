// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cert

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedCertificate = errors.New("malformed certificate")
	ErrUnknownSubjectKind   = errors.New("unknown credential subject kind")
	ErrSubjectKindMismatch  = errors.New("credential subject does not match certificate type")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrHashMismatch         = errors.New("certificate hash mismatch")
	ErrInvalidSignature     = errors.New("invalid issue proof signature")
	ErrInvalidPublicKey     = errors.New("invalid public key")
)

// Type is the kind of a certificate.
type Type uint8

const (
	TypeTrustRoot Type = iota + 1
	TypeDomainName
	TypePTC
	TypeRelayer
)

func (t Type) String() string {
	switch t {
	case TypeTrustRoot:
		return "trust-root"
	case TypeDomainName:
		return "domain-name"
	case TypePTC:
		return "ptc"
	case TypeRelayer:
		return "relayer"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// HashAlgo selects the digest an issue proof commits to.
type HashAlgo uint8

const (
	HashSHA256 HashAlgo = iota + 1
	HashSHA3256
	HashKeccak256
)

func (h HashAlgo) String() string {
	switch h {
	case HashSHA256:
		return "SHA2-256"
	case HashSHA3256:
		return "SHA3-256"
	case HashKeccak256:
		return "KECCAK-256"
	default:
		return fmt.Sprintf("hash(%d)", uint8(h))
	}
}

// SigAlgo selects the signature scheme of an issue proof.
type SigAlgo uint8

const (
	SigSecp256k1 SigAlgo = iota + 1
	SigEd25519
)

func (s SigAlgo) String() string {
	switch s {
	case SigSecp256k1:
		return "SECP256K1"
	case SigEd25519:
		return "ED25519"
	default:
		return fmt.Sprintf("sig(%d)", uint8(s))
	}
}

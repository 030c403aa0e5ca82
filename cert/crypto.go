// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cert

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// Digest hashes data with algo.
func Digest(algo HashAlgo, data []byte) ([]byte, error) {
	switch algo {
	case HashSHA256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	case HashSHA3256:
		sum := sha3.Sum256(data)
		return sum[:], nil
	case HashKeccak256:
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		return h.Sum(nil), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
}

// Signer signs certificate digests.
type Signer interface {
	Algo() SigAlgo
	PublicKey() PublicKey
	Sign(digest []byte) ([]byte, error)
}

type secp256k1Signer struct {
	key *secp256k1.PrivateKey
}

// NewSecp256k1Signer wraps key. A nil key generates a fresh one.
func NewSecp256k1Signer(key *secp256k1.PrivateKey) (Signer, error) {
	if key == nil {
		var err error
		if key, err = secp256k1.GeneratePrivateKey(); err != nil {
			return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
		}
	}
	return &secp256k1Signer{key: key}, nil
}

func (*secp256k1Signer) Algo() SigAlgo { return SigSecp256k1 }

func (s *secp256k1Signer) PublicKey() PublicKey {
	return PublicKey{Algo: SigSecp256k1, Key: s.key.PubKey().SerializeCompressed()}
}

func (s *secp256k1Signer) Sign(digest []byte) ([]byte, error) {
	return ecdsa.Sign(s.key, digest).Serialize(), nil
}

type ed25519Signer struct {
	key ed25519.PrivateKey
}

// NewEd25519Signer wraps key. A nil key generates a fresh one.
func NewEd25519Signer(key ed25519.PrivateKey) (Signer, error) {
	if key == nil {
		var err error
		if _, key, err = ed25519.GenerateKey(rand.Reader); err != nil {
			return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
		}
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: ed25519 private key of %d bytes", ErrInvalidPublicKey, len(key))
	}
	return &ed25519Signer{key: key}, nil
}

func (*ed25519Signer) Algo() SigAlgo { return SigEd25519 }

func (s *ed25519Signer) PublicKey() PublicKey {
	return PublicKey{Algo: SigEd25519, Key: []byte(s.key.Public().(ed25519.PublicKey))}
}

func (s *ed25519Signer) Sign(digest []byte) ([]byte, error) {
	return ed25519.Sign(s.key, digest), nil
}

// Verify checks sig over digest under pk using algo.
func Verify(pk PublicKey, algo SigAlgo, digest, sig []byte) error {
	if pk.Algo != algo {
		return fmt.Errorf("%w: key is %s, proof is %s", ErrUnsupportedAlgorithm, pk.Algo, algo)
	}
	switch algo {
	case SigSecp256k1:
		pub, err := secp256k1.ParsePubKey(pk.Key)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
		}
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		if !parsed.Verify(digest, pub) {
			return ErrInvalidSignature
		}
		return nil
	case SigEd25519:
		if len(pk.Key) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: ed25519 key of %d bytes", ErrInvalidPublicKey, len(pk.Key))
		}
		if !ed25519.Verify(ed25519.PublicKey(pk.Key), digest, sig) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
}

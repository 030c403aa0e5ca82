// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire encodes the relayer-to-relayer proof bundle (AuthMsgPackage)
// and the PTC proof envelope.
package wire

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/xchain"
)

const (
	// DomainBlockLen is the fixed width of the sender domain text, not
	// counting its length byte.
	DomainBlockLen = xchain.MaxDomainLength

	headerLen = 4 + xchain.IdentityLen + 1 + DomainBlockLen
)

var (
	ErrMalformedPackage        = errors.New("malformed auth message package")
	ErrInvalidReceiverIdentity = errors.New("receiver identity must be 32 bytes")
)

// AuthMsgPackage is the bundle submitted to a receiving chain. Hints,
// Proofs and (with the notary flag) AMPackages are parallel sequences.
// Proofs hold Base64 text; the raw bytes go on the wire.
type AuthMsgPackage struct {
	Flags            Flags
	ReceiverIdentity []byte
	SenderDomain     string
	Hints            []string
	Proofs           []string
	AMPackages       [][]byte
}

// EncodeResult is either an encoded package or Empty. Empty is returned
// when there is nothing consistent to encode, and is not an error.
type EncodeResult struct {
	data []byte
}

// Empty reports that encoding produced no package.
func (r EncodeResult) Empty() bool {
	return r.data == nil
}

// Bytes returns the encoded package and true, or nil and false when Empty.
func (r EncodeResult) Bytes() ([]byte, bool) {
	return r.data, r.data != nil
}

func (p *AuthMsgPackage) pairs() (int, bool) {
	n := len(p.Hints)
	if n == 0 || len(p.Proofs) != n {
		return 0, false
	}
	if p.Flags.Notary() && len(p.AMPackages) != n {
		return 0, false
	}
	return n, true
}

// Encode writes the package layout:
//
//	flags(4) | receiverIdentity(32) | domainLen(1) | domain(128, zero padded) |
//	N * (hintLen(4) | hint | proofLen(4) | proof [| amLen(4) | am])
//
// The am fields are present only when the notary flag is set.
func (p *AuthMsgPackage) Encode() (EncodeResult, error) {
	n, ok := p.pairs()
	if !ok {
		return EncodeResult{}, nil
	}
	if len(p.ReceiverIdentity) != xchain.IdentityLen {
		return EncodeResult{}, fmt.Errorf("%w: got %d", ErrInvalidReceiverIdentity, len(p.ReceiverIdentity))
	}
	if len(p.SenderDomain) > DomainBlockLen {
		return EncodeResult{}, fmt.Errorf("%w: sender domain of %d bytes", xchain.ErrInvalidDomain, len(p.SenderDomain))
	}

	proofs := make([][]byte, n)
	size := headerLen
	for i := range n {
		raw, err := base64.StdEncoding.DecodeString(p.Proofs[i])
		if err != nil {
			return EncodeResult{}, fmt.Errorf("%w: proof %d is not base64: %w", ErrMalformedPackage, i, err)
		}
		proofs[i] = raw
		size += 8 + len(p.Hints[i]) + len(raw)
		if p.Flags.Notary() {
			size += 4 + len(p.AMPackages[i])
		}
	}

	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf[0:4], uint32(p.Flags))
	copy(buf[4:4+xchain.IdentityLen], p.ReceiverIdentity)
	buf[4+xchain.IdentityLen] = byte(len(p.SenderDomain))
	copy(buf[5+xchain.IdentityLen:], p.SenderDomain)

	off := headerLen
	for i := range n {
		off = putChunk(buf, off, []byte(p.Hints[i]))
		off = putChunk(buf, off, proofs[i])
		if p.Flags.Notary() {
			off = putChunk(buf, off, p.AMPackages[i])
		}
	}
	return EncodeResult{data: buf}, nil
}

func putChunk(buf []byte, off int, v []byte) int {
	binary.BigEndian.PutUint32(buf[off:], uint32(len(v)))
	return off + 4 + copy(buf[off+4:], v)
}

// DecodeAuthMsgPackage is the inverse of Encode. It fails on truncated
// input, an oversized domain length or a package without pairs.
func DecodeAuthMsgPackage(data []byte) (*AuthMsgPackage, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: header too short: %d", ErrMalformedPackage, len(data))
	}
	p := &AuthMsgPackage{
		Flags:            Flags(binary.BigEndian.Uint32(data[0:4])),
		ReceiverIdentity: append([]byte(nil), data[4:4+xchain.IdentityLen]...),
	}
	domainLen := int(data[4+xchain.IdentityLen])
	if domainLen > DomainBlockLen {
		return nil, fmt.Errorf("%w: sender domain length %d", ErrMalformedPackage, domainLen)
	}
	domainStart := 5 + xchain.IdentityLen
	p.SenderDomain = string(data[domainStart : domainStart+domainLen])

	r := chunkReader{data: data[headerLen:]}
	for r.more() {
		hint, err := r.next("hint")
		if err != nil {
			return nil, err
		}
		proof, err := r.next("proof")
		if err != nil {
			return nil, err
		}
		p.Hints = append(p.Hints, string(hint))
		p.Proofs = append(p.Proofs, base64.StdEncoding.EncodeToString(proof))
		if p.Flags.Notary() {
			amPkg, err := r.next("am package")
			if err != nil {
				return nil, err
			}
			p.AMPackages = append(p.AMPackages, amPkg)
		}
	}
	if len(p.Hints) == 0 {
		return nil, fmt.Errorf("%w: no hint/proof pairs", ErrMalformedPackage)
	}
	return p, nil
}

type chunkReader struct {
	data []byte
}

func (r *chunkReader) more() bool {
	return len(r.data) > 0
}

func (r *chunkReader) next(field string) ([]byte, error) {
	if len(r.data) < 4 {
		return nil, fmt.Errorf("%w: truncated %s length", ErrMalformedPackage, field)
	}
	n := binary.BigEndian.Uint32(r.data)
	if uint64(n) > uint64(len(r.data)-4) {
		return nil, fmt.Errorf("%w: %s declares %d bytes, have %d", ErrMalformedPackage, field, n, len(r.data)-4)
	}
	v := append([]byte{}, r.data[4:4+int(n)]...)
	r.data = r.data[4+int(n):]
	return v, nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xchain

import (
	"encoding/hex"
	"fmt"
)

// IdentityLen is the width of a contract or account identity on the wire.
const IdentityLen = 32

// Identity is a 32-byte contract or account identity. The zero value acts
// as a wildcard inside a CrossChainLane.
type Identity [IdentityLen]byte

// EmptyIdentity is the wildcard identity.
var EmptyIdentity Identity

// IdentityFromBytes copies b into an Identity. b must be exactly 32 bytes.
func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentityLen {
		return id, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidIdentity, IdentityLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// IdentityFromAddress left-pads an address of at most 32 bytes.
func IdentityFromAddress(addr []byte) (Identity, error) {
	var id Identity
	if len(addr) > IdentityLen {
		return id, fmt.Errorf("%w: address of %d bytes", ErrInvalidIdentity, len(addr))
	}
	copy(id[IdentityLen-len(addr):], addr)
	return id, nil
}

// IdentityFromHex parses a hex identity, with or without a 0x prefix.
func IdentityFromHex(s string) (Identity, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return IdentityFromAddress(b)
}

func (id Identity) IsZero() bool {
	return id == EmptyIdentity
}

func (id Identity) Bytes() []byte {
	return id[:]
}

func (id Identity) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id Identity) String() string {
	return "0x" + id.Hex()
}

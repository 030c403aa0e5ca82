// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xchain

import (
	"slices"
	"strings"
)

const (
	// RootDomainSpace is the name of the single top-level domain space.
	RootDomainSpace = "ROOT"

	// MaxDomainLength is the longest domain name that fits the wire domain block.
	MaxDomainLength = 128
)

// ReverseName reverses name byte-wise. Reversed names turn domain-space
// suffix matching into prefix matching, and ReverseName(ReverseName(n)) == n
// for every byte string n.
func ReverseName(name string) string {
	b := []byte(name)
	slices.Reverse(b)
	return string(b)
}

// IsAncestorSpace reports whether space is a proper ancestor domain space of
// name. ROOT is an ancestor of every other name.
func IsAncestorSpace(space, name string) bool {
	if space == "" || name == "" || space == name {
		return false
	}
	if space == RootDomainSpace {
		return true
	}
	return strings.HasSuffix(name, "."+space)
}

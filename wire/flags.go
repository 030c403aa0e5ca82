// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import "strings"

// Flags is the 32-bit option mask leading an AuthMsgPackage.
type Flags uint32

const (
	FlagUnordered Flags = 1 << iota
	FlagTrusted
	FlagNotary
)

func (f Flags) has(bit Flags) bool {
	return f&bit != 0
}

func (f *Flags) set(bit Flags, on bool) {
	if on {
		*f |= bit
	} else {
		*f &^= bit
	}
}

func (f Flags) Unordered() bool { return f.has(FlagUnordered) }

func (f *Flags) SetUnordered(on bool) { f.set(FlagUnordered, on) }

func (f Flags) Trusted() bool { return f.has(FlagTrusted) }

func (f *Flags) SetTrusted(on bool) { f.set(FlagTrusted, on) }

// Notary reports whether every hint/proof pair carries an AM sub-package.
func (f Flags) Notary() bool { return f.has(FlagNotary) }

func (f *Flags) SetNotary(on bool) { f.set(FlagNotary, on) }

func (f Flags) String() string {
	var names []string
	if f.Unordered() {
		names = append(names, "unordered")
	}
	if f.Trusted() {
		names = append(names, "trusted")
	}
	if f.Notary() {
		names = append(names, "notary")
	}
	if len(names) == 0 {
		return "{}"
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xchain

import "errors"

var (
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrInvalidLane     = errors.New("invalid cross-chain lane")
	ErrInvalidDomain   = errors.New("invalid domain")
)

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package inbound checks proofs arriving from other relayers before their
// messages are handed on for submission.
package inbound

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/am"
	"github.com/luxfi/xchain/tpbta"
	"github.com/luxfi/xchain/wire"
)

var (
	ErrPTCFailure          = errors.New("ptc returned an error")
	ErrUnsupportedProtocol = errors.New("unsupported upper protocol")
)

// AnchorResolver finds the TpBTA governing a lane.
type AnchorResolver interface {
	ResolveMatched(lane xchain.CrossChainLane, version int64) (*tpbta.TpBTA, error)
}

// TrustView reports whether a domain is in the validated trust content.
type TrustView interface {
	Trusted(domain string) bool
}

// Verdict is the outcome of checking one proof. A Placeholder proof has no
// governing TpBTA and is not endorsed by any PTC.
type Verdict struct {
	Lane          xchain.CrossChainLane
	SenderDomain  string
	Message       *am.AuthMessage
	SDP           *am.SDPMessage
	TpBTA         *tpbta.TpBTA
	Placeholder   bool
	SenderTrusted bool
}

// Accepted reports whether the message may proceed to submission.
func (v *Verdict) Accepted() bool {
	return !v.Placeholder && v.SenderTrusted
}

type Checker struct {
	resolver AnchorResolver
	trust    TrustView
	log      *zap.Logger
}

func NewChecker(resolver AnchorResolver, trust TrustView, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{
		resolver: resolver,
		trust:    trust,
		log:      log,
	}
}

// Check decodes a proof envelope, resolves the latest TpBTA of the message's
// lane and looks the sender domain up in the trust view. Malformed input and
// resolver failures are returned as errors. A resolution miss is not.
func (c *Checker) Check(raw []byte) (*Verdict, error) {
	return c.CheckVersion(raw, tpbta.LatestVersion)
}

// CheckVersion is Check against a pinned TpBTA version. A lane without that
// version yields a placeholder verdict.
func (c *Checker) CheckVersion(raw []byte, version int64) (*Verdict, error) {
	proof, err := wire.DecodeProof(raw)
	if err != nil {
		return nil, err
	}
	if !proof.OK() {
		return nil, fmt.Errorf("%w: code %d: %s", ErrPTCFailure, proof.ErrorCode, proof.ErrorMsg)
	}
	if proof.SenderDomain == "" {
		return nil, fmt.Errorf("%w: missing sender domain", wire.ErrMalformedProof)
	}

	msg, err := proof.AuthMessage()
	if err != nil {
		return nil, err
	}
	if msg.UpperProtocol != am.UpperProtocolSDP {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedProtocol, msg.UpperProtocol)
	}
	sdp, err := am.DecodeSDPMessage(msg.Payload)
	if err != nil {
		return nil, err
	}

	lane := am.Lane(proof.SenderDomain, msg, sdp)
	if err := lane.Validate(); err != nil {
		return nil, err
	}
	anchor, err := c.resolver.ResolveMatched(lane, version)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tpbta for %s: %w", lane, err)
	}

	v := &Verdict{
		Lane:          lane,
		SenderDomain:  proof.SenderDomain,
		Message:       msg,
		SDP:           sdp,
		TpBTA:         anchor,
		Placeholder:   anchor == nil,
		SenderTrusted: c.trust.Trusted(proof.SenderDomain),
	}
	if !v.Accepted() {
		c.log.Info(
			"Holding inbound message",
			zap.Stringer("lane", lane),
			zap.Bool("placeholder", v.Placeholder),
			zap.Bool("senderTrusted", v.SenderTrusted),
		)
	}
	return v, nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xchain

import (
	"fmt"
	"strings"
)

// LaneScope is the breadth of a CrossChainLane.
type LaneScope uint8

const (
	ScopeInvalid LaneScope = iota
	ScopeBlockchain
	ScopeChannel
	ScopeLane
)

func (s LaneScope) String() string {
	switch s {
	case ScopeBlockchain:
		return "blockchain"
	case ScopeChannel:
		return "channel"
	case ScopeLane:
		return "lane"
	default:
		return "invalid"
	}
}

// CrossChainLane identifies a route between two chains. Unset fields are
// wildcards: only SenderDomain set is a blockchain-level lane, adding
// ReceiverDomain makes it channel-level, and setting both identities makes it
// a fully specified lane.
//
// Lanes compare by exact tuple and may be used as map keys.
type CrossChainLane struct {
	SenderDomain   string
	SenderID       Identity
	ReceiverDomain string
	ReceiverID     Identity
}

func NewBlockchainLane(senderDomain string) CrossChainLane {
	return CrossChainLane{SenderDomain: senderDomain}
}

func NewChannelLane(senderDomain, receiverDomain string) CrossChainLane {
	return CrossChainLane{SenderDomain: senderDomain, ReceiverDomain: receiverDomain}
}

func NewLane(senderDomain string, senderID Identity, receiverDomain string, receiverID Identity) CrossChainLane {
	return CrossChainLane{
		SenderDomain:   senderDomain,
		SenderID:       senderID,
		ReceiverDomain: receiverDomain,
		ReceiverID:     receiverID,
	}
}

// Scope classifies the lane. Identities without a receiver domain, or only
// one of the two identities set, make the lane invalid.
func (l CrossChainLane) Scope() LaneScope {
	if l.SenderDomain == "" {
		return ScopeInvalid
	}
	hasIDs := !l.SenderID.IsZero() || !l.ReceiverID.IsZero()
	switch {
	case l.ReceiverDomain == "" && !hasIDs:
		return ScopeBlockchain
	case l.ReceiverDomain == "":
		return ScopeInvalid
	case !hasIDs:
		return ScopeChannel
	case l.SenderID.IsZero() || l.ReceiverID.IsZero():
		return ScopeInvalid
	default:
		return ScopeLane
	}
}

func (l CrossChainLane) Validate() error {
	if len(l.SenderDomain) > MaxDomainLength || len(l.ReceiverDomain) > MaxDomainLength {
		return fmt.Errorf("%w: domain longer than %d bytes", ErrInvalidLane, MaxDomainLength)
	}
	if l.Scope() == ScopeInvalid {
		return fmt.Errorf("%w: %s", ErrInvalidLane, l)
	}
	return nil
}

// BlockchainLevel projects the lane onto its sender blockchain.
func (l CrossChainLane) BlockchainLevel() CrossChainLane {
	return NewBlockchainLane(l.SenderDomain)
}

// ChannelLevel projects the lane onto its sender/receiver domain pair.
func (l CrossChainLane) ChannelLevel() CrossChainLane {
	return NewChannelLane(l.SenderDomain, l.ReceiverDomain)
}

// Key is a stable textual key for the exact tuple.
func (l CrossChainLane) Key() string {
	var sb strings.Builder
	sb.WriteString(l.SenderDomain)
	if !l.SenderID.IsZero() {
		sb.WriteByte('@')
		sb.WriteString(l.SenderID.Hex())
	}
	sb.WriteString("->")
	sb.WriteString(l.ReceiverDomain)
	if !l.ReceiverID.IsZero() {
		sb.WriteByte('@')
		sb.WriteString(l.ReceiverID.Hex())
	}
	return sb.String()
}

func (l CrossChainLane) String() string {
	return l.Key()
}

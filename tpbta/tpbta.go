// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tpbta

import (
	"errors"
	"fmt"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/tlv"
)

var ErrMalformedTpBTA = errors.New("malformed tpbta")

const (
	tagVersion uint16 = iota
	tagPTCServiceID
	tagLane
	tagVerifyAnchorVersion
	tagBTASubjectVersion
	tagEndorseRoot
)

const (
	tagSenderDomain uint16 = iota
	tagSenderID
	tagReceiverDomain
	tagReceiverID
)

// TpBTA is a PTC service's authorization to endorse proofs for a lane.
// Several versions may exist per lane; the highest is current.
type TpBTA struct {
	PTCServiceID           string
	Lane                   xchain.CrossChainLane
	Version                uint32
	PTCVerifyAnchorVersion uint64
	BTASubjectVersion      uint32
	EndorseRoot            []byte
}

func (t *TpBTA) Scope() xchain.LaneScope {
	return t.Lane.Scope()
}

func (t *TpBTA) String() string {
	return fmt.Sprintf("%s@v%d", t.Lane.Key(), t.Version)
}

func (t *TpBTA) Encode() []byte {
	p := tlv.New(
		tlv.Uint32(tagVersion, t.Version),
		tlv.String(tagPTCServiceID, t.PTCServiceID),
		tlv.Bytes(tagLane, EncodeLane(t.Lane)),
		tlv.Uint64(tagVerifyAnchorVersion, t.PTCVerifyAnchorVersion),
		tlv.Uint32(tagBTASubjectVersion, t.BTASubjectVersion),
	)
	if len(t.EndorseRoot) > 0 {
		p.Add(tlv.Bytes(tagEndorseRoot, t.EndorseRoot))
	}
	return p.Encode()
}

func Decode(b []byte) (*TpBTA, error) {
	p, err := tlv.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTpBTA, err)
	}
	t := &TpBTA{}
	if t.Version, err = p.GetUint32(tagVersion); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTpBTA, err)
	}
	if t.PTCServiceID, err = p.GetString(tagPTCServiceID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTpBTA, err)
	}
	rawLane, err := p.MustGet(tagLane)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTpBTA, err)
	}
	if t.Lane, err = DecodeLane(rawLane); err != nil {
		return nil, err
	}
	if t.PTCVerifyAnchorVersion, err = p.GetUint64(tagVerifyAnchorVersion); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTpBTA, err)
	}
	if t.BTASubjectVersion, err = p.GetUint32(tagBTASubjectVersion); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTpBTA, err)
	}
	t.EndorseRoot, _ = p.Get(tagEndorseRoot)
	return t, nil
}

// EncodeLane writes only the fields the lane sets.
func EncodeLane(l xchain.CrossChainLane) []byte {
	p := tlv.New(tlv.String(tagSenderDomain, l.SenderDomain))
	if !l.SenderID.IsZero() {
		p.Add(tlv.Bytes(tagSenderID, l.SenderID.Bytes()))
	}
	if l.ReceiverDomain != "" {
		p.Add(tlv.String(tagReceiverDomain, l.ReceiverDomain))
	}
	if !l.ReceiverID.IsZero() {
		p.Add(tlv.Bytes(tagReceiverID, l.ReceiverID.Bytes()))
	}
	return p.Encode()
}

func DecodeLane(b []byte) (xchain.CrossChainLane, error) {
	var l xchain.CrossChainLane
	p, err := tlv.Decode(b)
	if err != nil {
		return l, fmt.Errorf("%w: lane: %w", ErrMalformedTpBTA, err)
	}
	if l.SenderDomain, err = p.GetString(tagSenderDomain); err != nil {
		return l, fmt.Errorf("%w: lane: %w", ErrMalformedTpBTA, err)
	}
	if raw, ok := p.Get(tagSenderID); ok {
		if l.SenderID, err = xchain.IdentityFromBytes(raw); err != nil {
			return l, fmt.Errorf("%w: sender: %w", ErrMalformedTpBTA, err)
		}
	}
	if raw, ok := p.Get(tagReceiverDomain); ok {
		l.ReceiverDomain = string(raw)
	}
	if raw, ok := p.Get(tagReceiverID); ok {
		if l.ReceiverID, err = xchain.IdentityFromBytes(raw); err != nil {
			return l, fmt.Errorf("%w: receiver: %w", ErrMalformedTpBTA, err)
		}
	}
	if err := l.Validate(); err != nil {
		return l, fmt.Errorf("%w: %w", ErrMalformedTpBTA, err)
	}
	return l, nil
}

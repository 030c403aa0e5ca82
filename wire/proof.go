// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"errors"
	"fmt"

	"github.com/luxfi/xchain/am"
	"github.com/luxfi/xchain/tlv"
)

// Outer proof envelope tags.
const (
	TagRequestID    uint16 = 0
	TagRequestLane  uint16 = 1
	TagResponseBody uint16 = 5
	TagErrorCode    uint16 = 7
	TagErrorMsg     uint16 = 8
	TagSenderDomain uint16 = 9
)

// TagProofPayload is the tag of the payload inside the response body.
const TagProofPayload uint16 = 1

// ErrorCodeOK marks a successful PTC response.
const ErrorCodeOK uint32 = 0

var ErrMalformedProof = errors.New("malformed proof envelope")

// Proof is a PTC proof envelope. ResponseBody is a nested TLV packet that
// carries ProofPayload.
type Proof struct {
	RequestID    string
	RequestLane  []byte
	ErrorCode    uint32
	ErrorMsg     string
	SenderDomain string
	ResponseBody []byte
	ProofPayload []byte
}

// NewEmptyProof wraps the encoding of msg as a placeholder proof for
// senderDomain. Downstream it is told apart from a real proof by the
// absence of a governing TpBTA.
func NewEmptyProof(senderDomain string, msg *am.AuthMessage) *Proof {
	return &Proof{
		ErrorCode:    ErrorCodeOK,
		SenderDomain: senderDomain,
		ProofPayload: msg.Encode(),
	}
}

// OK reports whether the PTC answered without an error code.
func (p *Proof) OK() bool {
	return p.ErrorCode == ErrorCodeOK
}

// Body returns the response body, building it from ProofPayload when unset.
func (p *Proof) Body() []byte {
	if p.ResponseBody != nil {
		return p.ResponseBody
	}
	return tlv.New(tlv.Bytes(TagProofPayload, p.ProofPayload)).Encode()
}

func (p *Proof) Encode() []byte {
	pkt := tlv.New()
	if p.RequestID != "" {
		pkt.Add(tlv.String(TagRequestID, p.RequestID))
	}
	if len(p.RequestLane) != 0 {
		pkt.Add(tlv.Bytes(TagRequestLane, p.RequestLane))
	}
	pkt.Add(tlv.Bytes(TagResponseBody, p.Body())).
		Add(tlv.Uint32(TagErrorCode, p.ErrorCode)).
		Add(tlv.String(TagErrorMsg, p.ErrorMsg))
	if p.SenderDomain != "" {
		pkt.Add(tlv.String(TagSenderDomain, p.SenderDomain))
	}
	return pkt.Encode()
}

// DecodeProof requires the error code, error message and response body
// tags, and a proof payload inside the response body.
func DecodeProof(data []byte) (*Proof, error) {
	pkt, err := tlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	if err := pkt.Require(TagErrorCode, TagErrorMsg, TagResponseBody); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}

	p := &Proof{}
	if p.ErrorCode, err = pkt.GetUint32(TagErrorCode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	p.ErrorMsg, _ = pkt.GetString(TagErrorMsg)
	p.ResponseBody, _ = pkt.Get(TagResponseBody)
	if v, ok := pkt.Get(TagSenderDomain); ok {
		p.SenderDomain = string(v)
	}
	if v, ok := pkt.Get(TagRequestID); ok {
		p.RequestID = string(v)
	}
	if v, ok := pkt.Get(TagRequestLane); ok {
		p.RequestLane = v
	}

	body, err := tlv.Decode(p.ResponseBody)
	if err != nil {
		return nil, fmt.Errorf("%w: response body: %w", ErrMalformedProof, err)
	}
	if p.ProofPayload, err = body.MustGet(TagProofPayload); err != nil {
		return nil, fmt.Errorf("%w: response body: %w", ErrMalformedProof, err)
	}
	return p, nil
}

// AuthMessage decodes the proof payload as an authenticated message.
func (p *Proof) AuthMessage() (*am.AuthMessage, error) {
	return am.DecodeAuthMessage(p.ProofPayload)
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package am encodes authenticated messages and the SDP messages they carry.
// All integers are big-endian.
package am

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/xchain"
)

var (
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnsupportedVersion = errors.New("unsupported message version")
)

const (
	AuthMessageV1 uint32 = 1
	AuthMessageV2 uint32 = 2

	// UpperProtocolSDP marks an AM payload holding an SDP message.
	UpperProtocolSDP uint32 = 0

	amHeaderLen = 4 + 4 + xchain.IdentityLen + 4
)

// AuthMessage is the base authenticated cross-chain message emitted by a
// sender contract.
type AuthMessage struct {
	Version       uint32
	Identity      xchain.Identity
	UpperProtocol uint32
	Payload       []byte
}

// Encode writes version(4) | upperProtocol(4) | identity(32) | payloadLen(4) | payload.
func (m *AuthMessage) Encode() []byte {
	buf := make([]byte, amHeaderLen+len(m.Payload))
	binary.BigEndian.PutUint32(buf[0:4], m.Version)
	binary.BigEndian.PutUint32(buf[4:8], m.UpperProtocol)
	copy(buf[8:8+xchain.IdentityLen], m.Identity[:])
	binary.BigEndian.PutUint32(buf[8+xchain.IdentityLen:amHeaderLen], uint32(len(m.Payload)))
	copy(buf[amHeaderLen:], m.Payload)
	return buf
}

func DecodeAuthMessage(data []byte) (*AuthMessage, error) {
	if len(data) < amHeaderLen {
		return nil, fmt.Errorf("%w: data too short: %d", ErrMalformedMessage, len(data))
	}
	m := &AuthMessage{
		Version:       binary.BigEndian.Uint32(data[0:4]),
		UpperProtocol: binary.BigEndian.Uint32(data[4:8]),
	}
	if m.Version != AuthMessageV1 && m.Version != AuthMessageV2 {
		return nil, fmt.Errorf("%w: auth message v%d", ErrUnsupportedVersion, m.Version)
	}
	copy(m.Identity[:], data[8:8+xchain.IdentityLen])
	payloadLen := binary.BigEndian.Uint32(data[8+xchain.IdentityLen : amHeaderLen])
	if uint64(payloadLen) != uint64(len(data)-amHeaderLen) {
		return nil, fmt.Errorf("%w: payload length %d, have %d", ErrMalformedMessage, payloadLen, len(data)-amHeaderLen)
	}
	m.Payload = append([]byte(nil), data[amHeaderLen:]...)
	return m, nil
}

const (
	SDPVersion uint32 = 1

	// UnorderedSequence is the sequence of messages delivered without ordering.
	UnorderedSequence uint32 = 0xFFFFFFFF
)

// SDPMessage is the upper-layer message addressed to a receiver contract.
type SDPMessage struct {
	Version        uint32
	ReceiverDomain string
	ReceiverID     xchain.Identity
	Sequence       uint32
	Payload        []byte
}

func (m *SDPMessage) Unordered() bool {
	return m.Sequence == UnorderedSequence
}

// Encode writes version(4) | domainLen(1) | domain | receiverID(32) |
// sequence(4) | payloadLen(4) | payload.
func (m *SDPMessage) Encode() ([]byte, error) {
	if len(m.ReceiverDomain) == 0 || len(m.ReceiverDomain) > xchain.MaxDomainLength {
		return nil, fmt.Errorf("%w: receiver domain of %d bytes", xchain.ErrInvalidDomain, len(m.ReceiverDomain))
	}
	d := len(m.ReceiverDomain)
	buf := make([]byte, 4+1+d+xchain.IdentityLen+4+4+len(m.Payload))
	binary.BigEndian.PutUint32(buf[0:4], m.Version)
	buf[4] = byte(d)
	off := 5 + copy(buf[5:], m.ReceiverDomain)
	off += copy(buf[off:], m.ReceiverID[:])
	binary.BigEndian.PutUint32(buf[off:], m.Sequence)
	binary.BigEndian.PutUint32(buf[off+4:], uint32(len(m.Payload)))
	copy(buf[off+8:], m.Payload)
	return buf, nil
}

func DecodeSDPMessage(data []byte) (*SDPMessage, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("%w: data too short: %d", ErrMalformedMessage, len(data))
	}
	m := &SDPMessage{Version: binary.BigEndian.Uint32(data[0:4])}
	if m.Version != SDPVersion {
		return nil, fmt.Errorf("%w: sdp v%d", ErrUnsupportedVersion, m.Version)
	}
	d := int(data[4])
	if d == 0 || d > xchain.MaxDomainLength {
		return nil, fmt.Errorf("%w: receiver domain length %d", ErrMalformedMessage, d)
	}
	fixed := 5 + d + xchain.IdentityLen + 8
	if len(data) < fixed {
		return nil, fmt.Errorf("%w: data too short for header: %d", ErrMalformedMessage, len(data))
	}
	m.ReceiverDomain = string(data[5 : 5+d])
	off := 5 + d
	copy(m.ReceiverID[:], data[off:off+xchain.IdentityLen])
	off += xchain.IdentityLen
	m.Sequence = binary.BigEndian.Uint32(data[off:])
	payloadLen := binary.BigEndian.Uint32(data[off+4:])
	if uint64(payloadLen) != uint64(len(data)-fixed) {
		return nil, fmt.Errorf("%w: payload length %d, have %d", ErrMalformedMessage, payloadLen, len(data)-fixed)
	}
	m.Payload = append([]byte(nil), data[fixed:]...)
	return m, nil
}

// Lane is the fully specified route of an SDP message sent by msg's
// contract on senderDomain.
func Lane(senderDomain string, msg *AuthMessage, sdp *SDPMessage) xchain.CrossChainLane {
	return xchain.NewLane(senderDomain, msg.Identity, sdp.ReceiverDomain, sdp.ReceiverID)
}

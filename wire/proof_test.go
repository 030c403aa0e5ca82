// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/am"
	"github.com/luxfi/xchain/tlv"
)

func TestProofRoundTrip(t *testing.T) {
	require := require.New(t)

	in := &Proof{
		RequestID:    "req-1",
		RequestLane:  []byte{1, 2},
		ErrorCode:    ErrorCodeOK,
		ErrorMsg:     "",
		SenderDomain: "bank.fin",
		ProofPayload: []byte("endorsed"),
	}
	out, err := DecodeProof(in.Encode())
	require.NoError(err)
	require.Equal(in.RequestID, out.RequestID)
	require.Equal(in.RequestLane, out.RequestLane)
	require.Equal(in.SenderDomain, out.SenderDomain)
	require.Equal(in.ProofPayload, out.ProofPayload)
	require.Equal(in.Body(), out.ResponseBody)
	require.True(out.OK())

	// Re-encoding a decoded proof reproduces the same bytes.
	require.Equal(in.Encode(), out.Encode())
}

func TestProofCarriesErrors(t *testing.T) {
	require := require.New(t)

	in := &Proof{ErrorCode: 3, ErrorMsg: "ptc unavailable", ProofPayload: []byte{}}
	out, err := DecodeProof(in.Encode())
	require.NoError(err)
	require.False(out.OK())
	require.Equal(uint32(3), out.ErrorCode)
	require.Equal("ptc unavailable", out.ErrorMsg)
	require.Empty(out.SenderDomain)
}

func TestDecodeProofErrors(t *testing.T) {
	body := tlv.New(tlv.Bytes(TagProofPayload, []byte("p"))).Encode()

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{
			name: "not a packet",
			data: []byte{1},
			err:  tlv.ErrMalformed,
		},
		{
			name: "missing error message",
			data: tlv.New(
				tlv.Uint32(TagErrorCode, 0),
				tlv.Bytes(TagResponseBody, body),
			).Encode(),
			err: tlv.ErrMissingTag,
		},
		{
			name: "missing response body",
			data: tlv.New(
				tlv.Uint32(TagErrorCode, 0),
				tlv.String(TagErrorMsg, ""),
			).Encode(),
			err: tlv.ErrMissingTag,
		},
		{
			name: "error code of wrong width",
			data: tlv.New(
				tlv.Uint16(TagErrorCode, 0),
				tlv.String(TagErrorMsg, ""),
				tlv.Bytes(TagResponseBody, body),
			).Encode(),
			err: tlv.ErrValueWidth,
		},
		{
			name: "body without proof payload",
			data: tlv.New(
				tlv.Uint32(TagErrorCode, 0),
				tlv.String(TagErrorMsg, ""),
				tlv.Bytes(TagResponseBody, tlv.New(tlv.Bytes(9, nil)).Encode()),
			).Encode(),
			err: tlv.ErrMissingTag,
		},
		{
			name: "body is not a packet",
			data: tlv.New(
				tlv.Uint32(TagErrorCode, 0),
				tlv.String(TagErrorMsg, ""),
				tlv.Bytes(TagResponseBody, []byte{1, 2, 3}),
			).Encode(),
			err: tlv.ErrMalformed,
		},
		{
			name: "duplicate tag",
			data: (&tlv.Packet{Version: tlv.Version, Items: []tlv.Item{
				tlv.Uint32(TagErrorCode, 0),
				tlv.Uint32(TagErrorCode, 1),
				tlv.String(TagErrorMsg, ""),
				tlv.Bytes(TagResponseBody, body),
			}}).Encode(),
			err: tlv.ErrDuplicateTag,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			_, err := DecodeProof(tt.data)
			require.ErrorIs(err, ErrMalformedProof)
			require.ErrorIs(err, tt.err)
		})
	}
}

func TestNewEmptyProof(t *testing.T) {
	require := require.New(t)

	msg := &am.AuthMessage{
		Version:  am.AuthMessageV2,
		Identity: xchain.Identity{0xaa},
		Payload:  []byte("payload"),
	}
	empty := NewEmptyProof("bank.fin", msg)
	require.True(empty.OK())

	out, err := DecodeProof(empty.Encode())
	require.NoError(err)
	require.Equal("bank.fin", out.SenderDomain)
	require.Equal(msg.Encode(), out.ProofPayload)

	decoded, err := out.AuthMessage()
	require.NoError(err)
	require.Equal(msg, decoded)
}

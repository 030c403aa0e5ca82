// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/am"
	"github.com/luxfi/xchain/store/badgerdb"
	"github.com/luxfi/xchain/tpbta"
	"github.com/luxfi/xchain/wire"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDecodeProof(t *testing.T) {
	require := require.New(t)

	msg := &am.AuthMessage{
		Version:       am.AuthMessageV2,
		Identity:      xchain.Identity{0xaa},
		UpperProtocol: am.UpperProtocolSDP,
		Payload:       []byte{1, 2, 3},
	}
	raw := wire.NewEmptyProof("bank.fin", msg).Encode()

	out, err := run(t, "decode-proof", "0x"+hex.EncodeToString(raw))
	require.NoError(err)
	require.Contains(out, "Sender Domain: bank.fin\n")
	require.Contains(out, "AM Payload: 010203\n")

	_, err = run(t, "decode-proof", "zz")
	require.ErrorContains(err, "invalid hex input")
}

func TestDecodePackage(t *testing.T) {
	require := require.New(t)

	pkg := &wire.AuthMsgPackage{
		ReceiverIdentity: make([]byte, xchain.IdentityLen),
		SenderDomain:     "bank.fin",
		Hints:            []string{"h0"},
		Proofs:           []string{"AQID"},
	}
	pkg.Flags.SetTrusted(true)
	res, err := pkg.Encode()
	require.NoError(err)
	raw, ok := res.Bytes()
	require.True(ok)

	out, err := run(t, "decode-package", hex.EncodeToString(raw))
	require.NoError(err)
	require.Contains(out, "Flags: {trusted}\n")
	require.Contains(out, "Sender Domain: bank.fin\n")
	require.Contains(out, "  Hint: h0\n")
}

func TestResolve(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	s, err := badgerdb.Open(dir, false, nil)
	require.NoError(err)
	require.NoError(s.Put(&tpbta.TpBTA{
		PTCServiceID: "committee",
		Lane:         xchain.NewBlockchainLane("bank.fin"),
		Version:      3,
	}))
	require.NoError(s.Close())

	out, err := run(t, "resolve", "--storage-location", dir, "--sender-domain", "bank.fin", "--receiver-domain", "shop.retail")
	require.NoError(err)
	require.Contains(out, "PTC Service: committee\n")
	require.Contains(out, "@v3\n")

	out, err = run(t, "resolve", "--storage-location", dir, "--sender-domain", "bank.fin", "--receiver-domain", "shop.retail", "--exact")
	require.NoError(err)
	require.Contains(out, "No TpBTA for ")
}

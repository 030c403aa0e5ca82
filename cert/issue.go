// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cert

import (
	"bytes"
	"fmt"
)

// Issue signs c with s, replacing any existing proof.
func Issue(c *Certificate, s Signer, algo HashAlgo) error {
	digest, err := Digest(algo, c.EncodeToBeSigned())
	if err != nil {
		return err
	}
	sig, err := s.Sign(digest)
	if err != nil {
		return fmt.Errorf("failed to sign certificate %s: %w", c.ID, err)
	}
	c.Proof = IssueProof{
		HashAlgo: algo,
		CertHash: digest,
		SigAlgo:  s.Algo(),
		RawProof: sig,
	}
	return nil
}

// VerifyIssueProof checks that issuer's public key signed c.
func VerifyIssueProof(c *Certificate, issuer CredentialSubject) error {
	digest, err := Digest(c.Proof.HashAlgo, c.EncodeToBeSigned())
	if err != nil {
		return err
	}
	if !bytes.Equal(digest, c.Proof.CertHash) {
		return fmt.Errorf("%w: certificate %s", ErrHashMismatch, c.ID)
	}
	if err := Verify(issuer.PublicKey(), c.Proof.SigAlgo, digest, c.Proof.RawProof); err != nil {
		return fmt.Errorf("certificate %s: %w", c.ID, err)
	}
	return nil
}

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package certtest issues signed certificate chains for tests.
package certtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/xchain"
	"github.com/luxfi/xchain/cert"
)

// Authority is a certificate together with the key that can issue beneath it.
type Authority struct {
	Signer  cert.Signer
	Cert    *cert.Certificate
	Subject cert.CredentialSubject
}

// NewRoot builds a self-signed ROOT certificate owned by a fresh key.
func NewRoot(t testing.TB, bcdnsName string) *Authority {
	signer, err := cert.NewSecp256k1Signer(nil)
	require.NoError(t, err)
	return NewRootWithSigner(t, bcdnsName, signer)
}

// NewRootWithSigner builds a self-signed ROOT certificate owned by signer.
func NewRootWithSigner(t testing.TB, bcdnsName string, signer cert.Signer) *Authority {
	subject := &cert.TrustRootSubject{
		BCDNSName:        bcdnsName,
		RootOwner:        cert.NewPublicKeyIdentity(signer.PublicKey()),
		SubjectPublicKey: signer.PublicKey(),
	}
	c := newCertificate(xchain.RootDomainSpace, cert.TypeTrustRoot, subject.RootOwner, subject)
	require.NoError(t, cert.Issue(c, signer, cert.HashSHA256))
	return &Authority{Signer: signer, Cert: c, Subject: subject}
}

// IssueDomainSpace issues a domain-space certificate for name under a.
func (a *Authority) IssueDomainSpace(t testing.TB, name string) *Authority {
	signer, err := cert.NewSecp256k1Signer(nil)
	require.NoError(t, err)
	return a.issueDomainName(t, name, cert.DomainSpace, signer, cert.HashSHA3256)
}

// IssueDomain issues a leaf domain certificate for name under a.
func (a *Authority) IssueDomain(t testing.TB, name string) *Authority {
	signer, err := cert.NewEd25519Signer(nil)
	require.NoError(t, err)
	return a.issueDomainName(t, name, cert.Domain, signer, cert.HashKeccak256)
}

// IssuePTC issues a PTC certificate for service under a.
func (a *Authority) IssuePTC(t testing.TB, service string) *Authority {
	signer, err := cert.NewSecp256k1Signer(nil)
	require.NoError(t, err)
	subject := &cert.PTCSubject{
		Version:          1,
		ServiceName:      service,
		PTCType:          cert.PTCTypeCommittee,
		ApplicantID:      cert.NewKeyHashIdentity(signer.PublicKey()),
		SubjectPublicKey: signer.PublicKey(),
	}
	c := newCertificate(service, cert.TypePTC, a.Subject.Applicant(), subject)
	require.NoError(t, cert.Issue(c, a.Signer, cert.HashSHA256))
	return &Authority{Signer: signer, Cert: c, Subject: subject}
}

func (a *Authority) issueDomainName(
	t testing.TB,
	name string,
	nameType cert.DomainNameType,
	signer cert.Signer,
	hash cert.HashAlgo,
) *Authority {
	subject := &cert.DomainNameSubject{
		Version:           1,
		NameType:          nameType,
		ParentDomainSpace: a.Subject.Name(),
		DomainName:        name,
		ApplicantID:       cert.NewPublicKeyIdentity(signer.PublicKey()),
		SubjectPublicKey:  signer.PublicKey(),
	}
	c := newCertificate(name, cert.TypeDomainName, a.Subject.Applicant(), subject)
	require.NoError(t, cert.Issue(c, a.Signer, hash))
	return &Authority{Signer: signer, Cert: c, Subject: subject}
}

// Resign replaces the proof on c using a's key.
func (a *Authority) Resign(t testing.TB, c *cert.Certificate) {
	require.NoError(t, cert.Issue(c, a.Signer, c.Proof.HashAlgo))
}

// TamperSignature returns a copy of c with one signature byte flipped.
func TamperSignature(c *cert.Certificate) *cert.Certificate {
	out := Clone(c)
	out.Proof.RawProof[len(out.Proof.RawProof)-1] ^= 0xff
	return out
}

// Clone deep-copies c through its encoding.
func Clone(c *cert.Certificate) *cert.Certificate {
	out, err := cert.Decode(c.Encode())
	if err != nil {
		panic(err)
	}
	return out
}

func newCertificate(id string, typ cert.Type, issuer cert.ObjectIdentity, subject cert.CredentialSubject) *cert.Certificate {
	now := time.Now()
	return &cert.Certificate{
		Version:           cert.CurrentVersion,
		ID:                id,
		Type:              typ,
		Issuer:            issuer,
		IssuanceDate:      uint64(now.Unix()),
		ExpirationDate:    uint64(now.Add(365 * 24 * time.Hour).Unix()),
		CredentialSubject: subject.Encode(),
	}
}

// Package authsig implements the signed-authorization protocol shared by the
// asset registry and the payment ledger: canonical message digests, Ed25519
// signing, and verification against a set of authorized accounts.
//
// An account is the lowercase hex encoding of an Ed25519 public key, so role
// membership in access-control doubles as the signing-identity directory.
package authsig

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Purpose tags disambiguate operation kinds so a signature for one operation
// can never be replayed against another.
const (
	PurposeMintClaim     = "mint-claim"
	PurposeWithdrawAsset = "withdraw-asset"
	PurposeClaimWithdraw = "claim-withdraw-payment"
)

// DigestSize is the size of a canonical digest in bytes.
const DigestSize = 32

// Digest computes the canonical SHA3-256 digest over a purpose tag and the
// ordered parameters of the authorized operation. Each field is length
// prefixed, so no concatenation of different field lists can collide.
func Digest(purpose string, fields ...string) [DigestSize]byte {
	h := sha3.New256()
	writeField(h, purpose)
	for _, field := range fields {
		writeField(h, field)
	}
	var digest [DigestSize]byte
	h.Sum(digest[:0])
	return digest
}

func writeField(h interface{ Write([]byte) (int, error) }, field string) {
	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(field)))
	_, _ = h.Write(prefix[:])
	_, _ = h.Write([]byte(field))
}

// GenerateKeyPair returns a fresh account identity and its private key.
// Used by fixtures and operational tooling.
func GenerateKeyPair() (string, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, err
	}
	return hex.EncodeToString(pub), priv, nil
}

// Sign signs a canonical digest with the operator's private key.
func Sign(priv ed25519.PrivateKey, digest [DigestSize]byte) []byte {
	return ed25519.Sign(priv, digest[:])
}

// Verify reports whether signature is a valid signature by account over the
// digest. Malformed accounts verify as false, never as an error.
func Verify(account string, digest [DigestSize]byte, signature []byte) bool {
	pub, err := hex.DecodeString(account)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), digest[:], signature)
}

// VerifyAny checks the signature against every candidate account and returns
// the account that produced it. Candidates are the accounts currently holding
// the authorizing role.
func VerifyAny(accounts []string, digest [DigestSize]byte, signature []byte) (string, bool) {
	for _, account := range accounts {
		if Verify(account, digest, signature) {
			return account, true
		}
	}
	return "", false
}

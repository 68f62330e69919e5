// Package prim provides the primitive operations Component A of the
// specification names: a domain-separated KDF over SHAKE-256, a
// hash-to-scalar function over SHA3-512, a 64-byte SHA3-512 hash, CSRNG
// access, constant-time comparison, and secure zeroization.
//
// Grounded on the teacher's internal/testdata package, which reaches for the
// standard library's crypto/sha3 (not the hazmat/turboshake family) for
// exactly this kind of deterministic, domain-separated byte generation.
package prim

import (
	"crypto/rand"
	"crypto/sha3"
	"crypto/subtle"
	"io"
)

// otrMarker is the fixed domain-separation prefix for HashToScalar, per
// §4.A ("SHA3-512(\"OTR4\" || input)").
var otrMarker = [4]byte{'O', 'T', 'R', '4'}

// KDF computes SHAKE-256(domainTag || input), reading n bytes of output.
// Every derived secret in this module is produced by exactly one named
// (domainTag, purpose) pair and never reused across paths (§3).
func KDF(domainTag byte, input []byte, n int) []byte {
	h := sha3.NewSHAKE256()
	_, _ = h.Write([]byte{domainTag})
	_, _ = h.Write(input)
	out := make([]byte, n)
	_, _ = io.ReadFull(h, out)
	return out
}

// Hash returns the 64-byte SHA3-512 digest of input, as used for the
// ratchet's shared-secret mixing, ssid, brace key and chain-link extension.
// It applies no domain-separation prefix of its own: the digest is
// SHA3-512(input) exactly.
func Hash(input []byte) [64]byte {
	return sha3.Sum512(input)
}

// HashToScalarBytes returns the 64-byte SHA3-512 digest of "OTR4" || input,
// the raw material HashToScalar functions reduce into their respective
// scalar fields (§4.A). Kept separate from any particular curve's scalar
// type; the field reduction is done by the caller (internal/ed448's
// SetUniformBytes, which reduces and never rejects).
func HashToScalarBytes(input []byte) [64]byte {
	h := sha3.New512()
	_, _ = h.Write(otrMarker[:])
	_, _ = h.Write(input)
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}

// RandomBytes fills b with operating-system entropy. CSRNG never falls back
// to any internal PRNG state (§4.A).
func RandomBytes(b []byte) error {
	_, err := io.ReadFull(rand.Reader, b)
	return err
}

// ConstantTimeEqual compares a and b without branching on their contents,
// returning false immediately (safely) if lengths differ.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zero overwrites b with zero bytes. Called on every secret's every exit
// path, including error paths (§5 "Zeroization discipline").
//
//go:noinline
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

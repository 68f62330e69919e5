// Package fingerprint implements Component H: deterministic, public
// identifiers derived from identity keys and a session's first shared
// secret — the 56-byte long-term identity fingerprint and the 8-byte
// session identifier (ssid) SMP binds itself to.
//
// Grounded on key_management.c's identity-fingerprint hashing and
// calculate_ssid, with the human-readable hex form the teacher's test
// fixtures use to print fingerprints for display.
package fingerprint

import (
	"encoding/hex"

	"github.com/otrv4/ratchet/internal/prim"
)

// Size is the width in bytes of an identity-key fingerprint (§4.H).
const Size = 56

// SSIDSize is the width in bytes of a session identifier (§4.H).
const SSIDSize = 8

// Fingerprint is the 56-byte hash of a serialized long-term identity public
// key.
type Fingerprint [Size]byte

// Of computes the fingerprint of a serialized identity point: the first 56
// bytes of SHA3-512(serializedIdentityPoint).
func Of(serializedIdentityPoint []byte) Fingerprint {
	digest := prim.Hash(serializedIdentityPoint)
	var fp Fingerprint
	copy(fp[:], digest[:Size])
	return fp
}

// String returns the lowercase hex encoding, the form test fixtures and
// user-facing verification dialogs print.
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// Equal reports whether fp and other name the same identity key.
// Fingerprints are public values; this comparison need not be constant-time.
func (fp Fingerprint) Equal(other Fingerprint) bool {
	return fp == other
}

// SSID is the 8-byte session identifier both parties derive from the first
// ratchet's shared secret, binding SMP sessions (and out-of-band
// verification) to this specific key exchange.
type SSID [SSIDSize]byte

// OfSharedSecret computes ssid as the first 8 bytes of
// SHA3-512(firstSharedSecret) (§4.H).
func OfSharedSecret(firstSharedSecret []byte) SSID {
	digest := prim.Hash(firstSharedSecret)
	var s SSID
	copy(s[:], digest[:SSIDSize])
	return s
}

// String returns the lowercase hex encoding.
func (s SSID) String() string {
	return hex.EncodeToString(s[:])
}

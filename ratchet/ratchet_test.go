package ratchet_test

import (
	"bytes"
	"crypto/sha3"
	"io"
	"testing"

	"github.com/otrv4/ratchet/ratchet"
)

func TestNewIsZeroed(t *testing.T) {
	r := ratchet.New()
	var zeroRoot [ratchet.RootKeySize]byte
	if !bytes.Equal(r.RootKey[:], zeroRoot[:]) {
		t.Fatalf("fresh ratchet must have an all-zero root key")
	}
	if r.ChainA.Last().ID != 0 || r.ChainB.Last().ID != 0 {
		t.Fatalf("fresh ratchet's chains must start at id 0")
	}
}

func TestRekeyDomainsAreDistinct(t *testing.T) {
	shared := bytes.Repeat([]byte{0x00}, 64)
	r := ratchet.Rekey(shared)

	linkA, linkB := r.ChainA.Last(), r.ChainB.Last()
	root := r.RootKey[:]
	a := linkA.Key[:]
	b := linkB.Key[:]

	if bytes.Equal(root, a) || bytes.Equal(root, b) || bytes.Equal(a, b) {
		t.Fatalf("root key, chain_a, chain_b must be pairwise distinct for a fixed shared input")
	}
}

// TestRekeyMatchesKDFVector reproduces the zero-shared-secret root-key
// scenario: root_key = KDF(0x01, shared, 64) for shared = 64 zero bytes. The
// expected value is computed independently with crypto/sha3 directly
// (domain tag then input, squeeze 64 bytes) rather than through
// ratchet.Rekey's own call path, so the test can catch a wrong domain tag,
// wrong write order, or wrong output length the way the derive_root_key
// fixture in the original key-management tests does with gcry_md.
func TestRekeyMatchesKDFVector(t *testing.T) {
	shared := make([]byte, 64)

	h := sha3.NewSHAKE256()
	_, _ = h.Write([]byte{0x01})
	_, _ = h.Write(shared)
	want := make([]byte, 64)
	_, _ = io.ReadFull(h, want)

	r := ratchet.Rekey(shared)
	if !bytes.Equal(r.RootKey[:], want) {
		t.Fatalf("root_key = %x, want %x", r.RootKey[:], want)
	}
}

func TestRekeyIsDeterministic(t *testing.T) {
	shared := []byte("some shared secret, exactly sixty four bytes long, padded out!!!")
	r1 := ratchet.Rekey(shared)
	r2 := ratchet.Rekey(shared)

	if !bytes.Equal(r1.RootKey[:], r2.RootKey[:]) {
		t.Fatalf("Rekey must be a deterministic function of shared")
	}
	k1, k2 := r1.ChainA.Last().Key, r2.ChainA.Last().Key
	if !bytes.Equal(k1[:], k2[:]) {
		t.Fatalf("chain_a must be a deterministic function of shared")
	}
}

// Package ratchet implements Component D: the root key and the two
// symmetric chain stores (chain_a, chain_b) that make up one Double Ratchet
// generation. Directional assignment between chain_a/chain_b ("which one is
// sending") lives in keymanager, which owns the comparison in §4.E.3; this
// package only holds the keyed state and the rekey derivation.
package ratchet

import (
	"github.com/otrv4/ratchet/chain"
	"github.com/otrv4/ratchet/internal/prim"
)

const (
	// RootKeySize is the width in bytes of the root key (§3).
	RootKeySize = 64

	domainRoot   = 0x01
	domainChainA = 0x02
	domainChainB = 0x03
)

// Ratchet is one generation's keyed state: the root key and the heads of
// the two chain stores.
type Ratchet struct {
	RootKey [RootKeySize]byte
	ChainA  *chain.Store
	ChainB  *chain.Store
}

// New allocates a ratchet with a zero root key and two zero-keyed chains at
// id=0.
func New() *Ratchet {
	return &Ratchet{
		ChainA: chain.New(),
		ChainB: chain.New(),
	}
}

// Rekey returns a new ratchet whose root key and both chain heads are
// derived from shared under three disjoint single-byte domain tags (§4.D). The three
// resulting 64-byte outputs are pairwise distinct for any fixed shared
// input (§8 invariant 1), since KDF is a domain-separated SHAKE-256
// instance and the tags differ.
func Rekey(shared []byte) *Ratchet {
	r := New()
	root := prim.KDF(domainRoot, shared, RootKeySize)
	copy(r.RootKey[:], root)
	prim.Zero(root)

	a := prim.KDF(domainChainA, shared, chain.KeySize)
	r.ChainA.SetHead(a)
	prim.Zero(a)

	b := prim.KDF(domainChainB, shared, chain.KeySize)
	r.ChainB.SetHead(b)
	prim.Zero(b)

	return r
}

// Zero zeroizes the root key and both chains' retained key material. Called
// whenever a ratchet is replaced (§4.E.2 step 5).
func (r *Ratchet) Zero() {
	prim.Zero(r.RootKey[:])
	r.ChainA.Zero()
	r.ChainB.Zero()
}

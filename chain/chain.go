// Package chain implements the append-only chain-link store of Component C:
// an ordered sequence of per-message symmetric keys within one ratchet
// direction, where each link is derived from the previous by hashing and
// the previous key is zeroized the instant its successor exists.
//
// Grounded on the source's linked-list chain (key_management.c's
// chain_link_new/derive_next_chain_link/chain_get_by_id), re-architected per
// §9 as an append-only slice indexed by integer id rather than pointer
// chasing, matching the teacher's preference for owned-value slices over
// manually managed links (adratchet.go's skipped-message map).
package chain

import (
	"github.com/otrv4/ratchet/errs"
	"github.com/otrv4/ratchet/internal/prim"
)

const (
	op = "chain"

	// KeySize is the width in bytes of a chain key (§3).
	KeySize = 64
)

// Link is one position in a chain: an id and the 64-byte key at that
// position.
type Link struct {
	ID  uint32
	Key [KeySize]byte
}

// Store is the ordered, append-only sequence of links for one ratchet
// direction. The floor is always id=0; only the most recently appended link
// holds a non-zero key once the store has been extended past it (§3, §8.2).
type Store struct {
	links []Link
}

// New returns a store with a single link at id=0, all-zero key.
func New() *Store {
	return &Store{links: []Link{{ID: 0}}}
}

// Last returns the link with maximal id.
func (s *Store) Last() Link {
	return s.links[len(s.links)-1]
}

// ByID returns the link with the given id, or false if k is below the
// floor or above the maximal id currently stored.
func (s *Store) ByID(k uint32) (Link, bool) {
	for _, l := range s.links {
		if l.ID == k {
			return l, true
		}
	}
	return Link{}, false
}

// SetHead overwrites the key of the single floor link with key. Used only
// when seeding a freshly allocated store (ratchet.Rekey) before any message
// has been derived from it; panics if the store has already been extended.
func (s *Store) SetHead(key []byte) {
	if len(s.links) != 1 {
		panic("chain: SetHead called on an already-extended store")
	}
	copy(s.links[0].Key[:], key)
}

// Extend derives the next link (next.Key = Hash(cur.Key), next.ID =
// cur.ID + 1), zeroizes the current last link's key, and appends the new
// link.
func (s *Store) Extend() Link {
	cur := &s.links[len(s.links)-1]
	digest := prim.Hash(cur.Key[:])
	next := Link{ID: cur.ID + 1}
	copy(next.Key[:], digest[:])
	prim.Zero(cur.Key[:])
	s.links = append(s.links, next)
	return next
}

// ExtendTo extends the store repeatedly until Last().ID == k, returning the
// final link. It fails with errs.OutOfRatchet if k is less than the current
// maximal id — the source's rebuild_chain_keys_up_to silently accepted this
// case; the resolved contract here does not (§4.C, §9 Open Question 2).
func (s *Store) ExtendTo(k uint32) (Link, error) {
	if k < s.Last().ID {
		return Link{}, errs.New(op+".ExtendTo", errs.OutOfRatchet, nil)
	}
	for s.Last().ID < k {
		s.Extend()
	}
	return s.Last(), nil
}

// Zero zeroizes every retained link's key, including the floor link.
func (s *Store) Zero() {
	for i := range s.links {
		prim.Zero(s.links[i].Key[:])
	}
}

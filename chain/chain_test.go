package chain_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/otrv4/ratchet/chain"
	"github.com/otrv4/ratchet/errs"
)

func TestNewStoreHasZeroFloor(t *testing.T) {
	s := chain.New()
	last := s.Last()
	if last.ID != 0 {
		t.Fatalf("floor id = %d, want 0", last.ID)
	}
	var zero [chain.KeySize]byte
	if !bytes.Equal(last.Key[:], zero[:]) {
		t.Fatalf("floor key is not all-zero")
	}
}

func TestExtendAdvancesIDAndHashes(t *testing.T) {
	s := chain.New()
	floorKey := s.Last().Key
	next := s.Extend()
	if next.ID != 1 {
		t.Fatalf("id = %d, want 1", next.ID)
	}
	if bytes.Equal(next.Key[:], floorKey[:]) {
		t.Fatalf("extended key must differ from predecessor")
	}
}

func TestExtendZeroizesPredecessor(t *testing.T) {
	s := chain.New()
	s.Extend()
	l0, ok := s.ByID(0)
	if !ok {
		t.Fatalf("expected id 0 to still be retrievable")
	}
	var zero [chain.KeySize]byte
	if !bytes.Equal(l0.Key[:], zero[:]) {
		t.Fatalf("link 0's key was not zeroized after extension past it")
	}
}

func TestExtendToReachesTarget(t *testing.T) {
	s := chain.New()
	last, err := s.ExtendTo(5)
	if err != nil {
		t.Fatalf("ExtendTo: %v", err)
	}
	if last.ID != 5 {
		t.Fatalf("id = %d, want 5", last.ID)
	}
	for i := uint32(0); i < 5; i++ {
		l, ok := s.ByID(i)
		if !ok {
			t.Fatalf("missing link %d", i)
		}
		var zero [chain.KeySize]byte
		if !bytes.Equal(l.Key[:], zero[:]) {
			t.Fatalf("link %d not zeroized", i)
		}
	}
}

func TestExtendToIsIdempotentAtCurrentID(t *testing.T) {
	s := chain.New()
	s.ExtendTo(3)
	k1 := s.Last().Key
	last, err := s.ExtendTo(3)
	if err != nil {
		t.Fatalf("ExtendTo: %v", err)
	}
	if !bytes.Equal(last.Key[:], k1[:]) {
		t.Fatalf("re-issuing ExtendTo at the same id must not re-derive")
	}
}

func TestExtendToBackwardsIsOutOfRatchet(t *testing.T) {
	s := chain.New()
	s.ExtendTo(3)
	_, err := s.ExtendTo(1)
	if !errors.Is(err, errs.ErrOutOfRatchet) {
		t.Fatalf("expected OutOfRatchet, got %v", err)
	}
}

func TestByIDBeyondLastIsMissing(t *testing.T) {
	s := chain.New()
	s.ExtendTo(2)
	// id 0 and 1 are still retrievable (zeroized); an id that was never
	// reached is missing.
	if _, ok := s.ByID(7); ok {
		t.Fatalf("expected id 7 to be missing")
	}
}

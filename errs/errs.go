// Package errs defines the typed error kinds surfaced by the ratchet and SMP
// engines, per the error handling design in §7 of the specification this
// module implements.
package errs

import "fmt"

// Kind classifies a failure so callers can apply the propagation policy
// without string matching.
type Kind int

const (
	// Malformed indicates wire bytes failed structural or cryptographic
	// validation (length, encoding, subgroup membership).
	Malformed Kind = iota
	// OutOfRatchet indicates an inbound message referenced a ratchet
	// generation that is neither the current one nor current+1.
	OutOfRatchet
	// StateViolation indicates a TLV arrived in a state that does not
	// expect it (e.g. msg_3 while EXPECT1).
	StateViolation
	// ProofInvalid indicates a Schnorr or combined zero-knowledge proof
	// failed verification.
	ProofInvalid
	// VerdictFailure indicates SMP ran to completion and the equality
	// check failed. Not an error in the operational sense: it is a
	// normal terminal event.
	VerdictFailure
	// PrimitiveFailure indicates the underlying crypto primitives
	// (KDF, ECDH, DH) reported an internal error.
	PrimitiveFailure
	// AllocFailure indicates memory exhaustion; fatal to the session.
	AllocFailure
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case OutOfRatchet:
		return "out of ratchet"
	case StateViolation:
		return "state violation"
	case ProofInvalid:
		return "proof invalid"
	case VerdictFailure:
		return "verdict failure"
	case PrimitiveFailure:
		return "primitive failure"
	case AllocFailure:
		return "alloc failure"
	default:
		return "unknown"
	}
}

// Error is the single typed value every exported operation in this module
// returns on failure. Op names the failing operation (e.g.
// "keymanager.NextReceivingKeys") for diagnostics.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, errs.ErrOutOfRatchet) without caring about Op or Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error for the given operation and kind, optionally
// wrapping a lower-level cause.
func New(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinel values for errors.Is comparisons against a Kind regardless of Op
// or wrapped cause.
var (
	ErrMalformed        = &Error{Kind: Malformed}
	ErrOutOfRatchet     = &Error{Kind: OutOfRatchet}
	ErrStateViolation   = &Error{Kind: StateViolation}
	ErrProofInvalid     = &Error{Kind: ProofInvalid}
	ErrVerdictFailure   = &Error{Kind: VerdictFailure}
	ErrPrimitiveFailure = &Error{Kind: PrimitiveFailure}
	ErrAllocFailure     = &Error{Kind: AllocFailure}
)

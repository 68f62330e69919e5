// Package ed448 implements group arithmetic over the Edwards-448
// ("Ed448-Goldilocks") prime-order group: point/scalar validation, encoding,
// and the operations the ratchet and SMP engines need (ECDH, Schnorr-style
// commitments, combined proofs).
//
// Point and scalar arithmetic is delegated to github.com/cloudflare/circl's
// goldilocks package, the constant-time Edwards-448 implementation that
// backs circl's own ed448 signing and x448 key agreement (the same module
// the SAGE-X x25519 key wrapper and Moby's vendored OpenPGP curve25519 fork
// already pull in for Edwards-curve work), wrapped in the method-naming
// shape of github.com/gtank/ristretto255 (Scalar/Element, ScalarBaseMult,
// ScalarMult, SetCanonicalBytes, SetUniformBytes, receiver-as-destination)
// so that callers in keymanager and smp read like the teacher's
// adratchet.go and sig.go ported to Ed448.
//
// The one residual math/big use is SetUniformBytes's wide reduction of an
// arbitrary-length hash digest into a canonical 56-byte scalar before
// handing it to circl: a modular reduction by a public constant, not a
// secret-dependent point operation, so it does not carry the side-channel
// risk scalar multiplication does. Every point operation and every scalar-
// to-scalar operation (Add/Sub/Multiply/Negate, ScalarMult, ScalarBaseMult)
// runs through circl.
package ed448

import (
	"crypto/subtle"
	"math/big"

	"github.com/cloudflare/circl/ecc/goldilocks"
)

const (
	// PointSize is the length in bytes of an encoded point (§4.B, §6.1).
	PointSize = 57
	// ScalarSize is the length in bytes of an encoded scalar (§4.B, §6.1).
	ScalarSize = 56
)

// groupOrder is the prime order of the base point's subgroup, used only by
// SetUniformBytes to reduce wide hash digests before constructing a
// goldilocks.Scalar.
var groupOrder, _ = new(big.Int).SetString(
	"1817096810739017226373309519720011335884103401718295150703725497951"+
		"46003961539585716195755291692375963310293709091662304773755859649779", 10)

// Point is an Edwards-448 curve point.
type Point struct {
	p goldilocks.Point
}

// NewPoint returns a new Point set to the identity element.
func NewPoint() *Point {
	return Identity()
}

// Identity returns the neutral element.
func Identity() *Point {
	return &Point{p: goldilocks.Identity()}
}

// BasePoint returns the standard Ed448 generator G.
func BasePoint() *Point {
	return &Point{p: goldilocks.Generator()}
}

// Add sets pt to p1 + p2 and returns pt.
func (pt *Point) Add(p1, p2 *Point) *Point {
	pt.p.Add(&p1.p, &p2.p)
	return pt
}

// Negate sets pt to -other and returns pt.
func (pt *Point) Negate(other *Point) *Point {
	pt.p.Neg(&other.p)
	return pt
}

// Sub sets pt to p1 - p2 and returns pt.
func (pt *Point) Sub(p1, p2 *Point) *Point {
	var neg Point
	neg.Negate(p2)
	return pt.Add(p1, &neg)
}

// ScalarMult sets pt to [s]base and returns pt, using circl's constant-time
// implementation (no branching on s's bits).
func (pt *Point) ScalarMult(s *Scalar, base *Point) *Point {
	pt.p.ScalarMult(&s.s, &base.p)
	return pt
}

// ScalarBaseMult sets pt to [s]G and returns pt.
func (pt *Point) ScalarBaseMult(s *Scalar) *Point {
	pt.p.ScalarBaseMult(&s.s)
	return pt
}

// Equal reports whether pt == other.
func (pt *Point) Equal(other *Point) bool {
	return pt.p.IsEqual(&other.p)
}

// Valid reports whether pt is a point on the curve. Subgroup membership for
// a deserialized point is established by SetCanonicalBytes, which rejects
// anything circl's decoder won't accept; arithmetic built from valid points
// and scalars cannot leave the curve, so Valid only re-checks that.
func (pt *Point) Valid() bool {
	return pt.p.IsOnCurve()
}

// Bytes returns the canonical 57-byte encoding.
func (pt *Point) Bytes() [PointSize]byte {
	enc, _ := pt.p.MarshalBinary()
	var out [PointSize]byte
	copy(out[:], enc)
	return out
}

// SetCanonicalBytes decodes a 57-byte point encoding into pt, validating
// that it names a point on the curve in the prime-order subgroup. Returns
// (pt, true) on success, (nil, false) on any failure.
func (pt *Point) SetCanonicalBytes(b []byte) (*Point, bool) {
	if len(b) != PointSize {
		return nil, false
	}
	var p goldilocks.Point
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, false
	}
	pt.p = p
	return pt, true
}

// Scalar is an element of the Edwards-448 scalar field (mod the group
// order).
type Scalar struct {
	s goldilocks.Scalar
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar {
	return &Scalar{}
}

// SetCanonicalBytes decodes a 56-byte little-endian scalar, rejecting values
// greater than or equal to the group order.
func SetCanonicalBytes(b []byte) (*Scalar, bool) {
	if len(b) != ScalarSize {
		return nil, false
	}
	var s goldilocks.Scalar
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, false
	}
	return &Scalar{s: s}, true
}

// SetUniformBytes performs wide reduction of an arbitrary-length
// big-endian byte string modulo the group order (§4.A's hash-to-scalar
// map), which must always succeed — unlike SetCanonicalBytes, used for
// untrusted wire scalars, this never rejects. The reduction runs over
// math/big against the public group order, not a secret; the reduced
// result is handed to circl for every subsequent operation.
func SetUniformBytes(b []byte) *Scalar {
	v := new(big.Int).SetBytes(b)
	v.Mod(v, groupOrder)

	be := v.Bytes()
	le := make([]byte, ScalarSize)
	for i := 0; i < len(be) && i < ScalarSize; i++ {
		le[i] = be[len(be)-1-i]
	}

	var s goldilocks.Scalar
	_ = s.UnmarshalBinary(le)
	return &Scalar{s: s}
}

// RandomScalar returns a uniformly random scalar derived from the given
// entropy source (64 bytes recommended for negligible modular bias).
func RandomScalar(randBytes []byte) *Scalar {
	return SetUniformBytes(randBytes)
}

// Bytes returns the canonical 56-byte little-endian encoding.
func (s *Scalar) Bytes() [ScalarSize]byte {
	enc, _ := s.s.MarshalBinary()
	var out [ScalarSize]byte
	copy(out[:], enc)
	return out
}

// Equal reports whether s == other in constant time.
func (s *Scalar) Equal(other *Scalar) bool {
	a := s.Bytes()
	b := other.Bytes()
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// Add sets s to s1 + s2 mod q and returns s.
func (s *Scalar) Add(s1, s2 *Scalar) *Scalar {
	s.s.Add(&s1.s, &s2.s)
	return s
}

// Sub sets s to s1 - s2 mod q and returns s.
func (s *Scalar) Sub(s1, s2 *Scalar) *Scalar {
	s.s.Sub(&s1.s, &s2.s)
	return s
}

// Multiply sets s to s1 * s2 mod q and returns s.
func (s *Scalar) Multiply(s1, s2 *Scalar) *Scalar {
	s.s.Mul(&s1.s, &s2.s)
	return s
}

// Negate sets s to -other mod q and returns s.
func (s *Scalar) Negate(other *Scalar) *Scalar {
	s.s.Neg(&other.s)
	return s
}

// Zero overwrites the scalar's value in place, per the zeroization
// discipline of §5. After Zero, the Scalar must not be used.
func (s *Scalar) Zero() {
	s.s = goldilocks.Scalar{}
}

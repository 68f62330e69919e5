// Package smp implements Components F and G: the Socialist Millionaires'
// Protocol context and the four-message zero-knowledge proof engine that
// lets two parties confirm they share the same secret without revealing it.
//
// Grounded structurally on the teacher's sig.Sign/Verify (Schnorr commit/
// challenge/response shape) and pake.Initiate/Respond (multi-message
// handshake state threading a context struct across calls), with the exact
// message formulas and domain-separation tags ported from
// original_source/src/smp.c's generate_smp_msg_1..4/smp_msg_4_verify.
package smp

import (
	"github.com/otrv4/ratchet/errs"
	"github.com/otrv4/ratchet/fingerprint"
	"github.com/otrv4/ratchet/internal/ed448"
	"github.com/otrv4/ratchet/internal/prim"
)

const op = "smp"

// State is a node in the SMP state machine (§4.G).
type State int

const (
	Expect1 State = iota
	Expect2
	Expect3
	Expect4
)

// Domain tags for each Schnorr/combined-proof challenge hash, disjoint
// across the whole protocol run (§4.G).
const (
	tagC2  byte = 0x01
	tagC3  byte = 0x02
	tagC2B byte = 0x03
	tagC3B byte = 0x04
	tagCPB byte = 0x05
	tagCPA byte = 0x06
	tagCRA byte = 0x07
	tagCRB byte = 0x08

	// secretTag domain-separates the shared-secret derivation from every
	// other SHAKE-256 use in this package; it is the single version byte
	// generate_smp_secret hashes ahead of the fingerprint/ssid/answer
	// preimage.
	secretTag byte = 0x01
)

// Context holds one SMP run's accumulated state: the shared secret derived
// from fingerprints and ssid, the protocol's private scalars, and the
// public points cached between messages. Context is single-use per run;
// Abort (or a successful/failed verdict) resets it.
type Context struct {
	State    State
	Progress int // 0, 25, 50, 75, 100

	secret [64]byte

	a2, a3, b3 *ed448.Scalar
	g2, g3     *ed448.Point
	g3a, g3b   *ed448.Point
	pb, qb     *ed448.Point
	paMinusPb  *ed448.Point
	qaMinusQb  *ed448.Point

	msg1 *Message1
}

// NewContext returns a context in Expect1 with no secret set yet. The
// secret depends on the user's answer, which the initiator supplies
// up front and the responder only learns after ReceiveMessage1's
// ASK_FOR_ANSWER signal — so SetSecret is a separate step from
// construction.
func NewContext() *Context {
	return &Context{State: Expect1}
}

// SetSecret derives and stores the shared SMP secret from the two parties'
// identity fingerprints, the session ssid, and the user-supplied answer
// (§4.F). The initiator calls this before GenerateMessage1; the responder
// calls it after ReceiveMessage1 once their own user supplies an answer,
// before GenerateMessage2. The preimage puts the initiator's fingerprint
// first: a context that has already received message 1 (the responder)
// hashes theirFP ahead of ourFP, so both parties derive the same secret
// from the same answer.
func (c *Context) SetSecret(ourFP, theirFP fingerprint.Fingerprint, ssid fingerprint.SSID, answer []byte) {
	first, second := ourFP, theirFP
	if c.msg1 != nil {
		first, second = theirFP, ourFP
	}
	buf := make([]byte, 0, 56+56+8+len(answer))
	buf = append(buf, first[:]...)
	buf = append(buf, second[:]...)
	buf = append(buf, ssid[:]...)
	buf = append(buf, answer...)

	copy(c.secret[:], prim.KDF(secretTag, buf, len(c.secret)))
	prim.Zero(buf)
}

// schnorrCommit picks a random scalar r, returns its base-point commitment
// R = G*r, and the pair for later response computation.
func schnorrCommit() (r *ed448.Scalar, R *ed448.Point, err error) {
	seed := make([]byte, 64)
	if err := prim.RandomBytes(seed); err != nil {
		return nil, nil, err
	}
	r = ed448.SetUniformBytes(seed)
	prim.Zero(seed)
	R = new(ed448.Point).ScalarBaseMult(r)
	return r, R, nil
}

// schnorrChallenge computes c = HS(tag || serialize(R)).
func schnorrChallenge(tag byte, R *ed448.Point) *ed448.Scalar {
	Rb := R.Bytes()
	buf := make([]byte, 1+len(Rb))
	buf[0] = tag
	copy(buf[1:], Rb[:])
	digest := prim.HashToScalarBytes(buf)
	return ed448.SetUniformBytes(digest[:])
}

// schnorrRespond computes d = r - priv*c mod q.
func schnorrRespond(r, priv, c *ed448.Scalar) *ed448.Scalar {
	prod := new(ed448.Scalar).Multiply(priv, c)
	return new(ed448.Scalar).Sub(r, prod)
}

// schnorrVerify reconstructs R' = G*d + pub*c and checks the challenge
// recomputed from R' matches c — the standard Schnorr verification
// rearrangement that avoids ever reconstructing R directly from the prover.
func schnorrVerify(tag byte, pub *ed448.Point, c, d *ed448.Scalar) bool {
	gd := new(ed448.Point).ScalarBaseMult(d)
	pubC := new(ed448.Point).ScalarMult(c, pub)
	rPrime := new(ed448.Point).Add(gd, pubC)
	cPrime := schnorrChallenge(tag, rPrime)
	return c.Equal(cPrime)
}

func randomScalar() (*ed448.Scalar, error) {
	seed := make([]byte, 64)
	if err := prim.RandomBytes(seed); err != nil {
		return nil, err
	}
	s := ed448.SetUniformBytes(seed)
	prim.Zero(seed)
	return s, nil
}

func hashToScalar(input []byte) *ed448.Scalar {
	digest := prim.HashToScalarBytes(input)
	return ed448.SetUniformBytes(digest[:])
}

func pointBytesWithTag(tag byte, points ...*ed448.Point) []byte {
	buf := make([]byte, 0, 1+len(points)*ed448.PointSize)
	buf = append(buf, tag)
	for _, p := range points {
		b := p.Bytes()
		buf = append(buf, b[:]...)
	}
	return buf
}

func hashPointsToScalar(tag byte, points ...*ed448.Point) *ed448.Scalar {
	digest := prim.HashToScalarBytes(pointBytesWithTag(tag, points...))
	return ed448.SetUniformBytes(digest[:])
}

// secretAsScalar reduces the SMP context's 64-byte shared secret into the
// scalar field, the "x" (initiator) or "y" (responder) of §4.G.
func (c *Context) secretAsScalar() *ed448.Scalar {
	return hashToScalar(c.secret[:])
}

// Abort resets the context to Expect1 and zeroizes every retained secret,
// matching the "any → user abort → EXPECT1" transition (§4.G state table).
func (c *Context) Abort() {
	c.State = Expect1
	c.Progress = 0
	c.zeroizeAll()
}

func (c *Context) zeroizeAll() {
	for _, s := range []*ed448.Scalar{c.a2, c.a3, c.b3} {
		if s != nil {
			s.Zero()
		}
	}
	c.a2, c.a3, c.b3 = nil, nil, nil
	c.g2, c.g3, c.g3a, c.g3b = nil, nil, nil, nil
	c.pb, c.qb, c.paMinusPb, c.qaMinusQb = nil, nil, nil, nil
	c.msg1 = nil
	prim.Zero(c.secret[:])
}

func fail(c *Context, op string, kind errs.Kind, cause error) error {
	c.Abort()
	return errs.New(op, kind, cause)
}

// genCompoundProof produces the Pb/Qb-shaped (or Pa/Qa-shaped) commitment
// pair P = G3*r4, Q = G*r4 + G2*secret, together with a single Schnorr-style
// proof of knowledge of (r4, secret) under domain tag (§4.G msg_2/msg_3).
func genCompoundProof(tag byte, g3, g2 *ed448.Point, secret *ed448.Scalar) (P, Q *ed448.Point, cp, d5, d6 *ed448.Scalar, err error) {
	r4, err := randomScalar()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	r5, err := randomScalar()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	r6, err := randomScalar()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	P = new(ed448.Point).ScalarMult(r4, g3)
	Q = new(ed448.Point).Add(new(ed448.Point).ScalarBaseMult(r4), new(ed448.Point).ScalarMult(secret, g2))

	commit0 := new(ed448.Point).ScalarMult(r5, g3)
	commit1 := new(ed448.Point).Add(new(ed448.Point).ScalarBaseMult(r5), new(ed448.Point).ScalarMult(r6, g2))
	cp = hashPointsToScalar(tag, commit0, commit1)
	d5 = schnorrRespond(r5, r4, cp)
	d6 = schnorrRespond(r6, secret, cp)

	r4.Zero()
	r5.Zero()
	r6.Zero()
	return P, Q, cp, d5, d6, nil
}

// verifyCompoundProof checks a genCompoundProof output by reconstructing
// the prover's two commitments from (d5, d6, cp) and recomputing the
// challenge.
func verifyCompoundProof(tag byte, g3, g2, P, Q *ed448.Point, cp, d5, d6 *ed448.Scalar) bool {
	t0 := new(ed448.Point).Add(new(ed448.Point).ScalarMult(d5, g3), new(ed448.Point).ScalarMult(cp, P))
	t1 := new(ed448.Point).Add(
		new(ed448.Point).Add(new(ed448.Point).ScalarBaseMult(d5), new(ed448.Point).ScalarMult(d6, g2)),
		new(ed448.Point).ScalarMult(cp, Q),
	)
	cpPrime := hashPointsToScalar(tag, t0, t1)
	return cp.Equal(cpPrime)
}

// genDLEQProof proves knowledge of priv such that pub1 = base1*priv and
// pub2 = base2*priv (a Chaum-Pedersen discrete-log-equality proof), used for
// the cr proofs under tags 0x07/0x08 (§4.G).
func genDLEQProof(tag byte, base1, base2 *ed448.Point, priv *ed448.Scalar) (cr, d7 *ed448.Scalar, err error) {
	r7, err := randomScalar()
	if err != nil {
		return nil, nil, err
	}
	R1 := new(ed448.Point).ScalarMult(r7, base1)
	R2 := new(ed448.Point).ScalarMult(r7, base2)
	cr = hashPointsToScalar(tag, R1, R2)
	d7 = schnorrRespond(r7, priv, cr)
	r7.Zero()
	return cr, d7, nil
}

// verifyDLEQProof checks a genDLEQProof output given the two public values
// pub1, pub2 the prover claims share the discrete log priv relative to
// base1, base2 respectively.
func verifyDLEQProof(tag byte, base1, base2, pub1, pub2 *ed448.Point, cr, d7 *ed448.Scalar) bool {
	R1p := new(ed448.Point).Add(new(ed448.Point).ScalarMult(d7, base1), new(ed448.Point).ScalarMult(cr, pub1))
	R2p := new(ed448.Point).Add(new(ed448.Point).ScalarMult(d7, base2), new(ed448.Point).ScalarMult(cr, pub2))
	crPrime := hashPointsToScalar(tag, R1p, R2p)
	return cr.Equal(crPrime)
}

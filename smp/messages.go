package smp

import (
	"github.com/otrv4/ratchet/errs"
	"github.com/otrv4/ratchet/internal/ed448"
)

// Message1 is the initiator's opening message: an optional plaintext
// question and two Schnorr proofs of knowledge of a2, a3.
type Message1 struct {
	Question   []byte
	G2a, G3a   *ed448.Point
	C2, D2     *ed448.Scalar
	C3, D3     *ed448.Scalar
}

// Message2 is the responder's reply: two Schnorr proofs (domains 0x03,
// 0x04) plus the Pb/Qb compound proof (domain 0x05).
type Message2 struct {
	G2b, G3b *ed448.Point
	C2, D2   *ed448.Scalar
	C3, D3   *ed448.Scalar
	Pb, Qb   *ed448.Point
	Cp       *ed448.Scalar
	D5, D6   *ed448.Scalar
}

// Message3 is the initiator's response: the Pa/Qa compound proof (domain
// 0x06) plus the Ra discrete-log-equality proof (domain 0x07).
type Message3 struct {
	Pa, Qa *ed448.Point
	Cp     *ed448.Scalar
	D5, D6 *ed448.Scalar
	Ra     *ed448.Point
	Cr, D7 *ed448.Scalar
}

// Message4 is the responder's closing message: the Rb
// discrete-log-equality proof (domain 0x08).
type Message4 struct {
	Rb     *ed448.Point
	Cr, D7 *ed448.Scalar
}

// GenerateMessage1 starts an SMP run as initiator: picks a2, a3, commits
// G2a = G*a2, G3a = G*a3, and proves knowledge of both under domains
// 0x01/0x02. Requires SetSecret to have been called. Expect1 → Expect2.
func GenerateMessage1(c *Context, question []byte) (*Message1, error) {
	if c.State != Expect1 {
		return nil, fail(c, op+".GenerateMessage1", errs.StateViolation, nil)
	}

	a2, err := randomScalar()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage1", errs.PrimitiveFailure, err)
	}
	a3, err := randomScalar()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage1", errs.PrimitiveFailure, err)
	}
	c.a2, c.a3 = a2, a3

	G2a := new(ed448.Point).ScalarBaseMult(a2)
	G3a := new(ed448.Point).ScalarBaseMult(a3)

	r2, R2, err := schnorrCommit()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage1", errs.PrimitiveFailure, err)
	}
	c2 := schnorrChallenge(tagC2, R2)
	d2 := schnorrRespond(r2, a2, c2)
	r2.Zero()

	r3, R3, err := schnorrCommit()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage1", errs.PrimitiveFailure, err)
	}
	c3 := schnorrChallenge(tagC3, R3)
	d3 := schnorrRespond(r3, a3, c3)
	r3.Zero()

	c.State = Expect2
	c.Progress = 25

	return &Message1{Question: question, G2a: G2a, C2: c2, D2: d2, G3a: G3a, C3: c3, D3: d3}, nil
}

// ReceiveMessage1 validates and caches the initiator's opening message,
// returning the optional question to surface to the user. Per the state
// table this is the "ASK_FOR_ANSWER" event: the context remains in
// Expect1, awaiting the local user's answer before GenerateMessage2.
func ReceiveMessage1(c *Context, msg *Message1) ([]byte, error) {
	if c.State != Expect1 {
		return nil, fail(c, op+".ReceiveMessage1", errs.StateViolation, nil)
	}
	if msg.G2a == nil || msg.G3a == nil || !msg.G2a.Valid() || !msg.G3a.Valid() {
		return nil, fail(c, op+".ReceiveMessage1", errs.Malformed, nil)
	}
	c.msg1 = msg
	c.g3a = msg.G3a
	return msg.Question, nil
}

// GenerateMessage2 completes the responder's half of the exchange after
// ReceiveMessage1 and SetSecret: picks b2, b3, proves knowledge of both
// under domains 0x03/0x04, derives the shared G2/G3, and produces the
// Pb/Qb compound proof under domain 0x05. Expect1 → Expect3.
func GenerateMessage2(c *Context) (*Message2, error) {
	if c.State != Expect1 || c.msg1 == nil {
		return nil, fail(c, op+".GenerateMessage2", errs.StateViolation, nil)
	}

	b2, err := randomScalar()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage2", errs.PrimitiveFailure, err)
	}
	b3, err := randomScalar()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage2", errs.PrimitiveFailure, err)
	}
	c.b3 = b3

	G2b := new(ed448.Point).ScalarBaseMult(b2)
	G3b := new(ed448.Point).ScalarBaseMult(b3)

	r2, R2, err := schnorrCommit()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage2", errs.PrimitiveFailure, err)
	}
	c2 := schnorrChallenge(tagC2B, R2)
	d2 := schnorrRespond(r2, b2, c2)
	r2.Zero()

	r3, R3, err := schnorrCommit()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage2", errs.PrimitiveFailure, err)
	}
	c3 := schnorrChallenge(tagC3B, R3)
	d3 := schnorrRespond(r3, b3, c3)
	r3.Zero()

	c.g2 = new(ed448.Point).ScalarMult(b2, c.msg1.G2a)
	c.g3 = new(ed448.Point).ScalarMult(b3, c.msg1.G3a)
	b2.Zero()

	secret := c.secretAsScalar()
	Pb, Qb, cp, d5, d6, err := genCompoundProof(tagCPB, c.g3, c.g2, secret)
	secret.Zero()
	if err != nil {
		return nil, fail(c, op+".GenerateMessage2", errs.PrimitiveFailure, err)
	}
	c.pb, c.qb = Pb, Qb

	c.State = Expect3
	c.Progress = 50

	return &Message2{G2b: G2b, C2: c2, D2: d2, G3b: G3b, C3: c3, D3: d3, Pb: Pb, Qb: Qb, Cp: cp, D5: d5, D6: d6}, nil
}

// ReceiveMessage2AndGenerateMessage3 verifies the responder's message,
// derives the shared G2/G3, produces the Pa/Qa compound proof under domain
// 0x06 and the Ra discrete-log-equality proof under domain 0x07, and caches
// Pa-Pb and Qa-Qb for later verdict and proof steps. Expect2 → Expect4.
func ReceiveMessage2AndGenerateMessage3(c *Context, msg *Message2) (*Message3, error) {
	if c.State != Expect2 {
		return nil, fail(c, op+".ReceiveMessage2", errs.StateViolation, nil)
	}
	if !msg.G2b.Valid() || !msg.G3b.Valid() || !msg.Pb.Valid() || !msg.Qb.Valid() {
		return nil, fail(c, op+".ReceiveMessage2", errs.Malformed, nil)
	}
	if !schnorrVerify(tagC2B, msg.G2b, msg.C2, msg.D2) || !schnorrVerify(tagC3B, msg.G3b, msg.C3, msg.D3) {
		return nil, fail(c, op+".ReceiveMessage2", errs.ProofInvalid, nil)
	}

	c.g2 = new(ed448.Point).ScalarMult(c.a2, msg.G2b)
	c.g3 = new(ed448.Point).ScalarMult(c.a3, msg.G3b)
	c.g3b = msg.G3b

	if !verifyCompoundProof(tagCPB, c.g3, c.g2, msg.Pb, msg.Qb, msg.Cp, msg.D5, msg.D6) {
		return nil, fail(c, op+".ReceiveMessage2", errs.ProofInvalid, nil)
	}
	c.qb = msg.Qb

	secret := c.secretAsScalar()
	Pa, Qa, cp, d5, d6, err := genCompoundProof(tagCPA, c.g3, c.g2, secret)
	secret.Zero()
	if err != nil {
		return nil, fail(c, op+".ReceiveMessage2", errs.PrimitiveFailure, err)
	}

	c.paMinusPb = new(ed448.Point).Sub(Pa, msg.Pb)
	c.qaMinusQb = new(ed448.Point).Sub(Qa, msg.Qb)

	Ra := new(ed448.Point).ScalarMult(c.a3, c.qaMinusQb)
	cr, d7, err := genDLEQProof(tagCRA, ed448.BasePoint(), c.qaMinusQb, c.a3)
	if err != nil {
		return nil, fail(c, op+".ReceiveMessage2", errs.PrimitiveFailure, err)
	}

	c.State = Expect4
	c.Progress = 75

	return &Message3{Pa: Pa, Qa: Qa, Cp: cp, D5: d5, D6: d6, Ra: Ra, Cr: cr, D7: d7}, nil
}

// ReceiveMessage3AndGenerateMessage4 verifies the initiator's message,
// computes the verdict, produces the closing Rb proof under domain 0x08,
// and resets the context to Expect1 with all secrets zeroized regardless of
// outcome. Expect3 → Expect1.
func ReceiveMessage3AndGenerateMessage4(c *Context, msg *Message3) (*Message4, bool, error) {
	if c.State != Expect3 {
		return nil, false, fail(c, op+".ReceiveMessage3", errs.StateViolation, nil)
	}
	if !msg.Pa.Valid() || !msg.Qa.Valid() || !msg.Ra.Valid() {
		return nil, false, fail(c, op+".ReceiveMessage3", errs.Malformed, nil)
	}
	if !verifyCompoundProof(tagCPA, c.g3, c.g2, msg.Pa, msg.Qa, msg.Cp, msg.D5, msg.D6) {
		return nil, false, fail(c, op+".ReceiveMessage3", errs.ProofInvalid, nil)
	}

	qaMinusQb := new(ed448.Point).Sub(msg.Qa, c.qb)
	if !verifyDLEQProof(tagCRA, ed448.BasePoint(), qaMinusQb, c.g3a, msg.Ra, msg.Cr, msg.D7) {
		return nil, false, fail(c, op+".ReceiveMessage3", errs.ProofInvalid, nil)
	}

	paMinusPb := new(ed448.Point).Sub(msg.Pa, c.pb)
	Rb := new(ed448.Point).ScalarMult(c.b3, qaMinusQb)
	cr, d7, err := genDLEQProof(tagCRB, ed448.BasePoint(), qaMinusQb, c.b3)
	if err != nil {
		return nil, false, fail(c, op+".ReceiveMessage3", errs.PrimitiveFailure, err)
	}

	verdict := paMinusPb.Equal(new(ed448.Point).ScalarMult(c.b3, msg.Ra))

	c.Progress = 100
	c.State = Expect1
	c.zeroizeAll()

	return &Message4{Rb: Rb, Cr: cr, D7: d7}, verdict, nil
}

// ReceiveMessage4 verifies the responder's closing message and computes the
// final verdict, resetting the context to Expect1 with all secrets
// zeroized regardless of outcome. Expect4 → Expect1.
func ReceiveMessage4(c *Context, msg *Message4) (bool, error) {
	if c.State != Expect4 {
		return false, fail(c, op+".ReceiveMessage4", errs.StateViolation, nil)
	}
	if !msg.Rb.Valid() {
		return false, fail(c, op+".ReceiveMessage4", errs.Malformed, nil)
	}
	if !verifyDLEQProof(tagCRB, ed448.BasePoint(), c.qaMinusQb, c.g3b, msg.Rb, msg.Cr, msg.D7) {
		return false, fail(c, op+".ReceiveMessage4", errs.ProofInvalid, nil)
	}

	verdict := c.paMinusPb.Equal(new(ed448.Point).ScalarMult(c.a3, msg.Rb))

	c.Progress = 100
	c.State = Expect1
	c.zeroizeAll()

	return verdict, nil
}

// Abort aborts an in-flight SMP run from any state, per the "any → user
// abort → EXPECT1" row of the state table.
func Abort(c *Context) {
	c.Abort()
}

package smp

import (
	"github.com/otrv4/ratchet/errs"
	"github.com/otrv4/ratchet/tlv"
	"github.com/otrv4/ratchet/wire"
)

// Encode serializes msg as the TLV value layout of §6.1: a length-prefixed
// optional question followed by G2a, c2, d2, G3a, c3, d3.
func (msg *Message1) Encode() []byte {
	var b []byte
	b = wire.PutData(b, msg.Question)
	b = wire.PutPoint(b, msg.G2a)
	b = wire.PutScalar(b, msg.C2)
	b = wire.PutScalar(b, msg.D2)
	b = wire.PutPoint(b, msg.G3a)
	b = wire.PutScalar(b, msg.C3)
	b = wire.PutScalar(b, msg.D3)
	return b
}

// DecodeMessage1 parses the TLV value layout produced by Message1.Encode.
func DecodeMessage1(b []byte) (*Message1, error) {
	question, n, err := wire.GetData(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage1", errs.Malformed, err)
	}
	b = b[n:]

	G2a, n, err := wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage1", errs.Malformed, err)
	}
	b = b[n:]
	c2, n, err := wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage1", errs.Malformed, err)
	}
	b = b[n:]
	d2, n, err := wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage1", errs.Malformed, err)
	}
	b = b[n:]
	G3a, n, err := wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage1", errs.Malformed, err)
	}
	b = b[n:]
	c3, n, err := wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage1", errs.Malformed, err)
	}
	b = b[n:]
	d3, _, err := wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage1", errs.Malformed, err)
	}

	return &Message1{Question: question, G2a: G2a, C2: c2, D2: d2, G3a: G3a, C3: c3, D3: d3}, nil
}

// Encode serializes msg as G2b, c2, d2, G3b, c3, d3, Pb, Qb, cp, d5, d6.
func (msg *Message2) Encode() []byte {
	var b []byte
	b = wire.PutPoint(b, msg.G2b)
	b = wire.PutScalar(b, msg.C2)
	b = wire.PutScalar(b, msg.D2)
	b = wire.PutPoint(b, msg.G3b)
	b = wire.PutScalar(b, msg.C3)
	b = wire.PutScalar(b, msg.D3)
	b = wire.PutPoint(b, msg.Pb)
	b = wire.PutPoint(b, msg.Qb)
	b = wire.PutScalar(b, msg.Cp)
	b = wire.PutScalar(b, msg.D5)
	b = wire.PutScalar(b, msg.D6)
	return b
}

// DecodeMessage2 parses the TLV value layout produced by Message2.Encode.
func DecodeMessage2(b []byte) (*Message2, error) {
	var n int
	var err error
	msg := &Message2{}

	msg.G2b, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.C2, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.D2, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.G3b, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.C3, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.D3, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.Pb, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.Qb, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.Cp, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.D5, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}
	b = b[n:]
	msg.D6, _, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage2", errs.Malformed, err)
	}

	return msg, nil
}

// Encode serializes msg as Pa, Qa, cp, d5, d6, Ra, cr, d7.
func (msg *Message3) Encode() []byte {
	var b []byte
	b = wire.PutPoint(b, msg.Pa)
	b = wire.PutPoint(b, msg.Qa)
	b = wire.PutScalar(b, msg.Cp)
	b = wire.PutScalar(b, msg.D5)
	b = wire.PutScalar(b, msg.D6)
	b = wire.PutPoint(b, msg.Ra)
	b = wire.PutScalar(b, msg.Cr)
	b = wire.PutScalar(b, msg.D7)
	return b
}

// DecodeMessage3 parses the TLV value layout produced by Message3.Encode.
func DecodeMessage3(b []byte) (*Message3, error) {
	var n int
	var err error
	msg := &Message3{}

	msg.Pa, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}
	b = b[n:]
	msg.Qa, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}
	b = b[n:]
	msg.Cp, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}
	b = b[n:]
	msg.D5, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}
	b = b[n:]
	msg.D6, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}
	b = b[n:]
	msg.Ra, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}
	b = b[n:]
	msg.Cr, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}
	b = b[n:]
	msg.D7, _, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage3", errs.Malformed, err)
	}

	return msg, nil
}

// Encode serializes msg as Rb, cr, d7.
func (msg *Message4) Encode() []byte {
	var b []byte
	b = wire.PutPoint(b, msg.Rb)
	b = wire.PutScalar(b, msg.Cr)
	b = wire.PutScalar(b, msg.D7)
	return b
}

// DecodeMessage4 parses the TLV value layout produced by Message4.Encode.
func DecodeMessage4(b []byte) (*Message4, error) {
	var n int
	var err error
	msg := &Message4{}

	msg.Rb, n, err = wire.GetPoint(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage4", errs.Malformed, err)
	}
	b = b[n:]
	msg.Cr, n, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage4", errs.Malformed, err)
	}
	b = b[n:]
	msg.D7, _, err = wire.GetScalar(b)
	if err != nil {
		return nil, errs.New(op+".DecodeMessage4", errs.Malformed, err)
	}

	return msg, nil
}

// ToTLV wraps msg as the Component I envelope a secure channel actually
// carries.
func (msg *Message1) ToTLV() tlv.TLV {
	return tlv.TLV{Type: tlv.TypeSMPMessage1, Value: msg.Encode()}
}

// ToTLV wraps msg as the Component I envelope a secure channel actually
// carries.
func (msg *Message2) ToTLV() tlv.TLV {
	return tlv.TLV{Type: tlv.TypeSMPMessage2, Value: msg.Encode()}
}

// ToTLV wraps msg as the Component I envelope a secure channel actually
// carries.
func (msg *Message3) ToTLV() tlv.TLV {
	return tlv.TLV{Type: tlv.TypeSMPMessage3, Value: msg.Encode()}
}

// ToTLV wraps msg as the Component I envelope a secure channel actually
// carries.
func (msg *Message4) ToTLV() tlv.TLV {
	return tlv.TLV{Type: tlv.TypeSMPMessage4, Value: msg.Encode()}
}

// AbortTLV produces the empty-value SMP_ABORT envelope a secure channel
// sends when the local user cancels an in-flight run (§5 "Cancellation").
func AbortTLV() tlv.TLV {
	return tlv.TLV{Type: tlv.TypeSMPAbort, Value: nil}
}

// FromTLV decodes t's value into the message type its Type field names,
// rejecting any other type as a state violation.
func FromTLV(t tlv.TLV) (interface{}, error) {
	switch t.Type {
	case tlv.TypeSMPMessage1:
		return DecodeMessage1(t.Value)
	case tlv.TypeSMPMessage2:
		return DecodeMessage2(t.Value)
	case tlv.TypeSMPMessage3:
		return DecodeMessage3(t.Value)
	case tlv.TypeSMPMessage4:
		return DecodeMessage4(t.Value)
	case tlv.TypeSMPAbort:
		return nil, nil
	default:
		return nil, errs.New(op+".FromTLV", errs.StateViolation, nil)
	}
}

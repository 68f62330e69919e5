// Package tlv implements Component I: the type-length-value envelope that
// carries SMP messages over an already-secure channel. The envelope carries
// no framing of its own — the enclosing secure-channel record is a
// concatenation of TLVs.
package tlv

import "github.com/otrv4/ratchet/errs"

const op = "tlv"

// Type identifies the kind of value a TLV carries.
type Type uint16

// The SMP message family and the abort signal, the only types the core
// produces or consumes (§4.I).
const (
	TypeSMPMessage1 Type = 0x0002
	TypeSMPMessage2 Type = 0x0003
	TypeSMPMessage3 Type = 0x0004
	TypeSMPMessage4 Type = 0x0005
	TypeSMPAbort    Type = 0x0006
)

// TLV is one type-length-value record: type u16, length u16, value of
// exactly length bytes.
type TLV struct {
	Type  Type
	Value []byte
}

// Encode serializes t as type(2) || length(2) || value.
func (t TLV) Encode() []byte {
	out := make([]byte, 4+len(t.Value))
	out[0] = byte(t.Type >> 8)
	out[1] = byte(t.Type)
	out[2] = byte(len(t.Value) >> 8)
	out[3] = byte(len(t.Value))
	copy(out[4:], t.Value)
	return out
}

// Decode parses one TLV from the front of b, returning the record and the
// number of bytes consumed. It rejects a declared length that exceeds the
// remaining buffer rather than silently truncating (§8 boundary behavior).
func Decode(b []byte) (TLV, int, error) {
	if len(b) < 4 {
		return TLV{}, 0, errs.New(op+".Decode", errs.Malformed, nil)
	}
	typ := Type(uint16(b[0])<<8 | uint16(b[1]))
	length := int(uint16(b[2])<<8 | uint16(b[3]))
	if 4+length > len(b) {
		return TLV{}, 0, errs.New(op+".Decode", errs.Malformed, nil)
	}
	value := make([]byte, length)
	copy(value, b[4:4+length])
	return TLV{Type: typ, Value: value}, 4 + length, nil
}

// DecodeAll parses a full concatenation of TLVs, as carried by one
// secure-channel record, failing Malformed on any trailing partial record.
func DecodeAll(b []byte) ([]TLV, error) {
	var out []TLV
	for len(b) > 0 {
		t, n, err := Decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		b = b[n:]
	}
	return out, nil
}

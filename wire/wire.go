// Package wire implements the fixed-width and length-prefixed byte encodings
// of Component B: integers, length-prefixed data, MPIs, and Edwards-448
// point/scalar encodings. Every deserializer returns the number of bytes
// consumed or an *errs.Error of kind Malformed.
//
// Grounded on the teacher's domain-separated framing style in thyrse.go
// (left_encode/length_encode) generalized to fixed big-endian integers and
// the point/scalar shapes of internal/ed448.
package wire

import (
	"encoding/binary"

	"github.com/otrv4/ratchet/errs"
	"github.com/otrv4/ratchet/internal/ed448"
)

const op = "wire"

// PutUint8 appends a single byte and returns the buffer.
func PutUint8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// GetUint8 reads one byte from the front of b.
func GetUint8(b []byte) (uint8, int, error) {
	if len(b) < 1 {
		return 0, 0, errs.New(op+".GetUint8", errs.Malformed, nil)
	}
	return b[0], 1, nil
}

// PutUint16 appends a big-endian u16.
func PutUint16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

// GetUint16 reads a big-endian u16 from the front of b.
func GetUint16(b []byte) (uint16, int, error) {
	if len(b) < 2 {
		return 0, 0, errs.New(op+".GetUint16", errs.Malformed, nil)
	}
	return binary.BigEndian.Uint16(b), 2, nil
}

// PutUint32 appends a big-endian u32.
func PutUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// GetUint32 reads a big-endian u32 from the front of b.
func GetUint32(b []byte) (uint32, int, error) {
	if len(b) < 4 {
		return 0, 0, errs.New(op+".GetUint32", errs.Malformed, nil)
	}
	return binary.BigEndian.Uint32(b), 4, nil
}

// PutUint64 appends a big-endian u64.
func PutUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// GetUint64 reads a big-endian u64 from the front of b.
func GetUint64(b []byte) (uint64, int, error) {
	if len(b) < 8 {
		return 0, 0, errs.New(op+".GetUint64", errs.Malformed, nil)
	}
	return binary.BigEndian.Uint64(b), 8, nil
}

// PutData appends a u32 length prefix followed by v.
func PutData(dst []byte, v []byte) []byte {
	dst = PutUint32(dst, uint32(len(v)))
	return append(dst, v...)
}

// GetData reads a u32-length-prefixed byte string from the front of b,
// rejecting a declared length that exceeds the remaining buffer.
func GetData(b []byte) ([]byte, int, error) {
	n, consumed, err := GetUint32(b)
	if err != nil {
		return nil, 0, errs.New(op+".GetData", errs.Malformed, err)
	}
	rest := b[consumed:]
	if uint64(n) > uint64(len(rest)) {
		return nil, 0, errs.New(op+".GetData", errs.Malformed, nil)
	}
	out := make([]byte, n)
	copy(out, rest[:n])
	return out, consumed + int(n), nil
}

// PutMPI appends the canonical MPI encoding of v (big-endian, minimal,
// zero-length for the zero value).
func PutMPI(dst []byte, v []byte) []byte {
	for len(v) > 0 && v[0] == 0 {
		v = v[1:]
	}
	return PutData(dst, v)
}

// GetMPI reads an MPI from the front of b using the same u32-length framing
// as data.
func GetMPI(b []byte) ([]byte, int, error) {
	v, n, err := GetData(b)
	if err != nil {
		return nil, 0, errs.New(op+".GetMPI", errs.Malformed, err)
	}
	if len(v) > 1 && v[0] == 0 {
		return nil, 0, errs.New(op+".GetMPI", errs.Malformed, nil)
	}
	return v, n, nil
}

// PutPoint appends the fixed 57-byte Edwards-448 point encoding.
func PutPoint(dst []byte, p *ed448.Point) []byte {
	enc := p.Bytes()
	return append(dst, enc[:]...)
}

// GetPoint reads a 57-byte point encoding from the front of b, rejecting
// encodings that fail on-curve or subgroup validation.
func GetPoint(b []byte) (*ed448.Point, int, error) {
	if len(b) < ed448.PointSize {
		return nil, 0, errs.New(op+".GetPoint", errs.Malformed, nil)
	}
	p, ok := new(ed448.Point).SetCanonicalBytes(b[:ed448.PointSize])
	if !ok {
		return nil, 0, errs.New(op+".GetPoint", errs.Malformed, nil)
	}
	return p, ed448.PointSize, nil
}

// PutScalar appends the fixed 56-byte little-endian scalar encoding.
func PutScalar(dst []byte, s *ed448.Scalar) []byte {
	enc := s.Bytes()
	return append(dst, enc[:]...)
}

// GetScalar reads a 56-byte scalar encoding from the front of b, rejecting
// values greater than or equal to the group order.
func GetScalar(b []byte) (*ed448.Scalar, int, error) {
	if len(b) < ed448.ScalarSize {
		return nil, 0, errs.New(op+".GetScalar", errs.Malformed, nil)
	}
	s, ok := ed448.SetCanonicalBytes(b[:ed448.ScalarSize])
	if !ok {
		return nil, 0, errs.New(op+".GetScalar", errs.Malformed, nil)
	}
	return s, ed448.ScalarSize, nil
}

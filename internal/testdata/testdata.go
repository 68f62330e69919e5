// Package testdata provides a deterministic random bit generator for testing.
package testdata

import (
	"crypto/sha3"
	"io"

	"github.com/otrv4/ratchet/internal/ed448"
)

// DRBG is a deterministic random bit generator based on SHAKE128.
type DRBG struct {
	h *sha3.SHAKE
}

// New returns a new DRBG instance initialized with the given customization string.
func New(customization string) *DRBG {
	h := sha3.NewSHAKE128()
	_, _ = h.Write([]byte(customization))
	return &DRBG{h}
}

// KeyPair returns a deterministic Edwards-448 key pair from the DRBG.
func (d *DRBG) KeyPair() (*ed448.Scalar, *ed448.Point) {
	x := ed448.SetUniformBytes(d.Data(64))
	y := new(ed448.Point).ScalarBaseMult(x)
	return x, y
}

// Scalar returns a single deterministic scalar from the DRBG.
func (d *DRBG) Scalar() *ed448.Scalar {
	return ed448.SetUniformBytes(d.Data(64))
}

// Point returns a single deterministic, subgroup-valid point from the DRBG
// (derived as a scalar multiple of the base point, which is always valid).
func (d *DRBG) Point() *ed448.Point {
	return new(ed448.Point).ScalarBaseMult(d.Scalar())
}

// Data returns n bytes of deterministic data from the DRBG.
func (d *DRBG) Data(n int) []byte {
	b := make([]byte, n)
	_, _ = d.h.Read(b)
	return b
}

// Reader returns pseudorandom reader seeded with a value from this DRBG.
func (d *DRBG) Reader() io.Reader {
	h := sha3.NewSHAKE128()
	_, _ = h.Write(d.Data(32))
	return h
}

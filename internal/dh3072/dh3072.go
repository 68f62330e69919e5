// Package dh3072 implements the fixed RFC3526 Group 15 (3072-bit MODP)
// Diffie-Hellman group used to derive the ratchet's brace key (§4.E, §6.5).
//
// No third-party DH-3072 library appears anywhere in the retrieved example
// pack; §6.5 names this arithmetic as "treated as a primitive library", so
// this package is that primitive, built with math/big the way the original
// C implementation (original_source/src/dh.c) builds it with libgcrypt's
// MPI type: a fixed modulus/generator pair and modexp.
package dh3072

import (
	"math/big"

	"github.com/otrv4/ratchet/internal/prim"
)

// KeySize is the width in bytes of a private exponent and of a serialized
// shared secret.
const KeySize = 384 // 3072 bits

var (
	// modulus is the RFC3526 Group 15 MODP prime, transcribed from the
	// reference implementation's DH3072_MODULUS_S constant.
	modulus, _ = new(big.Int).SetString(""+
		"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1"+
		"29024E088A67CC74020BBEA63B139B22514A08798E3404DD"+
		"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245"+
		"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED"+
		"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D"+
		"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F"+
		"83655D23DCA3AD961C62F356208552BB9ED529077096966D"+
		"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B"+
		"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9"+
		"DE2BCBF6955817183995497CEA956AE515D2261898FA0510"+
		"15728E5A8AAAC42DAD33170D04507A33A85521ABDF1CBA64"+
		"ECFB850458DBEF0A8AEA71575D060C7DB3970F85A6E1E4C7"+
		"ABF5AE8CDB0933D71E8C94E04A25619DCEE3D2261AD2EE6B"+
		"F12FFA06D98A0864D87602733EC86A64521F2B18177B200C"+
		"BBE117577A615D6C770988C0BAD946E208E24FA074E5AB31"+
		"43DB5BFCE0FD108E4B82D120A93AD2CAFFFFFFFFFFFFFFFF", 16)

	generator = big.NewInt(2)
)

// KeyPair is a DH-3072 private/public exponent pair.
type KeyPair struct {
	Priv *big.Int
	Pub  *big.Int
}

// Generate samples a fresh private exponent from CSRNG entropy and derives
// the matching public value g^priv mod p.
func Generate() (*KeyPair, error) {
	buf := make([]byte, KeySize)
	if err := prim.RandomBytes(buf); err != nil {
		return nil, err
	}
	priv := new(big.Int).SetBytes(buf)
	pub := new(big.Int).Exp(generator, priv, modulus)
	return &KeyPair{Priv: priv, Pub: pub}, nil
}

// Zero overwrites the private exponent in place.
func (kp *KeyPair) Zero() {
	kp.Priv.SetInt64(0)
}

// SharedSecret computes theirPub^ourPriv mod p and returns it as a
// fixed-width big-endian byte string, zero-padded on the left.
func SharedSecret(ourPriv *big.Int, theirPub *big.Int) []byte {
	secret := new(big.Int).Exp(theirPub, ourPriv, modulus)
	out := make([]byte, KeySize)
	secret.FillBytes(out)
	return out
}

// ValidatePublic rejects the degenerate values 0, 1, and p-1, and anything
// outside [2, p-2], matching the small-subgroup checks a DH-3072 public
// value must pass before use.
func ValidatePublic(pub *big.Int) bool {
	if pub.Cmp(big.NewInt(1)) <= 0 {
		return false
	}
	pMinus1 := new(big.Int).Sub(modulus, big.NewInt(1))
	return pub.Cmp(pMinus1) < 0
}

// EncodeMPI serializes v as an MPI: a 4-byte big-endian length prefix
// followed by the minimal big-endian unsigned encoding (empty for zero).
func EncodeMPI(v *big.Int) []byte {
	vb := v.Bytes()
	out := make([]byte, 4+len(vb))
	out[0] = byte(len(vb) >> 24)
	out[1] = byte(len(vb) >> 16)
	out[2] = byte(len(vb) >> 8)
	out[3] = byte(len(vb))
	copy(out[4:], vb)
	return out
}

// DecodeMPI parses an MPI from the front of b, returning the value and the
// number of bytes consumed. It rejects a declared length that exceeds the
// remaining buffer.
func DecodeMPI(b []byte) (*big.Int, int, bool) {
	if len(b) < 4 {
		return nil, 0, false
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 || 4+n > len(b) {
		return nil, 0, false
	}
	return new(big.Int).SetBytes(b[4 : 4+n]), 4 + n, true
}

// Package keymanager implements Component E, the Double Ratchet engine:
// DH/ECDH rotation at a fixed cadence, shared-secret mixing into a fresh
// ratchet, per-message key derivation, skipped-message catch-up, and MAC-key
// retirement.
//
// Grounded structurally on the teacher's schemes/complex/adratchet.State
// (local/remote keypairs, send/recv chain roles, a header-driven DH step,
// and a skipped-message catch-up loop), generalized from Ristretto255 and a
// single symmetric thyrse.Protocol chain to Edwards-448 plus a DH-3072
// "brace key" and the two-chain (chain_a/chain_b) role-assignment scheme of
// key_management.c.
package keymanager

import (
	"bytes"
	"math/big"

	"github.com/otrv4/ratchet/chain"
	"github.com/otrv4/ratchet/errs"
	"github.com/otrv4/ratchet/fingerprint"
	"github.com/otrv4/ratchet/internal/dh3072"
	"github.com/otrv4/ratchet/internal/ed448"
	"github.com/otrv4/ratchet/internal/prim"
	"github.com/otrv4/ratchet/ratchet"
)

const op = "keymanager"

const (
	// EncKeySize is the width in bytes of a per-message encryption key.
	EncKeySize = 32
	// MacKeySize is the width in bytes of a per-message MAC key.
	MacKeySize = 64
	// FingerprintSize is the width in bytes of an identity-key fingerprint.
	FingerprintSize = 56
	// SSIDSize is the width in bytes of the session short identifier.
	SSIDSize = 8
	// BraceKeySize is the width in bytes of the accumulated brace key.
	BraceKeySize = 32

	domainEncKey = 0x01
	domainMacKey = 0x02

	// maxCatchUp bounds in-generation skip recovery, the "configurable
	// skip limit" of the concurrency model.
	maxCatchUp = 1000
)

// sharedSecretLabel domain-separates the ECDH/brace-key mixing hash from
// every other use of prim.Hash in this module (ssid, fingerprints).
var sharedSecretLabel = []byte("OTR4-ratchet-shared-secret")

// Role distinguishes which side of the DAKE this manager was seeded as.
// Chain-direction assignment never consults Role (§4.E.3 is a pure function
// of the two public keys); Role is recorded for diagnostics only.
type Role int

const (
	Initiator Role = iota
	Responder
)

type ecdhKeyPair struct {
	priv *ed448.Scalar
	pub  *ed448.Point
}

// Manager is the Double Ratchet state machine.
type Manager struct {
	role Role

	ourECDH   *ecdhKeyPair
	theirECDH *ed448.Point

	ourDH   *dh3072.KeyPair
	theirDH *big.Int

	i uint32
	j uint32

	// ratchetFresh is true when the current generation's sending chain
	// has not yet yielded a key — right after Seed, and right after a
	// peer-triggered catch-up installs a new ratchet. It is the
	// operational witness for the "j == 0 iff the next outbound message
	// starts a new ratchet" invariant (§3): NextSendingKeys consumes it
	// instead of rotating again when it is already true.
	ratchetFresh bool

	current *ratchet.Ratchet

	braceKey [BraceKeySize]byte
	ssid     [SSIDSize]byte
	ssidSet  bool

	oldMACKeys [][MacKeySize]byte
}

// New allocates a key manager with zeroed counters and no ratchet installed.
func New() *Manager {
	return &Manager{current: ratchet.New()}
}

// Seed installs the first ratchet from the DAKE-provided peer contributions:
// their initial ECDH public point and DH-3072 public value. It generates
// this side's own first ECDH and DH-3072 keypairs, computes the first
// shared secret and ssid, and leaves the manager ready for the first
// NextSendingKeys call to use generation 0 directly.
func (m *Manager) Seed(theirECDH *ed448.Point, theirDH *big.Int, role Role) error {
	m.role = role
	m.theirECDH = theirECDH
	m.theirDH = theirDH
	m.i = 0
	m.j = 0

	if err := m.generateEphemeralKeys(); err != nil {
		return errs.New(op+".Seed", errs.PrimitiveFailure, err)
	}
	if err := m.enterNewRatchet(true); err != nil {
		return err
	}
	m.ratchetFresh = true
	return nil
}

// SetTheirKeys records the peer's most recently advertised ECDH public
// point and DH-3072 public value. The messaging layer calls this whenever
// an inbound message header reveals a new public key, before calling
// NextReceivingKeys — matching key_manager_set_their_keys, a standalone
// operation in the source.
func (m *Manager) SetTheirKeys(theirECDH *ed448.Point, theirDH *big.Int) {
	m.theirECDH = theirECDH
	m.theirDH = theirDH
}

// generateEphemeralKeys samples a fresh own ECDH keypair, and — every third
// generation — a fresh own DH-3072 keypair (§4.E.2 step 2 cadence).
func (m *Manager) generateEphemeralKeys() error {
	seed := make([]byte, 64)
	if err := prim.RandomBytes(seed); err != nil {
		return err
	}
	priv := ed448.SetUniformBytes(seed)
	prim.Zero(seed)
	pub := new(ed448.Point).ScalarBaseMult(priv)
	m.ourECDH = &ecdhKeyPair{priv: priv, pub: pub}

	if m.i%3 == 0 {
		dh, err := dh3072.Generate()
		if err != nil {
			return err
		}
		m.ourDH = dh
	}
	return nil
}

// enterNewRatchet computes the ECDH shared point, mixes in the brace key,
// derives the 64-byte shared secret, optionally fixes the session ssid (the
// very first ratchet only), and installs a fresh ratchet.Ratchet (§4.E.2).
func (m *Manager) enterNewRatchet(first bool) error {
	if m.ourECDH.pub.Equal(m.theirECDH) {
		return errs.New(op+".enterNewRatchet", errs.PrimitiveFailure, nil)
	}

	kECDH := new(ed448.Point).ScalarMult(m.ourECDH.priv, m.theirECDH).Bytes()

	if err := m.calculateBraceKey(); err != nil {
		prim.Zero(kECDH[:])
		return errs.New(op+".enterNewRatchet", errs.PrimitiveFailure, err)
	}

	var buf bytes.Buffer
	buf.Write(sharedSecretLabel)
	buf.Write(kECDH[:])
	buf.Write(m.braceKey[:])
	shared := prim.Hash(buf.Bytes())

	if first {
		ssidFull := prim.Hash(shared[:])
		copy(m.ssid[:], ssidFull[:SSIDSize])
		m.ssidSet = true
	}

	if m.current != nil {
		m.current.Zero()
	}
	m.current = ratchet.Rekey(shared[:])

	prim.Zero(kECDH[:])
	prim.Zero(shared[:])
	return nil
}

// calculateBraceKey implements the i%3==0 DH-3072 refresh cadence: every
// third generation mixes in a fresh DH-3072 shared secret; otherwise it
// rehashes the existing brace key forward (§4.E.2 step 2, §8 scenario 6).
func (m *Manager) calculateBraceKey() error {
	if m.i%3 == 0 {
		kDH := dh3072.SharedSecret(m.ourDH.Priv, m.theirDH)
		digest := prim.Hash(kDH)
		copy(m.braceKey[:], digest[:BraceKeySize])
		prim.Zero(kDH)
		m.ourDH.Zero()
		return nil
	}
	digest := prim.Hash(m.braceKey[:])
	copy(m.braceKey[:], digest[:BraceKeySize])
	return nil
}

// decideBetweenChains assigns chain_a/chain_b to sending/receiving by
// comparing the integer encodings of our and their ECDH public keys
// (§4.E.3). Equality is impossible under honest curves and is a hard error.
func (m *Manager) decideBetweenChains() (sending, receiving *chain.Store, err error) {
	ourBytes := m.ourECDH.pub.Bytes()
	theirBytes := m.theirECDH.Bytes()
	switch bytes.Compare(ourBytes[:], theirBytes[:]) {
	case 1:
		return m.current.ChainA, m.current.ChainB, nil
	case -1:
		return m.current.ChainB, m.current.ChainA, nil
	default:
		return nil, nil, errs.New(op+".decideBetweenChains", errs.PrimitiveFailure, nil)
	}
}

func deriveMessageKeys(ck []byte) (enc [EncKeySize]byte, mac [MacKeySize]byte) {
	e := prim.KDF(domainEncKey, ck, EncKeySize)
	copy(enc[:], e)
	prim.Zero(e)
	mc := prim.KDF(domainMacKey, ck, MacKeySize)
	copy(mac[:], mc)
	prim.Zero(mc)
	return enc, mac
}

// NextSendingKeys prepares the outbound message at the next position. It
// rotates (fresh own ECDH, possibly fresh own DH-3072, new ratchet) only
// when the current generation is not fresh and j is 0. On a fresh
// generation it uses the sending chain's head link; otherwise it extends
// the sending chain by one link. Seed and ensureOnRatchet both leave the
// generation fresh, so the send that follows either of them stays on that
// generation (§4.E.5).
func (m *Manager) NextSendingKeys() (encKey [EncKeySize]byte, macKey [MacKeySize]byte, i, j uint32, err error) {
	if !m.ratchetFresh && m.j == 0 {
		m.i++
		if err := m.generateEphemeralKeys(); err != nil {
			return encKey, macKey, 0, 0, errs.New(op+".NextSendingKeys", errs.PrimitiveFailure, err)
		}
		if err := m.enterNewRatchet(false); err != nil {
			return encKey, macKey, 0, 0, err
		}
		m.ratchetFresh = true
	}

	sending, _, derr := m.decideBetweenChains()
	if derr != nil {
		return encKey, macKey, 0, 0, derr
	}

	var link chain.Link
	if m.ratchetFresh {
		link = sending.Last()
		m.ratchetFresh = false
	} else {
		link = sending.Extend()
	}

	encKey, macKey = deriveMessageKeys(link.Key[:])
	i, j = m.i, link.ID
	m.j = link.ID + 1
	return encKey, macKey, i, j, nil
}

// NextReceivingKeys derives the message keys for an inbound message at ratchet
// generation i' and chain position j', performing in-generation catch-up and,
// if the peer has advanced exactly one generation ahead, a reactive DH-ratchet
// catch-up (§4.E.6). i' outside {i, i+1} is rejected as OutOfRatchet with no
// state mutation.
func (m *Manager) NextReceivingKeys(iPrime, jPrime uint32) (encKey [EncKeySize]byte, macKey [MacKeySize]byte, err error) {
	switch {
	case iPrime == m.i:
		// same generation: fall through to catch-up below.
	case iPrime == m.i+1:
		if err := m.ensureOnRatchet(); err != nil {
			return encKey, macKey, err
		}
	default:
		return encKey, macKey, errs.New(op+".NextReceivingKeys", errs.OutOfRatchet, nil)
	}

	_, receiving, derr := m.decideBetweenChains()
	if derr != nil {
		return encKey, macKey, derr
	}

	if jPrime > receiving.Last().ID && jPrime-receiving.Last().ID > maxCatchUp {
		return encKey, macKey, errs.New(op+".NextReceivingKeys", errs.OutOfRatchet, nil)
	}

	link, eerr := receiving.ExtendTo(jPrime)
	if eerr != nil {
		return encKey, macKey, errs.New(op+".NextReceivingKeys", errs.OutOfRatchet, eerr)
	}

	encKey, macKey = deriveMessageKeys(link.Key[:])
	return encKey, macKey, nil
}

// ensureOnRatchet performs the reactive half of the DH ratchet: if this side
// has sent at least one message on the current generation, advance to the
// peer's generation using the already-cached their_ecdh/their_dh (set via
// SetTheirKeys), then retire the spent own ECDH (and, on cadence, own DH)
// private key. If this side has not yet sent anything this generation, it
// is a no-op, matching key_manager_ensure_on_ratchet's literal behavior.
func (m *Manager) ensureOnRatchet() error {
	if m.j == 0 {
		return nil
	}

	m.i++
	if err := m.enterNewRatchet(false); err != nil {
		return err
	}

	m.ourECDH.priv.Zero()
	if m.i%3 == 0 && m.ourDH != nil {
		m.ourDH.Zero()
	}

	m.j = 0
	m.ratchetFresh = true
	return nil
}

// RetireMACKey enqueues a consumed receiving MAC key for later publication,
// marking it as burned for forward secrecy (§4.E.6).
func (m *Manager) RetireMACKey(macKey [MacKeySize]byte) {
	m.oldMACKeys = append(m.oldMACKeys, macKey)
}

// FlushRetiredMACKeys serializes every retired MAC key (oldest first) as a
// raw concatenation, zeroizes and empties the internal queue, and returns
// the serialized bytes for attachment to the next outbound message. Calling
// it twice in succession with nothing retired in between yields an empty
// byte string the second time (§8 invariant 6).
func (m *Manager) FlushRetiredMACKeys() []byte {
	out := make([]byte, 0, len(m.oldMACKeys)*MacKeySize)
	for i := range m.oldMACKeys {
		out = append(out, m.oldMACKeys[i][:]...)
		prim.Zero(m.oldMACKeys[i][:])
	}
	m.oldMACKeys = m.oldMACKeys[:0]
	return out
}

// SSID returns the session identifier fixed at the first ratchet
// installation, and whether it has been established yet.
func (m *Manager) SSID() (fingerprint.SSID, bool) {
	return fingerprint.SSID(m.ssid), m.ssidSet
}

// Destroy zeroizes every piece of secret material the manager holds.
func (m *Manager) Destroy() {
	if m.ourECDH != nil {
		m.ourECDH.priv.Zero()
	}
	if m.ourDH != nil {
		m.ourDH.Zero()
	}
	if m.current != nil {
		m.current.Zero()
	}
	prim.Zero(m.braceKey[:])
	prim.Zero(m.ssid[:])
	for i := range m.oldMACKeys {
		prim.Zero(m.oldMACKeys[i][:])
	}
	m.oldMACKeys = nil
}

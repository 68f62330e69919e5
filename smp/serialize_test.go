package smp_test

import (
	"bytes"
	"testing"

	"github.com/otrv4/ratchet/smp"
	"github.com/otrv4/ratchet/tlv"
)

// exchangeMessages runs one full SMP exchange and returns every wire message
// produced, for use as round-trip/truncation fixtures.
func exchangeMessages(t *testing.T) (*smp.Message1, *smp.Message2, *smp.Message3, *smp.Message4) {
	t.Helper()

	aliceFP, bobFP := fingerprints()
	var ssid [8]byte
	ssid[0] = 0x7

	alice := smp.NewContext()
	alice.SetSecret(aliceFP, bobFP, ssid, []byte("shared"))
	bob := smp.NewContext()

	msg1, err := smp.GenerateMessage1(alice, []byte("q?"))
	if err != nil {
		t.Fatalf("GenerateMessage1: %v", err)
	}
	if _, err := smp.ReceiveMessage1(bob, msg1); err != nil {
		t.Fatalf("ReceiveMessage1: %v", err)
	}
	bob.SetSecret(bobFP, aliceFP, ssid, []byte("shared"))
	msg2, err := smp.GenerateMessage2(bob)
	if err != nil {
		t.Fatalf("GenerateMessage2: %v", err)
	}
	msg3, err := smp.ReceiveMessage2AndGenerateMessage3(alice, msg2)
	if err != nil {
		t.Fatalf("ReceiveMessage2AndGenerateMessage3: %v", err)
	}
	msg4, _, err := smp.ReceiveMessage3AndGenerateMessage4(bob, msg3)
	if err != nil {
		t.Fatalf("ReceiveMessage3AndGenerateMessage4: %v", err)
	}

	return msg1, msg2, msg3, msg4
}

func TestMessage1RoundTrip(t *testing.T) {
	msg1, _, _, _ := exchangeMessages(t)

	encoded := msg1.Encode()
	decoded, err := smp.DecodeMessage1(encoded)
	if err != nil {
		t.Fatalf("DecodeMessage1: %v", err)
	}
	if !bytes.Equal(decoded.Question, msg1.Question) {
		t.Fatalf("question mismatch: got %q want %q", decoded.Question, msg1.Question)
	}
	if !bytes.Equal(decoded.Encode(), encoded) {
		t.Fatalf("re-encoding decoded Message1 did not round-trip")
	}
}

func TestMessage2RoundTrip(t *testing.T) {
	_, msg2, _, _ := exchangeMessages(t)

	encoded := msg2.Encode()
	decoded, err := smp.DecodeMessage2(encoded)
	if err != nil {
		t.Fatalf("DecodeMessage2: %v", err)
	}
	if !bytes.Equal(decoded.Encode(), encoded) {
		t.Fatalf("re-encoding decoded Message2 did not round-trip")
	}
}

func TestMessage3RoundTrip(t *testing.T) {
	_, _, msg3, _ := exchangeMessages(t)

	encoded := msg3.Encode()
	decoded, err := smp.DecodeMessage3(encoded)
	if err != nil {
		t.Fatalf("DecodeMessage3: %v", err)
	}
	if !bytes.Equal(decoded.Encode(), encoded) {
		t.Fatalf("re-encoding decoded Message3 did not round-trip")
	}
}

func TestMessage4RoundTrip(t *testing.T) {
	_, _, _, msg4 := exchangeMessages(t)

	encoded := msg4.Encode()
	decoded, err := smp.DecodeMessage4(encoded)
	if err != nil {
		t.Fatalf("DecodeMessage4: %v", err)
	}
	if !bytes.Equal(decoded.Encode(), encoded) {
		t.Fatalf("re-encoding decoded Message4 did not round-trip")
	}
}

func TestDecodeMessage1RejectsTruncation(t *testing.T) {
	msg1, _, _, _ := exchangeMessages(t)
	encoded := msg1.Encode()

	for _, cut := range []int{0, 1, 4, len(encoded) - 1} {
		if _, err := smp.DecodeMessage1(encoded[:cut]); err == nil {
			t.Fatalf("expected Malformed decoding truncated Message1 at %d bytes", cut)
		}
	}
}

func TestDecodeMessage2RejectsTruncation(t *testing.T) {
	_, msg2, _, _ := exchangeMessages(t)
	encoded := msg2.Encode()

	for _, cut := range []int{0, 1, ed448PointSize(), len(encoded) - 1} {
		if _, err := smp.DecodeMessage2(encoded[:cut]); err == nil {
			t.Fatalf("expected Malformed decoding truncated Message2 at %d bytes", cut)
		}
	}
}

func TestDecodeMessage3RejectsTruncation(t *testing.T) {
	_, _, msg3, _ := exchangeMessages(t)
	encoded := msg3.Encode()

	if _, err := smp.DecodeMessage3(encoded[:len(encoded)-1]); err == nil {
		t.Fatalf("expected Malformed decoding truncated Message3")
	}
}

func TestDecodeMessage4RejectsTruncation(t *testing.T) {
	_, _, _, msg4 := exchangeMessages(t)
	encoded := msg4.Encode()

	if _, err := smp.DecodeMessage4(encoded[:len(encoded)-1]); err == nil {
		t.Fatalf("expected Malformed decoding truncated Message4")
	}
	if _, err := smp.DecodeMessage4(nil); err == nil {
		t.Fatalf("expected Malformed decoding empty Message4")
	}
}

// ed448PointSize avoids importing the internal ed448 package from an
// external test package; 57 is Component B's fixed point encoding size.
func ed448PointSize() int { return 57 }

func TestTLVRoundTrip(t *testing.T) {
	msg1, msg2, msg3, msg4 := exchangeMessages(t)

	t1 := msg1.ToTLV()
	if t1.Type != tlv.TypeSMPMessage1 {
		t.Fatalf("Message1.ToTLV: wrong type %v", t1.Type)
	}
	decoded, err := smp.FromTLV(t1)
	if err != nil {
		t.Fatalf("FromTLV(msg1): %v", err)
	}
	if _, ok := decoded.(*smp.Message1); !ok {
		t.Fatalf("FromTLV(msg1) returned %T, want *smp.Message1", decoded)
	}

	for _, tt := range []struct {
		name string
		tlv  tlv.TLV
	}{
		{"msg2", msg2.ToTLV()},
		{"msg3", msg3.ToTLV()},
		{"msg4", msg4.ToTLV()},
	} {
		if _, err := smp.FromTLV(tt.tlv); err != nil {
			t.Fatalf("FromTLV(%s): %v", tt.name, err)
		}
	}
}

func TestAbortTLVHasEmptyValue(t *testing.T) {
	abort := smp.AbortTLV()
	if abort.Type != tlv.TypeSMPAbort {
		t.Fatalf("AbortTLV: wrong type %v", abort.Type)
	}
	if len(abort.Value) != 0 {
		t.Fatalf("AbortTLV: want empty value, got %d bytes", len(abort.Value))
	}
	encoded := abort.Encode()
	decoded, n, err := tlv.Decode(encoded)
	if err != nil {
		t.Fatalf("tlv.Decode(AbortTLV): %v", err)
	}
	if n != len(encoded) || decoded.Type != tlv.TypeSMPAbort {
		t.Fatalf("AbortTLV did not round-trip through tlv.Decode")
	}
}

func TestFromTLVRejectsUnknownType(t *testing.T) {
	if _, err := smp.FromTLV(tlv.TLV{Type: 0xFFFF}); err == nil {
		t.Fatalf("expected a state violation for an unknown TLV type")
	}
}

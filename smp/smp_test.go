package smp_test

import (
	"testing"

	"github.com/otrv4/ratchet/smp"
)

func fingerprints() (our, their [56]byte) {
	our[0] = 0xAA
	their[0] = 0xBB
	return our, their
}

func runToVerdict(t *testing.T, aliceAnswer, bobAnswer []byte) (aliceVerdict, bobVerdict bool) {
	t.Helper()

	aliceFP, bobFP := fingerprints()
	var ssid [8]byte
	ssid[0] = 0x42

	alice := smp.NewContext()
	alice.SetSecret(aliceFP, bobFP, ssid, aliceAnswer)

	bob := smp.NewContext()

	msg1, err := smp.GenerateMessage1(alice, []byte("what's our favorite color?"))
	if err != nil {
		t.Fatalf("GenerateMessage1: %v", err)
	}

	question, err := smp.ReceiveMessage1(bob, msg1)
	if err != nil {
		t.Fatalf("ReceiveMessage1: %v", err)
	}
	if string(question) != "what's our favorite color?" {
		t.Fatalf("question mismatch: %q", question)
	}

	bob.SetSecret(bobFP, aliceFP, ssid, bobAnswer)
	msg2, err := smp.GenerateMessage2(bob)
	if err != nil {
		t.Fatalf("GenerateMessage2: %v", err)
	}

	msg3, err := smp.ReceiveMessage2AndGenerateMessage3(alice, msg2)
	if err != nil {
		t.Fatalf("ReceiveMessage2AndGenerateMessage3: %v", err)
	}

	msg4, bv, err := smp.ReceiveMessage3AndGenerateMessage4(bob, msg3)
	if err != nil {
		t.Fatalf("ReceiveMessage3AndGenerateMessage4: %v", err)
	}

	av, err := smp.ReceiveMessage4(alice, msg4)
	if err != nil {
		t.Fatalf("ReceiveMessage4: %v", err)
	}

	return av, bv
}

func TestMatchingAnswersYieldSuccessForBothParties(t *testing.T) {
	av, bv := runToVerdict(t, []byte("blue"), []byte("blue"))
	if !av || !bv {
		t.Fatalf("matching answers must verdict true for both sides: alice=%v bob=%v", av, bv)
	}
}

func TestMismatchedAnswersYieldFailureForBothParties(t *testing.T) {
	av, bv := runToVerdict(t, []byte("blue"), []byte("red"))
	if av || bv {
		t.Fatalf("mismatched answers must verdict false for both sides: alice=%v bob=%v", av, bv)
	}
}

func TestStateMachineProgressesAsExpected(t *testing.T) {
	aliceFP, bobFP := fingerprints()
	var ssid [8]byte

	alice := smp.NewContext()
	alice.SetSecret(aliceFP, bobFP, ssid, []byte("x"))
	if alice.State != smp.Expect1 || alice.Progress != 0 {
		t.Fatalf("fresh context must start at Expect1/0")
	}

	msg1, err := smp.GenerateMessage1(alice, nil)
	if err != nil {
		t.Fatalf("GenerateMessage1: %v", err)
	}
	if alice.State != smp.Expect2 || alice.Progress != 25 {
		t.Fatalf("after GenerateMessage1: state=%v progress=%d, want Expect2/25", alice.State, alice.Progress)
	}

	bob := smp.NewContext()
	if _, err := smp.ReceiveMessage1(bob, msg1); err != nil {
		t.Fatalf("ReceiveMessage1: %v", err)
	}
	if bob.State != smp.Expect1 {
		t.Fatalf("ReceiveMessage1 must leave the responder at Expect1 awaiting an answer")
	}
}

func TestGenerateMessage2WithoutReceivingMessage1IsStateViolation(t *testing.T) {
	bob := smp.NewContext()
	if _, err := smp.GenerateMessage2(bob); err == nil {
		t.Fatalf("expected a state violation generating msg_2 without a cached msg_1")
	}
}

func TestReceiveMessage1RejectsInvalidPoints(t *testing.T) {
	bob := smp.NewContext()
	bad := &smp.Message1{G2a: nil, G3a: nil}
	if _, err := smp.ReceiveMessage1(bob, bad); err == nil {
		t.Fatalf("expected a Malformed error for nil/missing points")
	}
}

func TestAbortResetsStateAndProgress(t *testing.T) {
	aliceFP, bobFP := fingerprints()
	var ssid [8]byte
	alice := smp.NewContext()
	alice.SetSecret(aliceFP, bobFP, ssid, []byte("x"))
	smp.GenerateMessage1(alice, nil)

	alice.Abort()
	if alice.State != smp.Expect1 || alice.Progress != 0 {
		t.Fatalf("Abort must reset to Expect1/0")
	}
}

package smp_test

import (
	"testing"

	"github.com/otrv4/ratchet/smp"
)

// BenchmarkGenerateMessage1 measures the initiator's opening proof
// generation, the cost a caller pays once per SMP run.
func BenchmarkGenerateMessage1(b *testing.B) {
	aliceFP, bobFP := fingerprints()
	var ssid [8]byte

	for range b.N {
		c := smp.NewContext()
		c.SetSecret(aliceFP, bobFP, ssid, []byte("x"))
		if _, err := smp.GenerateMessage1(c, nil); err != nil {
			b.Fatalf("GenerateMessage1: %v", err)
		}
	}
}

// BenchmarkFullExchange measures one complete four-message SMP run.
func BenchmarkFullExchange(b *testing.B) {
	aliceFP, bobFP := fingerprints()
	var ssid [8]byte

	for range b.N {
		alice := smp.NewContext()
		alice.SetSecret(aliceFP, bobFP, ssid, []byte("x"))
		bob := smp.NewContext()

		msg1, err := smp.GenerateMessage1(alice, nil)
		if err != nil {
			b.Fatalf("GenerateMessage1: %v", err)
		}
		if _, err := smp.ReceiveMessage1(bob, msg1); err != nil {
			b.Fatalf("ReceiveMessage1: %v", err)
		}
		bob.SetSecret(bobFP, aliceFP, ssid, []byte("x"))
		msg2, err := smp.GenerateMessage2(bob)
		if err != nil {
			b.Fatalf("GenerateMessage2: %v", err)
		}
		msg3, err := smp.ReceiveMessage2AndGenerateMessage3(alice, msg2)
		if err != nil {
			b.Fatalf("ReceiveMessage2AndGenerateMessage3: %v", err)
		}
		msg4, _, err := smp.ReceiveMessage3AndGenerateMessage4(bob, msg3)
		if err != nil {
			b.Fatalf("ReceiveMessage3AndGenerateMessage4: %v", err)
		}
		if _, err := smp.ReceiveMessage4(alice, msg4); err != nil {
			b.Fatalf("ReceiveMessage4: %v", err)
		}
	}
}

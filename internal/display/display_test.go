package display_test

import (
	"testing"

	"witness/internal/display"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		probablyPrime bool
		reallyPrime   bool
		want          string
	}{
		{true, true, "prime"},
		{false, true, "prime"}, // Fermat has no false negatives, but ground truth wins
		{true, false, "liar"},
		{false, false, "composite"},
	}
	for _, c := range cases {
		if got := display.Classify(c.probablyPrime, c.reallyPrime); got != c.want {
			t.Errorf("Classify(%v, %v) = %q, want %q", c.probablyPrime, c.reallyPrime, got, c.want)
		}
	}
}

func TestClass_KnownAndUnknown(t *testing.T) {
	if got := display.Class("liar"); got != "Fermat Liar (false positive)" {
		t.Errorf("Class(liar) = %q", got)
	}
	if got := display.Class("mystery"); got != "mystery" {
		t.Errorf("unknown code should pass through, got %q", got)
	}
}

func TestGateWithID(t *testing.T) {
	if got := display.GateWithID("G1"); got != "Overall FP Rate (G1)" {
		t.Errorf("GateWithID(G1) = %q", got)
	}
	if got := display.GateWithID("G9"); got != "G9" {
		t.Errorf("unknown gate should pass through, got %q", got)
	}
}

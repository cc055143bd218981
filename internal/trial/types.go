// Package trial defines the Fermat trial record and its CSV codec.
//
// A trial is one run of the Fermat primality test against a single n,
// together with the ground truth for that n. The tester writes one CSV
// row per trial; this package reads those rows back into typed records.
package trial

import "math/big"

// Trial is one primality-test run.
type Trial struct {
	N             *big.Int // tested integer, arbitrary precision
	ProbablyPrime bool     // Fermat verdict: passed all rounds
	ElapsedNS     int64    // wall time of the test
	Witness       string   // Fermat witness when composite was caught; "" otherwise
	ReallyPrime   bool     // ground truth
}

// BitLen returns the bit length of N. The CSV may carry a bit_len
// column, but it is always recomputed here; the tested integer is the
// source of truth.
func (t *Trial) BitLen() int {
	if t.N == nil {
		return 0
	}
	return t.N.BitLen()
}

// Composite reports whether n is composite per ground truth.
func (t *Trial) Composite() bool { return !t.ReallyPrime }

// FalsePositive reports whether this trial is a Fermat liar: the test
// passed a composite.
func (t *Trial) FalsePositive() bool { return t.Composite() && t.ProbablyPrime }

// NFloat returns N as a float64 for plotting. Precision loss is fine
// there; exact values stay in N.
func (t *Trial) NFloat() float64 {
	f, _ := new(big.Float).SetInt(t.N).Float64()
	return f
}

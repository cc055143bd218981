package trial_test

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"witness/internal/trial"
)

const sampleCSV = `n,bit_len,is_probably_prime,elapsed_ns,witness,is_really_prime
561,10,1,1450,,0
562,10,0,900,3,0
65537,17,1,2100,,1
`

func TestRead_Sample(t *testing.T) {
	trials, err := trial.Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []trial.Trial{
		{N: big.NewInt(561), ProbablyPrime: true, ElapsedNS: 1450, ReallyPrime: false},
		{N: big.NewInt(562), ProbablyPrime: false, ElapsedNS: 900, Witness: "3", ReallyPrime: false},
		{N: big.NewInt(65537), ProbablyPrime: true, ElapsedNS: 2100, ReallyPrime: true},
	}
	if diff := cmp.Diff(want, trials, cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })); diff != "" {
		t.Errorf("trials mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_ColumnOrderDoesNotMatter(t *testing.T) {
	csv := "is_really_prime,elapsed_ns,n,is_probably_prime\n0,500,341,1\n"
	trials, err := trial.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(trials) != 1 {
		t.Fatalf("got %d trials, want 1", len(trials))
	}
	got := trials[0]
	if got.N.Int64() != 341 || !got.ProbablyPrime || got.ElapsedNS != 500 || got.ReallyPrime {
		t.Errorf("unexpected trial: %+v", got)
	}
}

func TestRead_BitLenColumnIgnored(t *testing.T) {
	// bit_len lies; the loader must recompute from n.
	csv := "n,bit_len,is_probably_prime,elapsed_ns,is_really_prime\n1729,99,1,100,0\n"
	trials, err := trial.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := trials[0].BitLen(); got != 11 {
		t.Errorf("BitLen() = %d, want 11 (recomputed, not the stored 99)", got)
	}
}

func TestRead_BigN(t *testing.T) {
	// 2^80 + 1: past uint64 range, must parse exactly.
	csv := "n,is_probably_prime,elapsed_ns,is_really_prime\n1208925819614629174706177,1,90000,0\n"
	trials, err := trial.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := trials[0].BitLen(); got != 81 {
		t.Errorf("BitLen() = %d, want 81", got)
	}
	if !trials[0].FalsePositive() {
		t.Error("composite passing the test should classify as false positive")
	}
}

func TestRead_Errors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
		want string
	}{
		{"missing column", "n,elapsed_ns\n5,100\n", "missing column"},
		{"bad n", "n,is_probably_prime,elapsed_ns,is_really_prime\nxyz,1,100,0\n", "bad n"},
		{"bad flag", "n,is_probably_prime,elapsed_ns,is_really_prime\n5,yes,100,0\n", "is_probably_prime"},
		{"bad elapsed", "n,is_probably_prime,elapsed_ns,is_really_prime\n5,1,fast,0\n", "elapsed_ns"},
		{"negative n", "n,is_probably_prime,elapsed_ns,is_really_prime\n-5,1,100,0\n", "negative n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := trial.Read(strings.NewReader(c.csv))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	in, err := trial.Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var buf bytes.Buffer
	if err := trial.Write(&buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := trial.Read(&buf)
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}
	if diff := cmp.Diff(in, out, cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestTrial_Classification(t *testing.T) {
	liar := trial.Trial{N: big.NewInt(561), ProbablyPrime: true}
	if !liar.Composite() || !liar.FalsePositive() {
		t.Error("561 passing the test should be a composite false positive")
	}
	prime := trial.Trial{N: big.NewInt(7), ProbablyPrime: true, ReallyPrime: true}
	if prime.Composite() || prime.FalsePositive() {
		t.Error("7 should be neither composite nor a false positive")
	}
}

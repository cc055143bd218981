package analyze_test

import (
	"testing"

	"witness/internal/analyze"
	"witness/internal/trial"
)

func gatesCfg() analyze.GateConfig {
	return analyze.GateConfig{
		MaxOverallFPRate:   0.25,
		MaxBucketFPRate:    0.5,
		MinCompositeSample: 2,
	}
}

func findGate(t *testing.T, gates []analyze.Gate, id string) analyze.Gate {
	t.Helper()
	for _, g := range gates {
		if g.ID == id {
			return g
		}
	}
	t.Fatalf("gate %s not found", id)
	return analyze.Gate{}
}

func TestEvaluateGates_AllPass(t *testing.T) {
	trials := []trial.Trial{
		mk(9, false, false, 100),
		mk(10, false, false, 100),
		mk(12, false, false, 100),
		mk(15, true, false, 100), // one liar in four 4-bit composites
	}
	res := analyze.Run(trials)
	gates := analyze.EvaluateGates(res, gatesCfg())

	if !analyze.GatesPass(gates) {
		t.Fatalf("expected all gates to pass: %+v", gates)
	}
	g1 := findGate(t, gates, "G1")
	if g1.Value != 0.25 || !g1.Pass {
		t.Errorf("G1 = %+v", g1)
	}
}

func TestEvaluateGates_OverallFailure(t *testing.T) {
	trials := []trial.Trial{
		mk(341, true, false, 100),
		mk(561, true, false, 100),
		mk(9, false, false, 100),
	}
	res := analyze.Run(trials)
	gates := analyze.EvaluateGates(res, gatesCfg())

	if analyze.GatesPass(gates) {
		t.Fatal("expected gate failure at 2/3 FP rate")
	}
	g1 := findGate(t, gates, "G1")
	if g1.Pass || g1.Skipped {
		t.Errorf("G1 should fail outright: %+v", g1)
	}
}

func TestEvaluateGates_WorstBucket(t *testing.T) {
	trials := []trial.Trial{
		// 4-bit bucket: clean
		mk(9, false, false, 100),
		mk(15, false, false, 100),
		// 9-bit bucket: all liars
		mk(341, true, false, 100),
		mk(345, true, false, 100),
	}
	res := analyze.Run(trials)
	g2 := findGate(t, analyze.EvaluateGates(res, gatesCfg()), "G2")

	if g2.Value != 1.0 {
		t.Errorf("G2 value = %v, want 1.0 (the 9-bit bucket)", g2.Value)
	}
	if g2.Pass {
		t.Error("G2 should fail with a fully lying bucket")
	}
}

func TestEvaluateGates_NoComposites(t *testing.T) {
	trials := []trial.Trial{
		mk(7, true, true, 100),
		mk(11, true, true, 100),
	}
	res := analyze.Run(trials)
	gates := analyze.EvaluateGates(res, gatesCfg())

	g1 := findGate(t, gates, "G1")
	if !g1.Skipped {
		t.Errorf("G1 should be skipped with no composites: %+v", g1)
	}
	g2 := findGate(t, gates, "G2")
	if !g2.Skipped {
		t.Errorf("G2 should be skipped with no composite buckets: %+v", g2)
	}
	// G3 still fails: the sample requirement is not met.
	g3 := findGate(t, gates, "G3")
	if g3.Pass || g3.Skipped {
		t.Errorf("G3 should fail on sample size: %+v", g3)
	}
	if analyze.GatesPass(gates) {
		t.Error("run should fail overall on G3")
	}
}

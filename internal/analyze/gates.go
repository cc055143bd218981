package analyze

import (
	"fmt"
	"math"
)

// Gate is one pass/fail check against the aggregated results.
type Gate struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Pass      bool    `json:"pass"`
	Skipped   bool    `json:"skipped,omitempty"` // undefined input, not evaluated
	Detail    string  `json:"detail,omitempty"`
}

// GateConfig holds the thresholds. Zero values disable nothing: the
// defaults in internal/config are used when a profile does not set them.
type GateConfig struct {
	MaxOverallFPRate   float64 `yaml:"max_overall_fp_rate"`
	MaxBucketFPRate    float64 `yaml:"max_bucket_fp_rate"`
	MinCompositeSample int     `yaml:"min_composite_sample"`
}

// EvaluateGates checks the aggregation result against the thresholds.
func EvaluateGates(res *Result, cfg GateConfig) []Gate {
	return []Gate{
		gateOverallFPRate(res, cfg),
		gateBucketFPRate(res, cfg),
		gateCompositeSample(res, cfg),
	}
}

// GatesPass reports whether every evaluated gate passed. Skipped gates
// do not fail the run.
func GatesPass(gates []Gate) bool {
	for _, g := range gates {
		if !g.Skipped && !g.Pass {
			return false
		}
	}
	return true
}

func gateOverallFPRate(res *Result, cfg GateConfig) Gate {
	g := Gate{
		ID: "G1", Name: "overall_fp_rate",
		Value:     res.Summary.OverallFPRate,
		Threshold: cfg.MaxOverallFPRate,
	}
	if math.IsNaN(g.Value) {
		g.Skipped = true
		g.Detail = "no composite trials"
		return g
	}
	g.Pass = g.Value <= g.Threshold
	g.Detail = fmt.Sprintf("%d false positives / %d composites",
		res.Summary.FalsePositives, res.Summary.Composites)
	return g
}

func gateBucketFPRate(res *Result, cfg GateConfig) Gate {
	g := Gate{
		ID: "G2", Name: "worst_bucket_fp_rate",
		Threshold: cfg.MaxBucketFPRate,
	}
	worst := math.NaN()
	worstBits := 0
	for _, b := range res.ByBits {
		if math.IsNaN(b.FPRate) {
			continue
		}
		if math.IsNaN(worst) || b.FPRate > worst {
			worst = b.FPRate
			worstBits = b.Bits
		}
	}
	if math.IsNaN(worst) {
		g.Skipped = true
		g.Detail = "no bucket has composite trials"
		return g
	}
	g.Value = worst
	g.Pass = worst <= g.Threshold
	g.Detail = fmt.Sprintf("worst bucket: %d bits", worstBits)
	return g
}

func gateCompositeSample(res *Result, cfg GateConfig) Gate {
	g := Gate{
		ID: "G3", Name: "composite_sample_size",
		Value:     float64(res.Summary.Composites),
		Threshold: float64(cfg.MinCompositeSample),
	}
	g.Pass = res.Summary.Composites >= cfg.MinCompositeSample
	g.Detail = fmt.Sprintf("%d of %d trials are composite",
		res.Summary.Composites, res.Summary.Trials)
	return g
}

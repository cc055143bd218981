// Package analyze aggregates Fermat trial results into the statistics
// the report and charts are built from: the overall false-positive
// rate, per-bit-length buckets, and timing distributions.
package analyze

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"witness/internal/trial"
)

// ElapsedStats describes the elapsed_ns distribution of a set of trials.
type ElapsedStats struct {
	Mean float64 `json:"mean_ns"`
	Min  int64   `json:"min_ns"`
	Max  int64   `json:"max_ns"`
	P50  float64 `json:"p50_ns"`
	P90  float64 `json:"p90_ns"`
	P99  float64 `json:"p99_ns"`
}

// Summary holds dataset-wide totals.
type Summary struct {
	Trials         int          `json:"trials"`
	Primes         int          `json:"primes"`
	Composites     int          `json:"composites"`
	FalsePositives int          `json:"false_positives"`
	OverallFPRate  float64      `json:"overall_fp_rate"` // NaN when no composites
	Elapsed        ElapsedStats `json:"elapsed"`
}

// BitGroup is one bit-length bucket.
type BitGroup struct {
	Bits           int     `json:"bits"`
	Trials         int     `json:"trials"`
	Composites     int     `json:"composites"`
	FalsePositives int     `json:"false_positives"`
	FPRate         float64 `json:"fp_rate"` // NaN when the bucket has no composites
	MeanElapsedNS  float64 `json:"mean_elapsed_ns"`
	P50ElapsedNS   float64 `json:"p50_elapsed_ns"`
	P90ElapsedNS   float64 `json:"p90_elapsed_ns"`
	P99ElapsedNS   float64 `json:"p99_elapsed_ns"`
}

// Result is the full aggregation output.
type Result struct {
	Summary Summary    `json:"summary"`
	ByBits  []BitGroup `json:"by_bits"` // ascending bit length
}

// Run aggregates trials. It never mutates the input slice.
func Run(trials []trial.Trial) *Result {
	res := &Result{}
	s := &res.Summary
	s.Trials = len(trials)

	elapsed := make([]float64, 0, len(trials))
	buckets := make(map[int]*BitGroup)
	bucketElapsed := make(map[int][]float64)

	for i := range trials {
		t := &trials[i]
		bits := t.BitLen()

		g := buckets[bits]
		if g == nil {
			g = &BitGroup{Bits: bits}
			buckets[bits] = g
		}
		g.Trials++
		bucketElapsed[bits] = append(bucketElapsed[bits], float64(t.ElapsedNS))
		elapsed = append(elapsed, float64(t.ElapsedNS))

		if t.ReallyPrime {
			s.Primes++
		} else {
			s.Composites++
			g.Composites++
		}
		if t.FalsePositive() {
			s.FalsePositives++
			g.FalsePositives++
		}

		if i == 0 || t.ElapsedNS < s.Elapsed.Min {
			s.Elapsed.Min = t.ElapsedNS
		}
		if t.ElapsedNS > s.Elapsed.Max {
			s.Elapsed.Max = t.ElapsedNS
		}
	}

	s.OverallFPRate = rate(s.FalsePositives, s.Composites)
	s.Elapsed.Mean, s.Elapsed.P50, s.Elapsed.P90, s.Elapsed.P99 = distribution(elapsed)

	for bits, g := range buckets {
		g.FPRate = rate(g.FalsePositives, g.Composites)
		xs := bucketElapsed[bits]
		g.MeanElapsedNS, g.P50ElapsedNS, g.P90ElapsedNS, g.P99ElapsedNS = distribution(xs)
		res.ByBits = append(res.ByBits, *g)
	}
	sort.Slice(res.ByBits, func(i, j int) bool { return res.ByBits[i].Bits < res.ByBits[j].Bits })

	return res
}

// rate is numerator/denominator with NaN for an empty denominator.
// The false-positive rate over zero composites is undefined, not zero.
func rate(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

// distribution returns mean, p50, p90, p99 of xs. xs is sorted in place.
func distribution(xs []float64) (mean, p50, p90, p99 float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN(), math.NaN(), math.NaN()
	}
	mean = stat.Mean(xs, nil)
	sort.Float64s(xs)
	p50 = stat.Quantile(0.50, stat.Empirical, xs, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, xs, nil)
	p99 = stat.Quantile(0.99, stat.Empirical, xs, nil)
	return mean, p50, p90, p99
}

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"witness/internal/analyze"
)

// Derived CSV basenames, written into the figures directory alongside
// the charts that plot them.
const (
	FPRateCSV  = "fp_rate_vs_bits.csv"
	AvgTimeCSV = "avg_time_vs_bits.csv"
)

// WriteDerivedCSVs writes the per-bit-length tables backing the
// charts: fp_rate_vs_bits.csv and avg_time_vs_bits.csv.
//
// The rate table is grouped over composite trials, so buckets holding
// only primes have no row there. The timing table covers all trials.
func WriteDerivedCSVs(dir string, res *analyze.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create figures dir: %w", err)
	}
	withComposites := make([]analyze.BitGroup, 0, len(res.ByBits))
	for _, g := range res.ByBits {
		if g.Composites > 0 {
			withComposites = append(withComposites, g)
		}
	}
	if err := writeCSV(filepath.Join(dir, FPRateCSV), []string{"bit_len", "fp_rate"},
		withComposites, func(g analyze.BitGroup) []string {
			return []string{strconv.Itoa(g.Bits), formatRate(g.FPRate)}
		}); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, AvgTimeCSV), []string{"bit_len", "avg_elapsed_ns"},
		res.ByBits, func(g analyze.BitGroup) []string {
			return []string{strconv.Itoa(g.Bits), formatRate(g.MeanElapsedNS)}
		})
}

func writeCSV(path string, header []string, groups []analyze.BitGroup, row func(analyze.BitGroup) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, g := range groups {
		if err := w.Write(row(g)); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// formatRate emits the shortest float64 representation that
// round-trips.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

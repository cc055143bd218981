// Package report renders aggregated trial statistics as console or
// markdown tables and emits the derived CSV tables next to the charts.
package report

import (
	"fmt"
	"strings"

	"witness/internal/analyze"
	"witness/internal/display"
	"witness/internal/format"
)

// Format renders the full analysis report.
func Format(res *analyze.Result, mode format.Mode) string {
	var b strings.Builder

	b.WriteString("=== Fermat Trial Analysis ===\n\n")
	b.WriteString(formatSummary(&res.Summary))
	b.WriteString("\n--- False-positive rate by bit length ---\n")
	b.WriteString(formatFPByBits(res.ByBits, mode))
	b.WriteString("\n\n--- Elapsed time by bit length ---\n")
	b.WriteString(formatTimingByBits(res.ByBits, mode))
	b.WriteString("\n")

	return b.String()
}

func formatSummary(s *analyze.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trials:          %d\n", s.Trials)
	fmt.Fprintf(&b, "Primes:          %d\n", s.Primes)
	fmt.Fprintf(&b, "Composites:      %d\n", s.Composites)
	fmt.Fprintf(&b, "%s: %d\n", display.Class("liar"), s.FalsePositives)
	fmt.Fprintf(&b, "Overall false-positive rate: %s\n", format.Percent(s.OverallFPRate))
	fmt.Fprintf(&b, "Elapsed: mean %s, min %s, max %s, p99 %s\n",
		format.Nanos(s.Elapsed.Mean),
		format.Nanos(float64(s.Elapsed.Min)),
		format.Nanos(float64(s.Elapsed.Max)),
		format.Nanos(s.Elapsed.P99))
	return b.String()
}

func formatFPByBits(groups []analyze.BitGroup, mode format.Mode) string {
	tbl := format.NewTable(mode)
	tbl.Header("Bits", "Trials", "Composites", "Liars", "FP Rate")
	tbl.Columns(
		format.ColumnConfig{Number: 1, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	for _, g := range groups {
		tbl.Row(g.Bits, format.Count(g.Trials), format.Count(g.Composites),
			g.FalsePositives, format.Percent(g.FPRate))
	}
	return tbl.String()
}

func formatTimingByBits(groups []analyze.BitGroup, mode format.Mode) string {
	tbl := format.NewTable(mode)
	tbl.Header("Bits", "Trials", "Mean", "P50", "P90", "P99")
	tbl.Columns(format.ColumnConfig{Number: 1, Align: format.AlignRight})
	for _, g := range groups {
		tbl.Row(g.Bits, format.Count(g.Trials),
			format.Nanos(g.MeanElapsedNS),
			format.Nanos(g.P50ElapsedNS),
			format.Nanos(g.P90ElapsedNS),
			format.Nanos(g.P99ElapsedNS))
	}
	return tbl.String()
}

// FormatGates renders the gate scorecard.
func FormatGates(gates []analyze.Gate, mode format.Mode) string {
	var b strings.Builder
	b.WriteString("--- Gates ---\n")
	tbl := format.NewTable(mode)
	tbl.Header("Gate", "Value", "Threshold", "Pass", "Detail")
	for _, g := range gates {
		pass := format.BoolMark(g.Pass)
		if g.Skipped {
			pass = "skip"
		}
		tbl.Row(display.GateWithID(g.ID), gateValue(g), gateThreshold(g), pass, g.Detail)
	}
	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}

// gateValue picks the rendering per gate: rates as percentages, counts
// as integers.
func gateValue(g analyze.Gate) string {
	if g.ID == "G3" {
		return fmt.Sprintf("%.0f", g.Value)
	}
	return format.Percent(g.Value)
}

func gateThreshold(g analyze.Gate) string {
	if g.ID == "G3" {
		return fmt.Sprintf(">= %.0f", g.Threshold)
	}
	return "<= " + format.Percent(g.Threshold)
}

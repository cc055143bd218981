// Package chart renders the analysis figures with gonum/plot.
//
// Three figures, matching the derived CSV tables in internal/report:
// false-positive rate vs bit length (log Y), average elapsed time vs
// bit length, and a log-log scatter of elapsed time vs n.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"witness/internal/analyze"
	"witness/internal/trial"
)

// Figure basenames under the figures directory.
const (
	FPRatePNG  = "fp_rate_vs_bits.png"
	AvgTimePNG = "avg_time_vs_bits.png"
	ScatterPNG = "time_vs_n_loglog.png"
)

const width, height = 8 * vg.Inch, 6 * vg.Inch

// RenderAll writes the three figures into dir. The renders are
// independent and run concurrently.
func RenderAll(ctx context.Context, dir string, res *analyze.Result, trials []trial.Trial) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create figures dir: %w", err)
	}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return FPRateByBits(filepath.Join(dir, FPRatePNG), res.ByBits) })
	g.Go(func() error { return AvgTimeByBits(filepath.Join(dir, AvgTimePNG), res.ByBits) })
	g.Go(func() error { return TimeVsN(filepath.Join(dir, ScatterPNG), trials) })
	return g.Wait()
}

// FPRateByBits plots the false-positive rate per bit length on a log
// Y axis. Zero-rate buckets cannot sit on a log axis and are dropped
// from the figure; they stay in the CSV and the console table.
func FPRateByBits(path string, groups []analyze.BitGroup) error {
	pts := make(plotter.XYs, 0, len(groups))
	for _, g := range groups {
		if math.IsNaN(g.FPRate) || g.FPRate <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(g.Bits), Y: g.FPRate})
	}

	p := newPlot("False-positive rate of Fermat test vs bit length",
		"Bit length (bits)", "False-positive rate")
	if len(pts) > 0 {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		if err := addLinePoints(p, pts); err != nil {
			return err
		}
	}
	return save(p, path)
}

// AvgTimeByBits plots the mean elapsed time per bit length.
func AvgTimeByBits(path string, groups []analyze.BitGroup) error {
	pts := make(plotter.XYs, 0, len(groups))
	for _, g := range groups {
		if math.IsNaN(g.MeanElapsedNS) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(g.Bits), Y: g.MeanElapsedNS})
	}

	p := newPlot("Average elapsed time of Fermat test vs bit length",
		"Bit length (bits)", "Average elapsed_ns")
	if len(pts) > 0 {
		if err := addLinePoints(p, pts); err != nil {
			return err
		}
	}
	return save(p, path)
}

// TimeVsN plots elapsed time against n on log-log axes. Rows that a
// log axis cannot take (n < 2, elapsed_ns <= 0) are dropped.
func TimeVsN(path string, trials []trial.Trial) error {
	pts := make(plotter.XYs, 0, len(trials))
	for i := range trials {
		t := &trials[i]
		if t.ElapsedNS <= 0 || t.N == nil || t.N.BitLen() < 2 {
			continue
		}
		pts = append(pts, plotter.XY{X: t.NFloat(), Y: float64(t.ElapsedNS)})
	}

	p := newPlot("Elapsed time of Fermat test vs n (log-log)", "n", "elapsed_ns")
	if len(pts) > 0 {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		s.GlyphStyle.Radius = vg.Points(1)
		s.GlyphStyle.Color = color.NRGBA{B: 180, A: 70}
		p.Add(s)
	}
	return save(p, path)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func addLinePoints(p *plot.Plot, pts plotter.XYs) error {
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.Color = color.NRGBA{B: 180, A: 255}
	points.Shape = draw.CircleGlyph{}
	points.Color = line.Color
	p.Add(line, points)
	return nil
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"witness/internal/analyze"
	"witness/internal/chart"
	"witness/internal/config"
	"witness/internal/format"
	"witness/internal/report"
	"witness/internal/trial"
)

var analyzeFlags struct {
	figuresDir string
	formatName string
	configPath string
	noCharts   bool
	gates      bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <results.csv>",
	Short: "Analyze a trial results CSV: stats, tables, charts",
	Long: `Analyze loads a Fermat trial results CSV and reports the overall and
per-bit-length false-positive rates and timing statistics. Charts and
the derived CSV tables go into the figures directory.

Usage:
  witness analyze data/results.csv
  witness analyze data/results.csv --format markdown --figures out/
  witness analyze data/results.csv --gates    # non-zero exit when a gate fails`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.figuresDir, "figures", "", "Output dir for charts and derived CSVs (default: profile figures_dir)")
	f.StringVar(&analyzeFlags.formatName, "format", "", "Table format: ascii or markdown (default: profile format)")
	f.StringVar(&analyzeFlags.configPath, "config", "", "Analysis profile path (default: "+config.DefaultPath+")")
	f.BoolVar(&analyzeFlags.noCharts, "no-charts", false, "Skip chart and derived CSV output")
	f.BoolVar(&analyzeFlags.gates, "gates", false, "Evaluate pass/fail gates; exit non-zero on failure")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	profile, err := config.Load(analyzeFlags.configPath)
	if err != nil {
		return err
	}
	figuresDir := analyzeFlags.figuresDir
	if figuresDir == "" {
		figuresDir = profile.FiguresDir
	}
	formatName := analyzeFlags.formatName
	if formatName == "" {
		formatName = profile.Format
	}

	trials, err := trial.ReadFile(args[0])
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		return fmt.Errorf("%s has no trials", args[0])
	}

	res := analyze.Run(trials)
	mode := format.ParseMode(formatName)

	out := cmd.OutOrStdout()
	fmt.Fprint(out, report.Format(res, mode))

	if !analyzeFlags.noCharts {
		if err := report.WriteDerivedCSVs(figuresDir, res); err != nil {
			return err
		}
		if err := chart.RenderAll(cmd.Context(), figuresDir, res, trials); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nCharts and derived CSVs written to %s/\n", figuresDir)
	}

	if analyzeFlags.gates {
		gates := analyze.EvaluateGates(res, profile.Gates)
		fmt.Fprint(out, "\n", report.FormatGates(gates, mode))
		if !analyze.GatesPass(gates) {
			return fmt.Errorf("gates failed")
		}
	}
	return nil
}

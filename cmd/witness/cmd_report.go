package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"witness/internal/analyze"
	"witness/internal/config"
	"witness/internal/format"
	"witness/internal/report"
	"witness/internal/store"
)

var reportFlags struct {
	dbPath     string
	formatName string
	configPath string
	outputPath string
	gates      bool
}

var reportCmd = &cobra.Command{
	Use:   "report <dataset>",
	Short: "Render the analysis report for a stored dataset",
	Long: `Report loads an ingested dataset from the store and renders the same
tables 'analyze' prints, without touching the original CSV.

Usage:
  witness report sweep-32bit
  witness report sweep-32bit --format markdown --output report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.dbPath, "db", "", "Store DB path (default: profile db_path)")
	f.StringVar(&reportFlags.formatName, "format", "", "Table format: ascii or markdown (default: profile format)")
	f.StringVar(&reportFlags.configPath, "config", "", "Analysis profile path (default: "+config.DefaultPath+")")
	f.StringVarP(&reportFlags.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	f.BoolVar(&reportFlags.gates, "gates", false, "Append the gate scorecard; exit non-zero on failure")
}

func runReport(cmd *cobra.Command, args []string) error {
	profile, err := config.Load(reportFlags.configPath)
	if err != nil {
		return err
	}
	formatName := reportFlags.formatName
	if formatName == "" {
		formatName = profile.Format
	}

	st, err := store.Open(dbPathOr(reportFlags.dbPath, profile))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	trials, err := st.LoadTrials(args[0])
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		return fmt.Errorf("dataset %q is empty", args[0])
	}

	res := analyze.Run(trials)
	mode := format.ParseMode(formatName)
	text := report.Format(res, mode)

	var gatesFailed bool
	if reportFlags.gates {
		gates := analyze.EvaluateGates(res, profile.Gates)
		text += "\n" + report.FormatGates(gates, mode)
		gatesFailed = !analyze.GatesPass(gates)
	}

	if reportFlags.outputPath != "" {
		if err := os.WriteFile(reportFlags.outputPath, []byte(text), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportFlags.outputPath)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), text)
	}

	if gatesFailed {
		return fmt.Errorf("gates failed")
	}
	return nil
}

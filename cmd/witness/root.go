package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"witness/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	verbose bool
}

var rootCmd = &cobra.Command{
	Use:   "witness",
	Short: "Statistics and charts for Fermat primality-test trial results",
	Long: "Witness analyzes CSVs of Fermat primality-test trials: overall and\n" +
		"per-bit-length false-positive rates, timing by bit length, and an\n" +
		"elapsed-time-vs-n scatter. Results can be kept in a local SQLite store.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if rootFlags.verbose {
			level = slog.LevelDebug
		}
		logging.Init(level, "text")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"witness/internal/config"
	"witness/internal/store"
	"witness/internal/trial"
)

var ingestFlags struct {
	name       string
	dbPath     string
	configPath string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <results.csv>",
	Short: "Load a trial results CSV into the local dataset store",
	Long: `Ingest parses a results CSV and stores it as a named dataset in the
SQLite store, so reports can be rendered later without the CSV.
Re-ingesting a name replaces the stored dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestFlags.name, "name", "", "Dataset name (default: CSV basename without extension)")
	f.StringVar(&ingestFlags.dbPath, "db", "", "Store DB path (default: profile db_path)")
	f.StringVar(&ingestFlags.configPath, "config", "", "Analysis profile path (default: "+config.DefaultPath+")")
}

func runIngest(cmd *cobra.Command, args []string) error {
	profile, err := config.Load(ingestFlags.configPath)
	if err != nil {
		return err
	}

	path := args[0]
	name := ingestFlags.name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	trials, err := trial.ReadFile(path)
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		return fmt.Errorf("%s has no trials", path)
	}

	st, err := store.Open(dbPathOr(ingestFlags.dbPath, profile))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	d, err := st.SaveDataset(name, path, trials)
	if err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ingested %q: %d trials (%d composites, %d false positives)\n",
		d.Name, d.Trials, d.Composites, d.FalsePositives)
	fmt.Fprintf(out, "Run 'witness report %s' to render the analysis.\n", d.Name)
	return nil
}

// dbPathOr resolves the store path: flag wins over profile.
func dbPathOr(flag string, profile *config.Profile) string {
	if flag != "" {
		return flag
	}
	if profile.DBPath != "" {
		return profile.DBPath
	}
	return config.DefaultDBPath
}

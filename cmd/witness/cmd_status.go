package main

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"witness/internal/config"
	"witness/internal/format"
	"witness/internal/store"
)

var statusFlags struct {
	dbPath     string
	configPath string
	formatName string
}

var statusCmd = &cobra.Command{
	Use:   "status [dataset]",
	Short: "List stored datasets, or show one dataset's per-bit breakdown",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusFlags.dbPath, "db", "", "Store DB path (default: profile db_path)")
	f.StringVar(&statusFlags.configPath, "config", "", "Analysis profile path (default: "+config.DefaultPath+")")
	f.StringVar(&statusFlags.formatName, "format", "", "Table format: ascii or markdown (default: profile format)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	profile, err := config.Load(statusFlags.configPath)
	if err != nil {
		return err
	}
	formatName := statusFlags.formatName
	if formatName == "" {
		formatName = profile.Format
	}
	mode := format.ParseMode(formatName)

	st, err := store.Open(dbPathOr(statusFlags.dbPath, profile))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return listDatasets(st, mode, out)
	}
	return datasetDetail(st, args[0], mode, out)
}

func listDatasets(st store.Store, mode format.Mode, out io.Writer) error {
	datasets, err := st.ListDatasets()
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		fmt.Fprintln(out, "No datasets in the store.")
		fmt.Fprintln(out, "Run 'witness ingest <results.csv>' to add one.")
		return nil
	}

	tbl := format.NewTable(mode)
	tbl.Header("Dataset", "Trials", "Composites", "Liars", "Imported", "Source")
	tbl.Columns(format.ColumnConfig{Number: 6, MaxWidth: 40})
	for _, d := range datasets {
		tbl.Row(d.Name, format.Count(d.Trials), format.Count(d.Composites),
			d.FalsePositives, d.ImportedAt.Format("2006-01-02 15:04"),
			format.Truncate(d.Source, 40))
	}
	fmt.Fprintln(out, tbl.String())
	return nil
}

func datasetDetail(st store.Store, name string, mode format.Mode, out io.Writer) error {
	d, err := st.GetDataset(name)
	if err != nil {
		return err
	}
	aggs, err := st.BitAggregates(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Dataset:  %s\n", d.Name)
	fmt.Fprintf(out, "Source:   %s\n", d.Source)
	fmt.Fprintf(out, "Imported: %s\n", d.ImportedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Trials:   %d (%d composites, %d false positives)\n\n", d.Trials, d.Composites, d.FalsePositives)

	tbl := format.NewTable(mode)
	tbl.Header("Bits", "Trials", "Composites", "Liars", "FP Rate", "Mean", "Max")
	tbl.Columns(format.ColumnConfig{Number: 1, Align: format.AlignRight})
	for _, a := range aggs {
		rate := math.NaN()
		if a.Composites > 0 {
			rate = float64(a.FalsePositives) / float64(a.Composites)
		}
		tbl.Row(a.Bits, format.Count(a.Trials), format.Count(a.Composites),
			a.FalsePositives, format.Percent(rate),
			format.Nanos(a.MeanElapsedNS), format.Nanos(float64(a.MaxElapsedNS)))
	}
	fmt.Fprintln(out, tbl.String())
	return nil
}

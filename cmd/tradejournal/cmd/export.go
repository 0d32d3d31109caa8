package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/position"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export positions, trades and journal entries",
	Long: `Export the journal for reading or analysis.

Subcommands:
  org - One Org-mode subtree per position
  csv - Positions, trades or journal fields as CSV

Examples:
  tradejournal export org -o journal.org
  tradejournal export csv --kind trades --status closed`,
}

var exportOrgCmd = &cobra.Command{
	Use:   "org",
	Short: "Export as Org-mode",
	Args:  cobra.NoArgs,
	RunE:  runExportOrg,
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExportCSV,
}

var (
	exportOutput string
	exportStatus string
	exportKind   string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportOrgCmd)
	exportCmd.AddCommand(exportCSVCmd)

	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.PersistentFlags().StringVar(&exportStatus, "status", "", "only positions with this status")
	exportCSVCmd.Flags().StringVar(&exportKind, "kind", "positions", "positions, trades or journal")
}

func exportRecords(cmd *cobra.Command, a *app) ([]journal.Record, error) {
	reps, err := a.svc.ValuateAll(cmd.Context(), position.Status(exportStatus))
	if err != nil {
		return nil, err
	}
	recs := make([]journal.Record, 0, len(reps))
	for _, r := range reps {
		es, err := a.svc.ListJournalEntries(cmd.Context(), r.Position.ID)
		if err != nil {
			return nil, err
		}
		recs = append(recs, journal.Record{Position: r.Position, Valuation: r.Valuation, Entries: es})
	}
	return recs, nil
}

// withOutput runs write against the --output file or stdout.
func withOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	if exportOutput == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOutput, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runExportOrg(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := exportRecords(cmd, a)
	if err != nil {
		return err
	}
	return withOutput(cmd, func(w io.Writer) error {
		return journal.WriteOrg(w, recs)
	})
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	if exportKind != "positions" && exportKind != "trades" && exportKind != "journal" {
		return fmt.Errorf("--kind must be positions, trades or journal")
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := exportRecords(cmd, a)
	if err != nil {
		return err
	}
	return withOutput(cmd, func(w io.Writer) error {
		switch exportKind {
		case "trades":
			ps := make([]position.Position, 0, len(recs))
			for _, r := range recs {
				ps = append(ps, r.Position)
			}
			return journal.WriteTradesCSV(w, ps)
		case "journal":
			var es []position.JournalEntry
			for _, r := range recs {
				es = append(es, r.Entries...)
			}
			return journal.WriteJournalCSV(w, es)
		default:
			return journal.WritePositionsCSV(w, recs)
		}
	})
}

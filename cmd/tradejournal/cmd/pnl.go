package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/trading"
)

var pnlCmd = &cobra.Command{
	Use:   "pnl [position-id]",
	Short: "Value positions against the latest prices",
	Long: `Show realized and unrealized P&L.

Without an id every position matching --status is valued. Positions with
no price data show "n/a" rather than zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPnL,
}

var pnlStatus string

func init() {
	rootCmd.AddCommand(pnlCmd)
	pnlCmd.Flags().StringVar(&pnlStatus, "status", "", "filter by status: planned, open or closed")
}

func runPnL(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var reps []trading.Report
	if len(args) == 1 {
		rep, err := a.svc.Valuate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		reps = []trading.Report{rep}
	} else {
		reps, err = a.svc.ValuateAll(cmd.Context(), position.Status(pnlStatus))
		if err != nil {
			return err
		}
	}
	printReports(cmd.OutOrStdout(), reps)
	return nil
}

func printReports(w io.Writer, reps []trading.Report) {
	if len(reps) == 0 {
		fmt.Fprintln(w, "No positions")
		return
	}
	var realized, unrealized float64
	fmt.Fprintf(w, "%-22s  %-8s  %8s  %10s  %10s  %12s  %12s\n",
		"INSTRUMENT", "STATUS", "QTY", "AVG COST", "PRICE", "REALIZED", "UNREALIZED")
	for _, r := range reps {
		v := r.Valuation
		fmt.Fprintf(w, "%-22s  %-8s  %8g  %10.2f  %10s  %12.2f  %12s\n",
			r.Position.Instrument(), v.Status, v.OpenQuantity, v.AverageCost,
			orNA(v.CurrentPrice), v.RealizedPnL, orNA(v.UnrealizedPnL))
		realized += v.RealizedPnL
		if v.UnrealizedPnL != nil {
			unrealized += *v.UnrealizedPnL
		}
	}
	fmt.Fprintf(w, "Total realized %.2f  unrealized %.2f\n", realized, unrealized)
}

func orNA(x *float64) string {
	if x == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *x)
}

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/position"
)

var positionCmd = &cobra.Command{
	Use:     "position",
	Aliases: []string{"pos"},
	Short:   "Plan, list, show and delete positions",
	Long: `Manage position plans.

Subcommands:
  create - Plan a new position
  list   - List positions, optionally by status
  show   - Show one position with its trades and journal
  delete - Delete a position and its journal entries

Examples:
  tradejournal position create --symbol AAPL --entry 150 --qty 100 --target 180 --stop 140
  tradejournal position create --symbol AAPL --strategy short_put --strike 150 --expiration 2025-01-17 \
      --premium 3 --entry 3 --qty 5 --target 1.5 --stop 6 --basis option
  tradejournal position list --status open`,
}

var positionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Plan a new position",
	Args:  cobra.NoArgs,
	RunE:  runPositionCreate,
}

var positionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List positions",
	Args:  cobra.NoArgs,
	RunE:  runPositionList,
}

var positionShowCmd = &cobra.Command{
	Use:   "show <position-id>",
	Short: "Show a position as an Org-mode subtree",
	Args:  cobra.ExactArgs(1),
	RunE:  runPositionShow,
}

var positionDeleteCmd = &cobra.Command{
	Use:   "delete <position-id>",
	Short: "Delete a position and its journal entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runPositionDelete,
}

var (
	planSymbol     string
	planStrategy   string
	planEntry      float64
	planQty        float64
	planTarget     float64
	planStop       float64
	planThesis     string
	planBasis      string
	planStrike     float64
	planExpiration string
	planPremium    float64

	listStatus string
)

func init() {
	rootCmd.AddCommand(positionCmd)
	positionCmd.AddCommand(positionCreateCmd)
	positionCmd.AddCommand(positionListCmd)
	positionCmd.AddCommand(positionShowCmd)
	positionCmd.AddCommand(positionDeleteCmd)

	f := positionCreateCmd.Flags()
	f.StringVarP(&planSymbol, "symbol", "s", "", "ticker symbol (required)")
	f.StringVar(&planStrategy, "strategy", string(position.StrategyLongStock), "long_stock or short_put")
	f.Float64Var(&planEntry, "entry", 0, "target entry price (premium for short puts)")
	f.Float64Var(&planQty, "qty", 0, "target quantity (shares or contracts)")
	f.Float64Var(&planTarget, "target", 0, "profit target")
	f.Float64Var(&planStop, "stop", 0, "stop loss")
	f.StringVar(&planThesis, "thesis", "", "position thesis")
	f.StringVar(&planBasis, "basis", "", "price basis for target and stop: stock or option")
	f.Float64Var(&planStrike, "strike", 0, "option strike price")
	f.StringVar(&planExpiration, "expiration", "", "option expiration date (YYYY-MM-DD)")
	f.Float64Var(&planPremium, "premium", 0, "premium per contract")
	positionCreateCmd.MarkFlagRequired("symbol")

	positionListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status: planned, open or closed")
}

func runPositionCreate(cmd *cobra.Command, args []string) error {
	pl := position.Plan{
		Symbol:           planSymbol,
		Strategy:         position.Strategy(planStrategy),
		TargetEntryPrice: planEntry,
		TargetQuantity:   planQty,
		ProfitTarget:     planTarget,
		StopLoss:         planStop,
		Thesis:           planThesis,
		PriceBasis:       position.PriceBasis(planBasis),
	}
	if pl.Strategy.IsOption() {
		pl.OptionType = position.OptionPut
		pl.StrikePrice = planStrike
		if planExpiration != "" {
			exp, err := time.Parse("2006-01-02", planExpiration)
			if err != nil {
				return fmt.Errorf("expiration: %w", err)
			}
			pl.ExpirationDate = &exp
		}
		if cmd.Flags().Changed("premium") {
			premium := planPremium
			pl.PremiumPerContract = &premium
		}
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, d, err := a.svc.CreatePosition(cmd.Context(), pl)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created position %s\n", p.ID)
	fmt.Fprintf(out, "  %s %s  entry %.2f  target %.2f  stop %.2f  qty %g\n",
		p.Symbol, p.Strategy, p.TargetEntryPrice, p.ProfitTarget, p.StopLoss, p.TargetQuantity)
	fmt.Fprintf(out, "  Risk %.2f  Reward %.2f  R:R %.2f\n", d.Metrics.PlannedRisk, d.Metrics.PlannedReward, d.Metrics.RR)
	for _, v := range d.Violations {
		fmt.Fprintf(out, "  ! %s: %s\n", v.Code, v.Msg)
	}
	return nil
}

func runPositionList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ps, err := a.svc.ListPositions(cmd.Context(), position.Status(listStatus))
	if err != nil {
		return err
	}
	printPositions(cmd.OutOrStdout(), ps)
	return nil
}

func printPositions(w io.Writer, ps []position.Position) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No positions")
		return
	}
	fmt.Fprintf(w, "%-26s  %-22s  %-10s  %-8s  %8s  %6s\n", "ID", "INSTRUMENT", "STRATEGY", "STATUS", "ENTRY", "TRADES")
	for _, p := range ps {
		fmt.Fprintf(w, "%-26s  %-22s  %-10s  %-8s  %8.2f  %6d\n",
			p.ID, p.Instrument(), p.Strategy, p.Status(), p.TargetEntryPrice, len(p.Trades))
	}
}

func runPositionShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.svc.Valuate(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	entries, err := a.svc.ListJournalEntries(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	s, err := journal.FormatPositionOrg(journal.Record{Position: rep.Position, Valuation: rep.Valuation, Entries: entries})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), s)
	return nil
}

func runPositionDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.DeletePosition(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted position %s\n", args[0])
	return nil
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/trading"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record trades against a position",
}

var tradeAddCmd = &cobra.Command{
	Use:   "add <position-id>",
	Short: "Record a buy or sell",
	Long: `Record a trade against a position plan.

With one or more --journal-field flags the trade and a trade_execution
journal entry are recorded together; if either fails neither is kept.

Short puts are opened with a buy at the premium received and closed with a
sell at the premium paid.

Examples:
  tradejournal trade add 01JH4Q... --type buy --qty 100 --price 150
  tradejournal trade add 01JH4Q... --type sell --qty 100 --price 165 \
      --journal-field exit_reasoning="hit target" --journal-field emotional_state=calm`,
	Args: cobra.ExactArgs(1),
	RunE: runTradeAdd,
}

var (
	tradeType       string
	tradeQty        float64
	tradePrice      float64
	tradeTime       string
	tradeUnderlying string
	tradeNotes      string
	tradeFields     []string
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd)

	f := tradeAddCmd.Flags()
	f.StringVarP(&tradeType, "type", "t", "", "buy or sell (required)")
	f.Float64VarP(&tradeQty, "qty", "q", 0, "quantity (required)")
	f.Float64VarP(&tradePrice, "price", "p", 0, "fill price (required)")
	f.StringVar(&tradeTime, "time", "", "execution time, RFC3339 or YYYY-MM-DD (default now)")
	f.StringVar(&tradeUnderlying, "underlying", "", "instrument traded (default the position's)")
	f.StringVar(&tradeNotes, "notes", "", "free-form notes")
	f.StringArrayVarP(&tradeFields, "journal-field", "j", nil, "journal field as name=response (repeatable)")
	tradeAddCmd.MarkFlagRequired("type")
	tradeAddCmd.MarkFlagRequired("qty")
	tradeAddCmd.MarkFlagRequired("price")
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	req := position.TradeRequest{
		Type:      position.TradeType(tradeType),
		Quantity:  &tradeQty,
		Price:     &tradePrice,
		Timestamp: tradeTime,
		Notes:     tradeNotes,
	}
	if req.Timestamp == "" {
		req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if cmd.Flags().Changed("underlying") {
		req.Underlying = &tradeUnderlying
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if len(tradeFields) > 0 {
		fields, err := parseFields(tradeFields)
		if err != nil {
			return err
		}
		p, err := a.svc.ExecuteTradeWithJournal(cmd.Context(), args[0], req, trading.JournalInput{Fields: fields})
		if err != nil {
			return err
		}
		t := p.Trades[len(p.Trades)-1]
		fmt.Fprintf(out, "Recorded %s %g %s @ %.2f (%s) with journal entry %s\n",
			t.Type, t.Quantity, t.Underlying, t.Price, t.ID, p.JournalEntryIDs[len(p.JournalEntryIDs)-1])
		fmt.Fprintf(out, "Position %s is %s\n", p.ID, p.Status())
		return nil
	}

	trades, err := a.svc.AddTrade(cmd.Context(), args[0], req)
	if err != nil {
		return err
	}
	t := trades[len(trades)-1]
	fmt.Fprintf(out, "Recorded %s %g %s @ %.2f (%s)\n", t.Type, t.Quantity, t.Underlying, t.Price, t.ID)
	return nil
}

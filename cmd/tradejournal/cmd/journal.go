package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/position"
	"github.com/rustyeddy/tradejournal/trading"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Write, list and delete journal entries",
	Long: `Manage journal entries.

Subcommands:
  add    - Write an entry, optionally about a position or trade
  list   - List entries, all or for one position
  delete - Delete an entry and unlink it from its position

Examples:
  tradejournal journal add --position 01JH4Q... --type position_plan -f thesis="Breakout above the base"
  tradejournal journal list 01JH4Q...`,
}

var journalAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Write a journal entry",
	Args:  cobra.NoArgs,
	RunE:  runJournalAdd,
}

var journalListCmd = &cobra.Command{
	Use:   "list [position-id]",
	Short: "List journal entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalList,
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDelete,
}

var (
	journalPosition string
	journalTrade    string
	journalType     string
	journalFields   []string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalAddCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalDeleteCmd)

	f := journalAddCmd.Flags()
	f.StringVar(&journalPosition, "position", "", "position the entry is about")
	f.StringVar(&journalTrade, "trade", "", "trade the entry is about (needs --position)")
	f.StringVar(&journalType, "type", string(position.EntryPositionPlan), "position_plan or trade_execution")
	f.StringArrayVarP(&journalFields, "field", "f", nil, "field as name=response (repeatable)")
}

func runJournalAdd(cmd *cobra.Command, args []string) error {
	fields, err := parseFields(journalFields)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.svc.CreateJournalEntry(cmd.Context(), trading.NewEntry{
		PositionID: journalPosition,
		TradeID:    journalTrade,
		EntryType:  position.EntryType(journalType),
		Fields:     fields,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created journal entry %s\n", e.ID)
	return nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	positionID := ""
	if len(args) == 1 {
		positionID = args[0]
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	es, err := a.svc.ListJournalEntries(cmd.Context(), positionID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(es) == 0 {
		fmt.Fprintln(out, "No journal entries")
		return nil
	}
	for _, e := range es {
		fmt.Fprintf(out, "%s  %s  %s", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.EntryType)
		if e.PositionID != "" {
			fmt.Fprintf(out, "  position %s", e.PositionID)
		}
		if e.TradeID != "" {
			fmt.Fprintf(out, "  trade %s", e.TradeID)
		}
		fmt.Fprintln(out)
		for _, f := range e.Fields {
			fmt.Fprintf(out, "    %s: %s\n", f.Name, f.Response)
		}
	}
	return nil
}

func runJournalDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.DeleteJournalEntry(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted journal entry %s\n", args[0])
	return nil
}

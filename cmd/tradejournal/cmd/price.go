package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Enter and look up prices",
}

var priceSetCmd = &cobra.Command{
	Use:   "set <symbol> <close>",
	Short: "Record a manual closing price",
	Long: `Record a manual quote. Option contracts use their OCC symbol, e.g.
AAPL250117P00150000. Manual quotes take precedence over Alpaca.`,
	Args: cobra.ExactArgs(2),
	RunE: runPriceSet,
}

var priceGetCmd = &cobra.Command{
	Use:   "get <symbol>...",
	Short: "Show the latest known prices",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPriceGet,
}

var priceAsOf string

func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.AddCommand(priceSetCmd)
	priceCmd.AddCommand(priceGetCmd)

	priceSetCmd.Flags().StringVar(&priceAsOf, "as-of", "", "quote time, RFC3339 (default now)")
}

func runPriceSet(cmd *cobra.Command, args []string) error {
	closePrice, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("close price: %w", err)
	}
	asOf := time.Now().UTC()
	if priceAsOf != "" {
		if asOf, err = time.Parse(time.RFC3339, priceAsOf); err != nil {
			return fmt.Errorf("as-of: %w", err)
		}
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.book.SetPrice(cmd.Context(), args[0], closePrice, asOf); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %.4f as of %s\n", strings.ToUpper(args[0]), closePrice, asOf.Format(time.RFC3339))
	return nil
}

func runPriceGet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	symbols := make([]string, len(args))
	for i, s := range args {
		symbols[i] = strings.ToUpper(s)
	}
	quotes, err := a.prices.LatestPrices(cmd.Context(), symbols)
	if err != nil {
		return err
	}

	sort.Strings(symbols)
	out := cmd.OutOrStdout()
	for _, s := range symbols {
		q, ok := quotes[s]
		if !ok {
			fmt.Fprintf(out, "%-22s  no data\n", s)
			continue
		}
		fmt.Fprintf(out, "%-22s  %10.4f  %s\n", s, q.Close, q.AsOf.UTC().Format(time.RFC3339))
	}
	return nil
}

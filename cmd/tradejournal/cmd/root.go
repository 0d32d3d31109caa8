package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "Plan positions, record trades and keep a trading journal",
	Long: `Tradejournal tracks positions from plan to close.

It provides tools for:
  - Planning long stock and short put positions with targets and stops
  - Recording buy and sell trades against a plan
  - Writing journal reflections alongside each trade
  - Valuing open positions against manual or Alpaca prices
  - Exporting the journal to Org-mode or CSV
  - Serving the same operations over HTTP`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
}

package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataPath string
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leadscan",
	Short: "Lead-day equity scanner",
	Long: `leadscan selects each day's top gainers from a daily OHLC table,
pairs them with their next trading day and derives order / stop-loss levels.

Usage:
  go run ./cmd/leadscan [command]

Examples:
  go run ./cmd/leadscan api
  go run ./cmd/leadscan analyze --from 2024-01-01 --to 2024-01-31 --top-n 3
  go run ./cmd/leadscan symbols
  go run ./cmd/leadscan check-data
  go run ./cmd/leadscan scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "price CSV path (overrides DATA_CSV_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

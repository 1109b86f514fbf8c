package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/leadscan/internal/contracts"
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List symbols and date coverage",
	Long: `Print the distinct symbols of the loaded table and its date range.

Example:
  go run ./cmd/leadscan symbols`,
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := app.pipeline.Table()
	symbols := table.Symbols()

	PrintHeader(out, "Symbols")
	PrintKeyValue(out, "Symbols", strconv.Itoa(len(symbols)), 12)
	PrintKeyValue(out, "Records", strconv.Itoa(table.Len()), 12)
	if from, to, ok := table.DateRange(); ok {
		PrintKeyValue(out, "Period", fmt.Sprintf("%s ~ %s", from.Format(contracts.DateLayout), to.Format(contracts.DateLayout)), 12)
		PrintKeyValue(out, "Trading days", strconv.Itoa(table.TradingDays()), 12)
	}
	PrintSeparator(out)
	PrintList(out, symbols)

	return nil
}

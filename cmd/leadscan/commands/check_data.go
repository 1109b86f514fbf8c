package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/leadscan/internal/contracts"
)

// checkDataCmd represents the check-data command
var checkDataCmd = &cobra.Command{
	Use:   "check-data",
	Short: "Load and validate the price source",
	Long: `Load the configured source and print a quality summary.

Checks:
- required columns and numeric fields (load fails otherwise)
- duplicate (date, symbol) rows (load fails otherwise)
- non-positive prices
- High below Low
- Open / Close outside [Low, High]

Example:
  go run ./cmd/leadscan check-data
  go run ./cmd/leadscan check-data --data ./Equitydata.csv --max-issues 50`,
	RunE: runCheckData,
}

var (
	checkMaxIssues int
	checkStrict    bool
)

func init() {
	rootCmd.AddCommand(checkDataCmd)

	checkDataCmd.Flags().IntVar(&checkMaxIssues, "max-issues", 20, "issues listed in the summary")
	checkDataCmd.Flags().BoolVar(&checkStrict, "strict", false, "exit with an error when any issue is found")
}

func runCheckData(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report := app.quality

	PrintHeader(out, "Data Check")
	PrintKeyValue(out, "Source", app.cfg.Data.Source, 13)
	PrintKeyValue(out, "Records", strconv.Itoa(report.Records), 13)
	PrintKeyValue(out, "Symbols", strconv.Itoa(report.Symbols), 13)
	PrintKeyValue(out, "Trading days", strconv.Itoa(report.TradingDays), 13)
	if report.Records > 0 {
		PrintKeyValue(out, "Period", fmt.Sprintf("%s ~ %s", report.From.Format(contracts.DateLayout), report.To.Format(contracts.DateLayout)), 13)
	}
	PrintKeyValue(out, "Coverage", fmt.Sprintf("%.1f%%", report.Coverage*100), 13)
	PrintKeyValue(out, "Quality score", fmt.Sprintf("%.1f%%", report.QualityScore*100), 13)
	PrintSeparator(out)

	if report.Passed() {
		PrintSuccess(out, "No quality issues found")
		return nil
	}

	PrintWarning(out, fmt.Sprintf("%d quality issues", len(report.Issues)))
	items := make([]string, 0)
	for i, issue := range report.Issues {
		if i == checkMaxIssues {
			items = append(items, fmt.Sprintf("… %d more", len(report.Issues)-i))
			break
		}
		items = append(items, fmt.Sprintf("%s %s %s: %s",
			issue.Date.Format(contracts.DateLayout), issue.Symbol, issue.Kind, issue.Detail))
	}
	PrintList(out, items)

	if checkStrict {
		return fmt.Errorf("%d quality issues found", len(report.Issues))
	}
	return nil
}

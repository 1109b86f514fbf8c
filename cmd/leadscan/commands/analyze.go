package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/internal/presets"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the pipeline once and print the result",
	Long: `Run the lead-day pipeline over the loaded table and print the result
indexed by Date.

Stages:
  symbol filter → date filter → top N per day → lead join → order / stop loss

Omitted --top-n, --order and --stop-loss use the PIPELINE_* defaults.
A --preset from the PRESETS_PATH file is applied on top of the defaults;
explicit flags still win.

Example:
  go run ./cmd/leadscan analyze --from 2024-01-01 --to 2024-01-31
  go run ./cmd/leadscan analyze --from 01-01-2024 --to 31-01-2024 --symbols AAA,BBB --top-n 3 --format csv`,
	RunE: runAnalyze,
}

var (
	analyzeFrom     string
	analyzeTo       string
	analyzeSymbols  []string
	analyzeTopN     int
	analyzeOrder    int
	analyzeStopLoss int
	analyzeMover    string
	analyzeSide     string
	analyzeFormat   string
	analyzePreset   string
	analyzePresets  string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "start date, inclusive (YYYY-MM-DD or DD-MM-YYYY)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "end date, inclusive")
	analyzeCmd.Flags().StringSliceVar(&analyzeSymbols, "symbols", nil, "symbols to keep (default all)")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 0, "rows kept per day")
	analyzeCmd.Flags().IntVar(&analyzeOrder, "order", 0, "order offset in percent of Open")
	analyzeCmd.Flags().IntVar(&analyzeStopLoss, "stop-loss", 0, "stop-loss offset in percent of the order price")
	analyzeCmd.Flags().StringVar(&analyzeMover, "mover", string(contracts.MoverGainer), "gainer|loser")
	analyzeCmd.Flags().StringVar(&analyzeSide, "side", string(contracts.SideBuy), "buy|sell")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", FormatTable, "output format (table|csv|json)")
	analyzeCmd.Flags().StringVar(&analyzePreset, "preset", "", "named parameter preset")
	analyzeCmd.Flags().StringVar(&analyzePresets, "presets", "", "preset YAML file (overrides PRESETS_PATH)")

	analyzeCmd.MarkFlagRequired("from")
	analyzeCmd.MarkFlagRequired("to")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}

	params, err := analyzeParams(cmd, app.cfg.Pipeline.TopN, app.cfg.Pipeline.OrderPct, app.cfg.Pipeline.StopLossPct)
	if err != nil {
		return err
	}

	if analyzePreset != "" {
		path := app.cfg.Data.PresetsPath
		if analyzePresets != "" {
			path = analyzePresets
		}
		var hash string
		if params, hash, err = applyPreset(cmd, params, path, analyzePreset); err != nil {
			return err
		}
		app.log.WithFields(map[string]interface{}{
			"preset": analyzePreset,
			"file":   path,
			"hash":   hash,
		}).Info("Preset applied")
	}

	result, err := app.pipeline.Run(cmd.Context(), params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	format := strings.ToLower(analyzeFormat)
	if err := WriteAnalysis(out, format, result.Output()); err != nil {
		return err
	}

	if format == FormatTable {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%d rows (%d signals, %d dropped by lead join)\n",
			len(result.Rows), result.Stats.Signals, result.Stats.DroppedByJoin)
		if result.Stats.StopLossBreached {
			PrintWarning(out, "a stop loss fell below its day's Low; New_StopLoss is 0 for every row")
		}
	}
	return nil
}

// analyzeParams builds params from the flags, taking defaults for unset numbers
func analyzeParams(cmd *cobra.Command, topN, order, stopLoss int) (contracts.Params, error) {
	params := contracts.DefaultParams()

	var err error
	if params.Start, err = pipeline.ParseDate(analyzeFrom); err != nil {
		return params, fmt.Errorf("--from: %w", err)
	}
	if params.End, err = pipeline.ParseDate(analyzeTo); err != nil {
		return params, fmt.Errorf("--to: %w", err)
	}

	params.Symbols = analyzeSymbols
	params.TopN = topN
	params.OrderPct = order
	params.StopLossPct = stopLoss
	if cmd.Flags().Changed("top-n") {
		params.TopN = analyzeTopN
	}
	if cmd.Flags().Changed("order") {
		params.OrderPct = analyzeOrder
	}
	if cmd.Flags().Changed("stop-loss") {
		params.StopLossPct = analyzeStopLoss
	}
	params.Mover = contracts.Mover(analyzeMover)
	params.Side = contracts.Side(analyzeSide)

	return params, nil
}

// applyPreset overlays a named preset, then re-applies any explicit flag.
// It also returns the preset hash for the run log.
func applyPreset(cmd *cobra.Command, params contracts.Params, path, name string) (contracts.Params, string, error) {
	if path == "" {
		return params, "", fmt.Errorf("--preset needs PRESETS_PATH or --presets")
	}
	file, err := presets.Load(path)
	if err != nil {
		return params, "", err
	}
	preset, ok := file.Find(name)
	if !ok {
		return params, "", fmt.Errorf("preset %q not found (available: %s)", name, strings.Join(file.Names(), ", "))
	}
	hash, err := presets.Hash(preset)
	if err != nil {
		return params, "", err
	}

	params = preset.Apply(params)
	flags := cmd.Flags()
	if flags.Changed("symbols") {
		params.Symbols = analyzeSymbols
	}
	if flags.Changed("top-n") {
		params.TopN = analyzeTopN
	}
	if flags.Changed("order") {
		params.OrderPct = analyzeOrder
	}
	if flags.Changed("stop-loss") {
		params.StopLossPct = analyzeStopLoss
	}
	if flags.Changed("mover") {
		params.Mover = contracts.Mover(analyzeMover)
	}
	if flags.Changed("side") {
		params.Side = contracts.Side(analyzeSide)
	}
	return params, hash, nil
}

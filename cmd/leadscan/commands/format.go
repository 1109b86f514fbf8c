package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/leadscan/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// Output formats for analysis results
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintHeader prints a titled block header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	PrintSeparator(w)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val)
		}
	}
	fmt.Fprintln(w)
}

// PrintList prints a bulleted list
func PrintList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "   • %s\n", item)
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// analysisRecord renders one output row in column order
func analysisRecord(r contracts.AnalysisRow) []string {
	return []string{
		r.Date,
		r.Symbol,
		formatPrice(r.PrevClose),
		formatPrice(r.Open),
		formatPrice(r.High),
		formatPrice(r.Low),
		formatPrice(r.Close),
		formatPrice(r.OpenOrder),
		formatPrice(r.StopLoss),
		formatPrice(r.NewStopLoss),
	}
}

// WriteAnalysis renders rows indexed by Date in the chosen format
func WriteAnalysis(w io.Writer, format string, rows []contracts.AnalysisRow) error {
	switch format {
	case FormatTable:
		records := make([][]string, len(rows))
		widths := make([]int, len(contracts.AnalysisColumns))
		for i, col := range contracts.AnalysisColumns {
			widths[i] = len(col)
		}
		for i, row := range rows {
			records[i] = analysisRecord(row)
			for j, v := range records[i] {
				if len(v) > widths[j] {
					widths[j] = len(v)
				}
			}
		}
		PrintTableHeader(w, contracts.AnalysisColumns, widths)
		for _, rec := range records {
			PrintTableRow(w, rec, widths)
		}
		return nil

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(contracts.AnalysisColumns); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(analysisRecord(row)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)

	default:
		return fmt.Errorf("unknown format %q (valid: table, csv, json)", format)
	}
}

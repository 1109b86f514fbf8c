package contracts

import "time"

// SignalRow is a PriceRecord annotated by the analysis pipeline
// ⭐ SSOT: 파이프라인 단계 간 시그널 데이터 전달
type SignalRow struct {
	PriceRecord

	Profit    float64    `json:"profit"`
	ProfitPct float64    `json:"profit_pct"`
	LeadDate  *time.Time `json:"lead_date,omitempty"` // date of the next row in the truncated sequence

	OpenOrder   float64 `json:"open_order"`
	StopLoss    float64 `json:"stop_loss"`
	NewStopLoss float64 `json:"new_stop_loss"`
}

// AnalysisRow is the rendered output row, indexed by Date
type AnalysisRow struct {
	Date        string  `json:"Date"`
	Symbol      string  `json:"Symbol"`
	PrevClose   float64 `json:"PrevClose"`
	Open        float64 `json:"Open"`
	High        float64 `json:"High"`
	Low         float64 `json:"Low"`
	Close       float64 `json:"Close"`
	OpenOrder   float64 `json:"Open_Order"`
	StopLoss    float64 `json:"Stop_Loss"`
	NewStopLoss float64 `json:"New_StopLoss"`
}

// AnalysisColumns lists the output columns in display order
var AnalysisColumns = []string{
	"Date", "Symbol", "PrevClose", "Open", "High", "Low", "Close",
	"Open_Order", "Stop_Loss", "New_StopLoss",
}

// Output converts the row to its rendered form
func (s SignalRow) Output() AnalysisRow {
	return AnalysisRow{
		Date:        s.Date.Format(DateLayout),
		Symbol:      s.Symbol,
		PrevClose:   s.PrevClose,
		Open:        s.Open,
		High:        s.High,
		Low:         s.Low,
		Close:       s.Close,
		OpenOrder:   s.OpenOrder,
		StopLoss:    s.StopLoss,
		NewStopLoss: s.NewStopLoss,
	}
}

// StageStats counts rows surviving each pipeline stage
type StageStats struct {
	SourceRows       int  `json:"source_rows"`
	SymbolFiltered   int  `json:"symbol_filtered"`
	DateFiltered     int  `json:"date_filtered"`
	Signals          int  `json:"signals"`
	Joined           int  `json:"joined"`
	DroppedByJoin    int  `json:"dropped_by_join"`
	StopLossBreached bool `json:"stop_loss_breached"`
}

// AnalysisResult is the output of one pipeline invocation
type AnalysisResult struct {
	Params Params      `json:"params"`
	Stats  StageStats  `json:"stats"`
	Rows   []SignalRow `json:"-"`
}

// Output returns the rendered rows
func (r *AnalysisResult) Output() []AnalysisRow {
	out := make([]AnalysisRow, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Output()
	}
	return out
}

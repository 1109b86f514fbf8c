package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/pkg/logger"
)

// Analyze runs every stage over the table:
// symbol filter → date filter → top N → lead join → order/stop-loss.
// It is pure; the table is never modified.
func Analyze(table *contracts.PriceTable, params contracts.Params) (*contracts.AnalysisResult, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	result := &contracts.AnalysisResult{Params: params}
	stats := &result.Stats

	records := table.Records()
	stats.SourceRows = len(records)

	records = FilterSymbols(records, params.Symbols)
	stats.SymbolFiltered = len(records)

	records = FilterByDateRange(records, params.Start, params.End)
	stats.DateFiltered = len(records)

	signals, err := SelectTopN(records, params.TopN)
	if err != nil {
		return nil, fmt.Errorf("select top n: %w", err)
	}
	stats.Signals = len(signals)

	joined := LeadJoin(signals, table)
	stats.Joined = len(joined)
	stats.DroppedByJoin = len(signals) - len(joined)

	rows, breached := ApplyOrderStopLoss(joined, params.OrderPct, params.StopLossPct)
	stats.StopLossBreached = breached

	result.Rows = rows
	return result, nil
}

// Pipeline binds the immutable price table to a logger
// ⭐ SSOT: 분석 파이프라인 실행은 여기서만
type Pipeline struct {
	table  *contracts.PriceTable
	logger *logger.Logger
}

// New creates a pipeline over a loaded table
func New(table *contracts.PriceTable, log *logger.Logger) *Pipeline {
	return &Pipeline{
		table:  table,
		logger: log,
	}
}

// Table returns the source table
func (p *Pipeline) Table() *contracts.PriceTable {
	return p.table
}

// Run executes one analysis. Every call recomputes from the source table.
func (p *Pipeline) Run(ctx context.Context, params contracts.Params) (*contracts.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := Analyze(p.table, params)
	if err != nil {
		p.logger.WithError(err).Warn("Pipeline rejected parameters")
		return nil, err
	}

	if result.Stats.DroppedByJoin > 0 {
		p.logger.WithField("dropped", result.Stats.DroppedByJoin).Debug("Lead join dropped unmatched signals")
	}

	p.logger.WithFields(map[string]interface{}{
		"start":    result.Params.Start.Format(contracts.DateLayout),
		"end":      result.Params.End.Format(contracts.DateLayout),
		"symbols":  len(result.Params.Symbols),
		"top_n":    result.Params.TopN,
		"filtered": result.Stats.DateFiltered,
		"signals":  result.Stats.Signals,
		"rows":     len(result.Rows),
		"breached": result.Stats.StopLossBreached,
		"duration": time.Since(start),
	}).Info("Pipeline completed")

	return result, nil
}

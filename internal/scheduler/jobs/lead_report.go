package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
)

// LeadReportJob runs the analysis over the most recent window of the table
// ⭐ SSOT: 정기 리드 리포트 스케줄은 이 Job에서만
type LeadReportJob struct {
	pipeline *pipeline.Pipeline
	defaults config.PipelineConfig
	report   config.ReportConfig
	logger   *logger.Logger

	mu   sync.Mutex
	last *contracts.AnalysisResult
}

// NewLeadReportJob creates a new lead report job
func NewLeadReportJob(p *pipeline.Pipeline, cfg *config.Config, log *logger.Logger) *LeadReportJob {
	return &LeadReportJob{
		pipeline: p,
		defaults: cfg.Pipeline,
		report:   cfg.Report,
		logger:   log,
	}
}

// Name returns the job name
func (j *LeadReportJob) Name() string {
	return "lead_report"
}

// Schedule returns the configured cron schedule (weekdays after close by default)
func (j *LeadReportJob) Schedule() string {
	return j.report.Schedule
}

// Params returns the run parameters: the last LookbackDays calendar days up to the
// table's latest date, with the configured defaults.
func (j *LeadReportJob) Params() (contracts.Params, bool) {
	_, to, ok := j.pipeline.Table().DateRange()
	if !ok {
		return contracts.Params{}, false
	}

	params := contracts.DefaultParams()
	params.Start = to.AddDate(0, 0, -(j.report.LookbackDays - 1))
	params.End = to
	params.TopN = j.defaults.TopN
	params.OrderPct = j.defaults.OrderPct
	params.StopLossPct = j.defaults.StopLossPct
	return params, true
}

// Run executes the report
func (j *LeadReportJob) Run(ctx context.Context) error {
	params, ok := j.Params()
	if !ok {
		j.logger.Warn("Price table is empty, skipping lead report")
		return nil
	}

	result, err := j.pipeline.Run(ctx, params)
	if err != nil {
		return fmt.Errorf("run lead report: %w", err)
	}
	j.mu.Lock()
	j.last = result
	j.mu.Unlock()

	symbols := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		symbols = append(symbols, row.Symbol)
	}

	j.logger.WithFields(map[string]interface{}{
		"from":     params.Start.Format(contracts.DateLayout),
		"to":       params.End.Format(contracts.DateLayout),
		"rows":     len(result.Rows),
		"breached": result.Stats.StopLossBreached,
		"symbols":  strings.Join(dedupe(symbols), ","),
	}).Info("Lead report generated")

	return nil
}

// Last returns the result of the most recent successful run, nil before the first
func (j *LeadReportJob) Last() *contracts.AnalysisResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

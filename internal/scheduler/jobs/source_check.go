package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/source"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
)

// SourceCheckJob reloads the configured source and warns when it no longer
// matches the table loaded at startup. The loaded table is never replaced.
type SourceCheckJob struct {
	cfg    *config.Config
	loaded *contracts.PriceTable
	logger *logger.Logger
}

// NewSourceCheckJob creates a new source check job
func NewSourceCheckJob(cfg *config.Config, loaded *contracts.PriceTable, log *logger.Logger) *SourceCheckJob {
	return &SourceCheckJob{
		cfg:    cfg,
		loaded: loaded,
		logger: log,
	}
}

// Name returns the job name
func (j *SourceCheckJob) Name() string {
	return "source_check"
}

// Schedule returns the cron schedule (hourly)
func (j *SourceCheckJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the check
func (j *SourceCheckJob) Run(ctx context.Context) error {
	current, report, err := source.LoadTable(ctx, j.cfg, j.logger)
	if err != nil {
		return fmt.Errorf("reload source: %w", err)
	}

	_, loadedTo, _ := j.loaded.DateRange()
	fields := map[string]interface{}{
		"loaded_records":  j.loaded.Len(),
		"current_records": current.Len(),
		"quality_score":   report.QualityScore,
	}
	if current.Len() != j.loaded.Len() || !report.To.Equal(loadedTo) {
		fields["current_to"] = report.To.Format(contracts.DateLayout)
		j.logger.WithFields(fields).Warn("Source changed since startup, restart to pick it up")
		return nil
	}

	j.logger.WithFields(fields).Debug("Source unchanged")
	return nil
}

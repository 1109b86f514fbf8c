package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/internal/source"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func testConfig(lookback int) *config.Config {
	return &config.Config{
		Env:      "test",
		Pipeline: config.PipelineConfig{TopN: 1, OrderPct: 1, StopLossPct: 1},
		Report:   config.ReportConfig{Schedule: "0 30 18 * * 1-5", LookbackDays: lookback},
	}
}

func TestLeadReportJob(t *testing.T) {
	table, err := contracts.NewPriceTable([]contracts.PriceRecord{
		{Date: day(1), Symbol: "OLD", PrevClose: 10, Open: 10, High: 20, Low: 10, Close: 20},
		{Date: day(2), Symbol: "OLD", PrevClose: 20, Open: 20, High: 20, Low: 10, Close: 10},
		{Date: day(9), Symbol: "AAA", PrevClose: 100, Open: 101, High: 111, Low: 99, Close: 110},
		{Date: day(10), Symbol: "AAA", PrevClose: 110, Open: 115, High: 118, Low: 110, Close: 112},
	})
	require.NoError(t, err)

	job := NewLeadReportJob(pipeline.New(table, logger.Nop()), testConfig(2), logger.Nop())
	assert.Equal(t, "lead_report", job.Name())
	assert.Equal(t, "0 30 18 * * 1-5", job.Schedule())

	params, ok := job.Params()
	require.True(t, ok)
	assert.Equal(t, day(9), params.Start)
	assert.Equal(t, day(10), params.End)

	assert.Nil(t, job.Last())
	require.NoError(t, job.Run(context.Background()))

	last := job.Last()
	require.NotNil(t, last)
	require.Len(t, last.Rows, 1)
	assert.Equal(t, "AAA", last.Rows[0].Symbol)
	assert.Equal(t, day(10), last.Rows[0].Date)
	assert.Equal(t, 2, last.Stats.DateFiltered)
}

func TestLeadReportJob_EmptyTable(t *testing.T) {
	table, err := contracts.NewPriceTable(nil)
	require.NoError(t, err)

	job := NewLeadReportJob(pipeline.New(table, logger.Nop()), testConfig(30), logger.Nop())
	_, ok := job.Params()
	assert.False(t, ok)
	assert.NoError(t, job.Run(context.Background()))
	assert.Nil(t, job.Last())
}

const header = "Eq_Date,Eq_Symbol,Eq_PrevClose,Eq_Open,Eq_High,Eq_Low,Eq_Close\n"

func TestSourceCheckJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Equitydata.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"01-01-2024,AAA,1,1,1,1,1\n"), 0o644))

	cfg := testConfig(30)
	cfg.Data = config.DataConfig{Source: config.SourceCSV, CSVPath: path}

	loaded, err := source.NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)

	job := NewSourceCheckJob(cfg, loaded, logger.Nop())
	assert.Equal(t, "source_check", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	// a grown file is reported, not an error
	grown := header + "01-01-2024,AAA,1,1,1,1,1\n02-01-2024,AAA,1,1,1,1,1\n"
	require.NoError(t, os.WriteFile(path, []byte(grown), 0o644))
	assert.NoError(t, job.Run(context.Background()))

	// an unreadable source fails the run
	require.NoError(t, os.Remove(path))
	assert.Error(t, job.Run(context.Background()))
}

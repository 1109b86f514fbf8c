package source

import (
	"context"
	"fmt"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/database"
	"github.com/wonny/leadscan/pkg/httputil"
	"github.com/wonny/leadscan/pkg/logger"
)

// LoadTable loads the price table from the configured source and logs a quality summary.
// A load failure is fatal for the caller; quality issues are only logged.
func LoadTable(ctx context.Context, cfg *config.Config, log *logger.Logger) (*contracts.PriceTable, *QualityReport, error) {
	var src contracts.PriceSource

	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		src = NewPostgresSource(db.Pool)
	default:
		src = NewCSVSource(cfg.Data.CSVPath).WithHTTPClient(httputil.New(cfg, log))
	}

	table, err := src.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load price table: %w", err)
	}

	report := Validate(table)
	log.WithFields(map[string]interface{}{
		"source":  cfg.Data.Source,
		"records": report.Records,
		"symbols": report.Symbols,
		"days":    report.TradingDays,
		"issues":  len(report.Issues),
	}).Info("Price table loaded")

	for i, issue := range report.Issues {
		if i == 20 {
			log.Warnf("%d more quality issues not shown", len(report.Issues)-i)
			break
		}
		log.WithFields(map[string]interface{}{
			"date":   issue.Date.Format(contracts.DateLayout),
			"symbol": issue.Symbol,
			"kind":   issue.Kind,
		}).Warn(issue.Detail)
	}

	return table, report, nil
}

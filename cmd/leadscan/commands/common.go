package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/internal/source"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
)

// app holds what every command needs once the table is loaded
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	pipeline *pipeline.Pipeline
	quality  *source.QualityReport
}

// loadConfig reads the environment and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataPath != "" {
		cfg.Data.Source = config.SourceCSV
		cfg.Data.CSVPath = dataPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// bootstrap loads config, the logger and the price table. Logs go to logOut.
// A load failure aborts the command.
func bootstrap(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithOutput(cfg, logOut)

	table, report, err := source.LoadTable(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to load price table")
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		pipeline: pipeline.New(table, log),
		quality:  report,
	}, nil
}

package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"churnprep/internal/config"
	"churnprep/internal/logging"
	"churnprep/internal/pipeline"
	"churnprep/internal/telemetry"
)

// Config holds process-level settings, mostly from CLI flags. Empty fields
// fall back to params.yaml and then to the environment.
type Config struct {
	ParamsPath string
	LogLevel   string
	LogJSON    bool
	ErrorLog   string
	DryRun     bool
	Console    io.Writer // log destination, defaults to stderr
	Out        io.Writer // dry-run preview destination, defaults to stdout
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. params
	params, err := config.LoadParams(cfg.ParamsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: params: %w", pipeline.ErrConfig, err)
	}

	// 2. logger
	opts := logging.Options{
		Level:     params.Logging.Level,
		JSON:      params.Logging.JSON || cfg.LogJSON,
		ErrorFile: params.Logging.ErrorFile,
		Console:   cfg.Console,
	}
	opts = logging.OptionsFromEnv(opts)
	if cfg.LogLevel != "" {
		opts.Level = cfg.LogLevel
	}
	if cfg.ErrorLog != "" {
		opts.ErrorFile = cfg.ErrorLog
	}
	log, closer, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: logging: %w", pipeline.ErrConfig, err)
	}
	runID := uuid.NewString()
	log = log.With("run_id", runID)

	// 3. metrics
	m := telemetry.New()

	log.Debug("parameters loaded", "path", cfg.ParamsPath, "test_size", params.DataIngestion.TestSize, "dry_run", cfg.DryRun)
	return &Engine{
		runID:   runID,
		log:     log,
		closer:  closer,
		metrics: m,
		env: pipeline.Env{
			Params:  params,
			Log:     log,
			Metrics: m,
			DryRun:  cfg.DryRun,
			Out:     cfg.Out,
		},
	}, nil
}

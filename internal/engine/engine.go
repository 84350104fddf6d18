package engine

import (
	"context"
	"io"
	"log/slog"

	"churnprep/internal/pipeline"
	"churnprep/internal/telemetry"
)

type Engine struct {
	runID   string
	log     *slog.Logger
	closer  io.Closer
	metrics *telemetry.Metrics
	env     pipeline.Env
}

// Run executes the named stages, or all of them when names is empty, and
// exports metrics afterwards whatever the outcome.
func (e *Engine) Run(ctx context.Context, names ...string) error {
	runner, err := pipeline.Compile(e.env, names...)
	if err != nil {
		e.log.Error("pipeline", "err", err)
		return err
	}
	e.log.Info("pipeline started", "stages", runner.Stages())

	runErr := runner.Run(ctx)
	if runErr == nil {
		e.log.Info("pipeline completed")
	}

	mc := e.env.Params.Metrics
	if err := e.metrics.Flush(mc.Textfile, mc.Pushgateway, mc.Job); err != nil {
		e.log.Warn("metrics export failed", "err", err)
	}
	return runErr
}

func (e *Engine) RunID() string { return e.runID }

func (e *Engine) Logger() *slog.Logger { return e.log }

// Close releases the error log file.
func (e *Engine) Close() error { return e.closer.Close() }

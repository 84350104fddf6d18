package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"churnprep/internal/telemetry"
)

// Runner executes stages in order and stops at the first failure.
type Runner struct {
	log     *slog.Logger
	metrics *telemetry.Metrics
	stages  []Stage
}

func NewRunner(log *slog.Logger, m *telemetry.Metrics) *Runner {
	return &Runner{log: log, metrics: m}
}

func (r *Runner) AddStage(s Stage) { r.stages = append(r.stages, s) }

func (r *Runner) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	return names
}

func (r *Runner) Run(ctx context.Context) error {
	if len(r.stages) == 0 {
		return errors.New("runner: no stages configured")
	}
	for _, s := range r.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := r.log.With("stage", s.Name())
		log.Info("stage started")

		start := time.Now()
		err := s.Run(ctx)
		elapsed := time.Since(start)
		r.metrics.ObserveStage(s.Name(), elapsed, err)

		if err != nil {
			log.Error("pipeline failed", "err", err, "elapsed", elapsed)
			return fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		log.Info("stage completed", "elapsed", elapsed)
	}
	return nil
}

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"churnprep/internal/dataset"
	"churnprep/internal/spec"
	"churnprep/internal/telemetry"
	"churnprep/sink"
	"churnprep/sink/csvdir"
	"churnprep/sink/stdout"
)

// Stage is one independently runnable step. Stages exchange data only
// through the files they read and write.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// Env carries what every stage needs; it is built once per process.
type Env struct {
	Params  spec.Params
	Log     *slog.Logger
	Metrics *telemetry.Metrics
	DryRun  bool      // preview outputs on Out instead of writing files
	Out     io.Writer // dry-run destination
}

// Builder constructs a stage from the shared environment.
type Builder func(Env) Stage

var builders = map[string]Builder{}

// Order is the data-flow order of the built-in stages.
var Order = []string{"ingest", "outliers", "features"}

func Register(name string, b Builder) { builders[name] = b }

// Build returns the named stage.
func Build(name string, env Env) (Stage, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stage %q (have %v)", ErrConfig, name, Order)
	}
	return b(env), nil
}

func (e Env) logger(stage string) *slog.Logger {
	return e.Log.With("stage", stage)
}

// sink returns where a stage's output split goes.
func (e Env) sink(dir string) (sink.Adapter, error) {
	if e.DryRun {
		s, err := sink.NewAdapter("stdout")
		if err != nil {
			return nil, err
		}
		return s, s.Configure(stdout.Config{Rows: 5, Out: e.Out})
	}
	s, err := sink.NewAdapter("csvdir")
	if err != nil {
		return nil, err
	}
	return s, s.Configure(csvdir.Config{Dir: dir})
}

// loadSplit reads train/test from dir and logs their shapes.
func (e Env) loadSplit(log *slog.Logger, stage, dir string) (dataset.Split, error) {
	log.Debug("loading datasets", "path", dir)
	split, err := dataset.Load(dir)
	if err != nil {
		log.Error("error while loading data", "path", dir, "err", err)
		return split, wrap(ErrIO, "load "+dir, err)
	}
	log.Debug("train shape", "shape", dataset.Shape(split.Train))
	log.Debug("test shape", "shape", dataset.Shape(split.Test))
	e.Metrics.RowsRead.WithLabelValues(stage, "train").Add(float64(split.Train.Nrow()))
	e.Metrics.RowsRead.WithLabelValues(stage, "test").Add(float64(split.Test.Nrow()))
	return split, nil
}

// saveSplit hands the split to the configured sink.
func (e Env) saveSplit(log *slog.Logger, stage, dir string, split dataset.Split) error {
	s, err := e.sink(dir)
	if err != nil {
		return wrap(ErrConfig, "sink", err)
	}
	defer s.Close()
	if err := s.Push(split); err != nil {
		log.Error("error while saving datasets", "path", dir, "err", err)
		return wrap(ErrIO, "save "+dir, err)
	}
	e.Metrics.RowsWritten.WithLabelValues(stage, "train").Add(float64(split.Train.Nrow()))
	e.Metrics.RowsWritten.WithLabelValues(stage, "test").Add(float64(split.Test.Nrow()))
	if !e.DryRun {
		log.Debug("datasets saved", "path", dir)
	}
	return nil
}

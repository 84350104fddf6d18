package pipeline

import (
	"context"

	"churnprep/internal/dataset"
	"churnprep/internal/ingest"
	"churnprep/source"
	_ "churnprep/source/file"
	_ "churnprep/source/remote"
)

type ingestStage struct{ env Env }

func (s *ingestStage) Name() string { return "ingest" }

// Run fetches the raw dataset, splits it and writes the raw train/test pair.
func (s *ingestStage) Run(ctx context.Context) error {
	log := s.env.logger(s.Name())
	p := s.env.Params.DataIngestion

	log.Debug("starting dataset loading", "source", p.Source.Kind, "dataset", p.Source.Dataset, "file", p.Source.File)
	src, err := source.NewAdapter(p.Source.Kind)
	if err != nil {
		return wrap(ErrConfig, "source", err)
	}
	if err := src.Configure(p.Source); err != nil {
		return wrap(ErrConfig, "source", err)
	}
	df, err := src.Fetch(ctx)
	if err != nil {
		log.Error("error while loading dataset", "err", err)
		return wrap(ErrSource, "fetch", err)
	}
	log.Debug("dataset loaded", "shape", dataset.Shape(df))
	s.env.Metrics.RowsRead.WithLabelValues(s.Name(), "raw").Add(float64(df.Nrow()))

	log.Debug("splitting dataset into train and test", "test_size", p.TestSize, "random_state", p.RandomState)
	split, err := ingest.TrainTestSplit(df, p.TestSize, p.RandomState)
	if err != nil {
		log.Error("error while splitting dataset", "err", err)
		return wrap(ErrSchema, "split", err)
	}
	log.Debug("dataset split completed", "train", dataset.Shape(split.Train), "test", dataset.Shape(split.Test))

	return s.env.saveSplit(log, s.Name(), s.env.Params.Paths.Raw, split)
}

func init() {
	Register("ingest", func(e Env) Stage { return &ingestStage{env: e} })
}

package pipeline

import (
	"context"

	"churnprep/internal/dataset"
	"churnprep/internal/transform"
)

type featureStage struct{ env Env }

func (s *featureStage) Name() string { return "features" }

// Run fits the column transform on training features, applies it to both
// sets, and persists the artifact followed by the datasets. Nothing is
// written unless both transforms succeed.
func (s *featureStage) Run(ctx context.Context) error {
	log := s.env.logger(s.Name())
	p := s.env.Params

	split, err := s.env.loadSplit(log, s.Name(), p.Paths.Interim)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cat := -1
	if p.Features.Categorical != nil {
		cat = *p.Features.Categorical
	}
	spec := transform.Spec{
		Numeric:       p.Features.Numeric,
		Categorical:   cat,
		DropFirst:     p.Features.DropFirstLevel(),
		HandleUnknown: transform.UnknownPolicy(p.Features.HandleUnknown),
	}
	cols := transform.Columns{ID: p.Features.IDColumn, Target: p.Features.TargetColumn}

	log.Debug("dropping identifier and separating target", "id", cols.ID, "target", cols.Target)
	log.Debug("fitting transformer on training data", "numeric", spec.Numeric, "categorical", spec.Categorical)
	res, err := transform.FitApply(split, cols, spec)
	if err != nil {
		log.Error("error during feature transformation", "err", err)
		return wrap(ErrSchema, "transform", err)
	}
	log.Debug("transformed train shape", "shape", dataset.Shape(res.Split.Train))
	log.Debug("transformed test shape", "shape", dataset.Shape(res.Split.Test))
	s.env.Metrics.Columns.WithLabelValues("train").Set(float64(res.Split.Train.Ncol()))
	s.env.Metrics.Columns.WithLabelValues("test").Set(float64(res.Split.Test.Ncol()))

	if !s.env.DryRun {
		log.Debug("saving column transformer", "path", p.Paths.Artifact)
		if err := res.Fitted.Save(p.Paths.Artifact); err != nil {
			log.Error("error while saving column transformer", "err", err)
			return wrap(ErrIO, "save artifact", err)
		}
	}
	return s.env.saveSplit(log, s.Name(), p.Paths.Processed, res.Split)
}

func init() {
	Register("features", func(e Env) Stage { return &featureStage{env: e} })
}

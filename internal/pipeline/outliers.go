package pipeline

import (
	"context"

	"churnprep/internal/outlier"
)

type outlierStage struct{ env Env }

func (s *outlierStage) Name() string { return "outliers" }

// Run clips training salaries per (department, tenure) group and passes the
// test set through.
func (s *outlierStage) Run(ctx context.Context) error {
	log := s.env.logger(s.Name())
	p := s.env.Params

	n, err := outlier.New(outlier.Config{
		GroupBy:       p.Outliers.GroupBy,
		Column:        p.Outliers.Column,
		Whisker:       p.Outliers.Whisker,
		PreserveOrder: p.Outliers.KeepOrder(),
	}, log)
	if err != nil {
		return wrap(ErrConfig, "outliers", err)
	}

	split, err := s.env.loadSplit(log, s.Name(), p.Paths.Raw)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("applying group-wise IQR outlier treatment", "group_by", p.Outliers.GroupBy, "column", p.Outliers.Column)
	out, rep, err := n.Apply(split)
	if err != nil {
		return wrap(ErrSchema, "outliers", err)
	}
	s.env.Metrics.Groups.Add(float64(len(rep.Groups)))
	s.env.Metrics.ValuesClipped.WithLabelValues("low").Add(float64(rep.ClippedLow))
	s.env.Metrics.ValuesClipped.WithLabelValues("high").Add(float64(rep.ClippedHigh))
	log.Info("outlier handling completed", "groups", len(rep.Groups), "clipped_low", rep.ClippedLow, "clipped_high", rep.ClippedHigh)

	return s.env.saveSplit(log, s.Name(), p.Paths.Interim, out)
}

func init() {
	Register("outliers", func(e Env) Stage { return &outlierStage{env: e} })
}

package transform

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"churnprep/internal/dataset"
)

// Columns names the identifier and target of the input frames.
type Columns struct {
	ID     string
	Target string
}

// Result holds everything the features stage persists.
type Result struct {
	Split  dataset.Split
	Fitted *Fitted
}

// SplitTarget drops the identifier and separates the predictors from the
// target column.
func SplitTarget(df dataframe.DataFrame, c Columns) (dataframe.DataFrame, series.Series, error) {
	if err := dataset.RequireColumns(df, c.ID, c.Target); err != nil {
		return dataframe.DataFrame{}, series.Series{}, err
	}
	y := df.Col(c.Target).Copy()
	x := df.Drop([]string{c.ID, c.Target})
	if x.Err != nil {
		return x, y, x.Err
	}
	return x, y, nil
}

// Reattach appends the target to a transformed frame, row for row.
func Reattach(x dataframe.DataFrame, y series.Series) (dataframe.DataFrame, error) {
	if x.Nrow() != y.Len() {
		return x, fmt.Errorf("%w: %d transformed rows, %d targets", ErrSchemaMismatch, x.Nrow(), y.Len())
	}
	out := x.Mutate(dataset.StringColumn(y.Name, y.Records()))
	return out, out.Err
}

// FitApply fits spec on the training predictors only, then transforms
// train and test. Nothing is written; callers persist Result once both
// transforms have succeeded.
func FitApply(split dataset.Split, c Columns, spec Spec) (Result, error) {
	xTrain, yTrain, err := SplitTarget(split.Train, c)
	if err != nil {
		return Result{}, fmt.Errorf("train: %w", err)
	}
	xTest, yTest, err := SplitTarget(split.Test, c)
	if err != nil {
		return Result{}, fmt.Errorf("test: %w", err)
	}

	fitted, err := Fit(spec, xTrain)
	if err != nil {
		return Result{}, fmt.Errorf("fit: %w", err)
	}

	train, err := apply(fitted, xTrain, yTrain)
	if err != nil {
		return Result{}, fmt.Errorf("transform train: %w", err)
	}
	test, err := apply(fitted, xTest, yTest)
	if err != nil {
		return Result{}, fmt.Errorf("transform test: %w", err)
	}
	return Result{Split: dataset.Split{Train: train, Test: test}, Fitted: fitted}, nil
}

func apply(t Transformer, x dataframe.DataFrame, y series.Series) (dataframe.DataFrame, error) {
	out, err := t.Transform(x)
	if err != nil {
		return out, err
	}
	return Reattach(out, y)
}

package transform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"churnprep/internal/dataset"
	"churnprep/internal/stats"
)

const (
	scalePrefix  = "standard_scaling__"
	onehotPrefix = "one_hot_encoding__"
	remainPrefix = "remainder__"
)

type UnknownPolicy string

const (
	UnknownIgnore UnknownPolicy = "ignore" // all-zero indicators
	UnknownError  UnknownPolicy = "error"
)

var (
	ErrPosition       = errors.New("transform: bad column position")
	ErrSchemaMismatch = errors.New("transform: input schema does not match fitted transform")
	ErrUnknownLevel   = errors.New("transform: category not seen during fit")
	ErrEmptyFit       = errors.New("transform: no rows to fit")
)

// Spec selects columns by position in the feature frame.
type Spec struct {
	Numeric       []int
	Categorical   int // -1 disables encoding
	DropFirst     bool
	HandleUnknown UnknownPolicy
}

// Transformer applies a fitted column transform to a feature frame.
type Transformer interface {
	Transform(x dataframe.DataFrame) (dataframe.DataFrame, error)
	OutputColumns() []string
}

var _ Transformer = (*Fitted)(nil)

func (s Spec) validate(ncol int) error {
	seen := map[int]bool{}
	for _, i := range s.Numeric {
		if i < 0 || i >= ncol {
			return fmt.Errorf("%w: numeric position %d, frame has %d columns", ErrPosition, i, ncol)
		}
		if seen[i] {
			return fmt.Errorf("%w: numeric position %d repeated", ErrPosition, i)
		}
		seen[i] = true
	}
	if s.Categorical >= 0 {
		if s.Categorical >= ncol {
			return fmt.Errorf("%w: categorical position %d, frame has %d columns", ErrPosition, s.Categorical, ncol)
		}
		if seen[s.Categorical] {
			return fmt.Errorf("%w: position %d is both numeric and categorical", ErrPosition, s.Categorical)
		}
	}
	switch s.HandleUnknown {
	case UnknownIgnore, UnknownError, "":
	default:
		return fmt.Errorf("transform: unknown-category policy %q", s.HandleUnknown)
	}
	return nil
}

// Fit learns scaler statistics and the category vocabulary from x.
func Fit(spec Spec, x dataframe.DataFrame) (*Fitted, error) {
	names := x.Names()
	if err := spec.validate(len(names)); err != nil {
		return nil, err
	}
	if x.Nrow() == 0 {
		return nil, ErrEmptyFit
	}
	policy := spec.HandleUnknown
	if policy == "" {
		policy = UnknownIgnore
	}

	f := &Fitted{
		SchemaVersion: ArtifactSchema,
		Kind:          ArtifactKind,
		FittedRows:    x.Nrow(),
		InputColumns:  slices.Clone(names),
	}
	used := map[int]bool{}
	for _, i := range spec.Numeric {
		vals, missing, err := dataset.Floats(x, names[i])
		if err != nil {
			return nil, err
		}
		if j := slices.Index(missing, true); j >= 0 {
			return nil, fmt.Errorf("column %q row %d: %w (missing value)", names[i], j, dataset.ErrNotNumeric)
		}
		mean, scale, err := stats.MeanScale(vals)
		if err != nil {
			return nil, err
		}
		f.Scalers = append(f.Scalers, ScalerParams{Column: names[i], Index: i, Mean: mean, Scale: scale})
		used[i] = true
	}
	if c := spec.Categorical; c >= 0 {
		levels := slices.Clone(x.Col(names[c]).Records())
		slices.Sort(levels)
		f.Encoder = &EncoderParams{
			Column:        names[c],
			Index:         c,
			Categories:    slices.Compact(levels),
			DropFirst:     spec.DropFirst,
			HandleUnknown: policy,
		}
		used[c] = true
	}
	for i, n := range names {
		if !used[i] {
			f.Passthrough = append(f.Passthrough, ColumnRef{Column: n, Index: i})
		}
	}
	f.Output = f.outputColumns()
	return f, nil
}

func (f *Fitted) outputColumns() []string {
	var out []string
	for _, s := range f.Scalers {
		out = append(out, scalePrefix+s.Column)
	}
	if e := f.Encoder; e != nil {
		for _, lvl := range e.indicatorLevels() {
			out = append(out, onehotPrefix+e.Column+"_"+lvl)
		}
	}
	for _, p := range f.Passthrough {
		out = append(out, remainPrefix+p.Column)
	}
	return out
}

func (f *Fitted) OutputColumns() []string { return slices.Clone(f.Output) }

func (e *EncoderParams) indicatorLevels() []string {
	if e.DropFirst && len(e.Categories) > 0 {
		return e.Categories[1:]
	}
	return e.Categories
}

// Transform applies the fitted parameters to x without refitting.
func (f *Fitted) Transform(x dataframe.DataFrame) (dataframe.DataFrame, error) {
	if names := x.Names(); !slices.Equal(names, f.InputColumns) {
		return dataframe.DataFrame{}, fmt.Errorf("%w: got %v, want %v", ErrSchemaMismatch, names, f.InputColumns)
	}
	n := x.Nrow()
	cols := make([]series.Series, 0, len(f.Output))

	for _, s := range f.Scalers {
		vals, missing, err := dataset.Floats(x, s.Column)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		out := make([]string, n)
		for i, v := range vals {
			if missing[i] {
				return dataframe.DataFrame{}, fmt.Errorf("column %q row %d: %w (missing value)", s.Column, i, dataset.ErrNotNumeric)
			}
			out[i] = dataset.FormatFloat((v - s.Mean) / s.Scale)
		}
		cols = append(cols, dataset.StringColumn(scalePrefix+s.Column, out))
	}

	if e := f.Encoder; e != nil {
		ind, err := e.encode(x.Col(e.Column).Records())
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		for j, lvl := range e.indicatorLevels() {
			cols = append(cols, dataset.StringColumn(onehotPrefix+e.Column+"_"+lvl, ind[j]))
		}
	}

	for _, p := range f.Passthrough {
		cols = append(cols, dataset.StringColumn(remainPrefix+p.Column, x.Col(p.Column).Records()))
	}
	if len(cols) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: nothing to output", ErrSchemaMismatch)
	}
	df := dataframe.New(cols...)
	return df, df.Err
}

// encode returns one "0"/"1" column per indicator level.
func (e *EncoderParams) encode(cells []string) ([][]string, error) {
	levels := e.indicatorLevels()
	pos := make(map[string]int, len(e.Categories))
	for j, lvl := range levels {
		pos[lvl] = j
	}
	out := make([][]string, len(levels))
	for j := range out {
		out[j] = make([]string, len(cells))
		for i := range out[j] {
			out[j][i] = "0"
		}
	}
	for i, c := range cells {
		if j, ok := pos[c]; ok {
			out[j][i] = "1"
			continue
		}
		if _, known := slices.BinarySearch(e.Categories, c); known {
			continue // the dropped first level
		}
		if e.HandleUnknown == UnknownError {
			return nil, fmt.Errorf("%w: column %q row %d value %q", ErrUnknownLevel, e.Column, i, c)
		}
	}
	return out, nil
}

// Package dataset holds the train/test frames exchanged between stages.
//
// Frames are gota DataFrames with every column typed as string, so cells a
// stage does not touch are written back exactly as they were read. Numeric
// columns are parsed on demand with Floats.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	TrainFile = "train.csv"
	TestFile  = "test.csv"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrNotNumeric    = errors.New("non-numeric value")
)

// Split is the pair of datasets that crosses every stage boundary.
type Split struct {
	Train dataframe.DataFrame
	Test  dataframe.DataFrame
}

// Shape is rows x columns, logged after every load and transform.
func Shape(df dataframe.DataFrame) [2]int {
	r, c := df.Dims()
	return [2]int{r, c}
}

// Read parses a comma-separated file with a header row.
func Read(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return df, df.Err
	}
	return df, nil
}

// ReadFile reads one CSV file from disk.
func ReadFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()
	df, err := Read(f)
	if err != nil {
		return df, fmt.Errorf("parse %s: %w", path, err)
	}
	return df, nil
}

// Load reads train.csv and test.csv from dir.
func Load(dir string) (Split, error) {
	train, err := ReadFile(filepath.Join(dir, TrainFile))
	if err != nil {
		return Split{}, err
	}
	test, err := ReadFile(filepath.Join(dir, TestFile))
	if err != nil {
		return Split{}, err
	}
	return Split{Train: train, Test: test}, nil
}

// Write renders df as CSV with a header row.
func Write(w io.Writer, df dataframe.DataFrame) error {
	return df.WriteCSV(w, dataframe.WriteHeader(true))
}

// WriteFile writes df to path atomically: readers see either the previous
// file or the complete new one.
func WriteFile(path string, df dataframe.DataFrame) error {
	return AtomicWrite(path, func(w io.Writer) error { return Write(w, df) })
}

// AtomicWrite streams fill into a temp file next to path, then renames it
// over path. Parent directories are created as needed.
func AtomicWrite(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// RequireColumns returns ErrMissingColumn naming the first absent column.
func RequireColumns(df dataframe.DataFrame, cols ...string) error {
	names := df.Names()
	for _, c := range cols {
		if !slices.Contains(names, c) {
			return fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
	}
	return nil
}

// IsMissing reports whether a cell counts as a missing value.
func IsMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "NaN", "nan", "<nil>":
		return true
	}
	return false
}

// ParseFloat parses one numeric cell.
func ParseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w %q", ErrNotNumeric, s)
	}
	return v, nil
}

// Floats parses column col. missing[i] is true for missing cells, whose
// value is left at 0. Any other non-numeric cell is an error.
func Floats(df dataframe.DataFrame, col string) (vals []float64, missing []bool, err error) {
	if err := RequireColumns(df, col); err != nil {
		return nil, nil, err
	}
	recs := df.Col(col).Records()
	vals = make([]float64, len(recs))
	missing = make([]bool, len(recs))
	for i, s := range recs {
		if IsMissing(s) {
			missing[i] = true
			continue
		}
		v, err := ParseFloat(s)
		if err != nil {
			return nil, nil, fmt.Errorf("column %q row %d: %w", col, i, err)
		}
		vals[i] = v
	}
	return vals, missing, nil
}

// FormatFloat renders a computed value the way it is written to CSV.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReplaceColumn returns df with column col set to vals, keeping its position.
func ReplaceColumn(df dataframe.DataFrame, col string, vals []string) dataframe.DataFrame {
	return df.Mutate(series.New(vals, series.String, col))
}

// StringColumn builds a string series, used when assembling output frames.
func StringColumn(name string, vals []string) series.Series {
	return series.New(vals, series.String, name)
}

// Package outlier clips extreme values of one numeric column group by group.
//
// Rows are partitioned by a composite key, quartile fences are computed per
// group, and values beyond a fence are replaced by the nearer quartile (not
// by the fence itself). Only the training set is touched; the test set is
// passed through so no test information leaks into the cleaning rule.
package outlier

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"churnprep/internal/dataset"
	"churnprep/internal/stats"
)

// GroupKey identifies one partition; parts follow Config.GroupBy order.
type GroupKey []string

func (k GroupKey) String() string { return strings.Join(k, "/") }

func (k GroupKey) id() string { return strings.Join(k, "\x00") }

type Config struct {
	GroupBy       []string
	Column        string
	Whisker       float64 // fence multiplier on the IQR
	PreserveOrder bool    // false: concatenate groups in sorted key order
}

// GroupReport describes what happened to one group.
type GroupReport struct {
	Key         GroupKey
	Rows        int
	Fences      stats.Fences
	ClippedLow  int
	ClippedHigh int
	Skipped     bool // every value missing
}

type Report struct {
	Groups      []GroupReport
	ClippedLow  int
	ClippedHigh int
}

// GroupError carries the key of the group that failed.
type GroupError struct {
	Key GroupKey
	Err error
}

func (e *GroupError) Error() string { return fmt.Sprintf("group %s: %v", e.Key, e.Err) }
func (e *GroupError) Unwrap() error { return e.Err }

var ErrConfig = errors.New("outlier: invalid config")

type Normalizer struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) (*Normalizer, error) {
	if len(cfg.GroupBy) == 0 {
		return nil, fmt.Errorf("%w: no group columns", ErrConfig)
	}
	if cfg.Column == "" {
		return nil, fmt.Errorf("%w: no value column", ErrConfig)
	}
	if cfg.Whisker < 0 {
		return nil, fmt.Errorf("%w: negative whisker %v", ErrConfig, cfg.Whisker)
	}
	return &Normalizer{cfg: cfg, log: log}, nil
}

// Apply clips the training set and passes the test set through unchanged.
func (n *Normalizer) Apply(split dataset.Split) (dataset.Split, Report, error) {
	train, rep, err := n.Clip(split.Train)
	if err != nil {
		return dataset.Split{}, rep, err
	}
	return dataset.Split{Train: train, Test: split.Test}, rep, nil
}

// partition maps every group key to the row indices it owns, in row order.
// Keys are returned sorted so processing and concatenation are deterministic.
func (n *Normalizer) partition(df dataframe.DataFrame) ([]GroupKey, map[string][]int) {
	cols := make([][]string, len(n.cfg.GroupBy))
	for i, c := range n.cfg.GroupBy {
		cols[i] = df.Col(c).Records()
	}
	idx := map[string][]int{}
	keys := map[string]GroupKey{}
	for row := 0; row < df.Nrow(); row++ {
		k := make(GroupKey, len(cols))
		for i := range cols {
			k[i] = cols[i][row]
		}
		s := k.id()
		if _, ok := keys[s]; !ok {
			keys[s] = k
		}
		idx[s] = append(idx[s], row)
	}
	ordered := make([]GroupKey, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, k)
	}
	slices.SortFunc(ordered, func(a, b GroupKey) int { return slices.Compare(a, b) })
	return ordered, idx
}

// Clip applies the per-group rule to df and returns the rebuilt frame.
func (n *Normalizer) Clip(df dataframe.DataFrame) (dataframe.DataFrame, Report, error) {
	var rep Report
	cols := append(slices.Clone(n.cfg.GroupBy), n.cfg.Column)
	if err := dataset.RequireColumns(df, cols...); err != nil {
		return df, rep, err
	}
	keys, idx := n.partition(df)
	cells := df.Col(n.cfg.Column).Records()
	out := slices.Clone(cells)

	for _, key := range keys {
		rows := idx[key.id()]
		gr, err := n.clipGroup(key, rows, cells, out)
		if err != nil {
			n.log.Error("error while handling outliers for group", "group", key.String(), "err", err)
			return df, rep, &GroupError{Key: key, Err: err}
		}
		rep.Groups = append(rep.Groups, gr)
		rep.ClippedLow += gr.ClippedLow
		rep.ClippedHigh += gr.ClippedHigh
	}

	clipped := dataset.ReplaceColumn(df, n.cfg.Column, out)
	if clipped.Err != nil {
		return df, rep, clipped.Err
	}
	if n.cfg.PreserveOrder {
		return clipped, rep, nil
	}
	grouped, err := concatGroups(clipped, keys, idx)
	return grouped, rep, err
}

// clipGroup reads the group's cells from in and writes replacements to out.
// Cells that are not clipped keep their original text.
func (n *Normalizer) clipGroup(key GroupKey, rows []int, in, out []string) (GroupReport, error) {
	gr := GroupReport{Key: key, Rows: len(rows)}
	n.log.Debug("handling outliers for group", "group", key.String(), "rows", len(rows))

	vals := make([]float64, 0, len(rows))
	present := make([]int, 0, len(rows))
	for _, r := range rows {
		if dataset.IsMissing(in[r]) {
			continue
		}
		v, err := dataset.ParseFloat(in[r])
		if err != nil {
			return gr, fmt.Errorf("column %q row %d: %w", n.cfg.Column, r, err)
		}
		vals = append(vals, v)
		present = append(present, r)
	}
	if len(vals) == 0 {
		gr.Skipped = true
		return gr, nil
	}

	f, err := stats.IQRFences(vals, n.cfg.Whisker)
	if err != nil {
		return gr, err
	}
	gr.Fences = f
	for i, r := range present {
		v, clipped := f.Clip(vals[i])
		if !clipped {
			continue
		}
		if vals[i] < f.Lower {
			gr.ClippedLow++
		} else {
			gr.ClippedHigh++
		}
		out[r] = dataset.FormatFloat(v)
	}
	return gr, nil
}

// concatGroups rebuilds df as the concatenation of its groups in key order.
func concatGroups(df dataframe.DataFrame, keys []GroupKey, idx map[string][]int) (dataframe.DataFrame, error) {
	order := make([]int, 0, df.Nrow())
	for _, k := range keys {
		order = append(order, idx[k.id()]...)
	}
	if len(order) == 0 {
		return df, nil
	}
	out := df.Subset(order)
	return out, out.Err
}

package stats

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/stat"
)

var ErrEmpty = errors.New("stats: empty sample")

// Quantile returns the p-th quantile (0 <= p <= 1) using linear
// interpolation between the closest order statistics: rank p*(n-1).
func Quantile(x []float64, p float64) (float64, error) {
	n := len(x)
	if n == 0 {
		return 0, ErrEmpty
	}
	cp := slices.Clone(x)
	slices.Sort(cp)
	return sortedQuantile(cp, p), nil
}

func sortedQuantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	rank := p * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Fences are the quartile bounds of a sample and the outlier thresholds
// derived from them.
type Fences struct {
	Q1, Q3       float64
	Lower, Upper float64
}

func (f Fences) IQR() float64 { return f.Q3 - f.Q1 }

// Outside reports whether v lies strictly beyond either fence.
func (f Fences) Outside(v float64) bool { return v < f.Lower || v > f.Upper }

// Clip maps values below Lower to Q1 and above Upper to Q3.
func (f Fences) Clip(v float64) (float64, bool) {
	switch {
	case v < f.Lower:
		return f.Q1, true
	case v > f.Upper:
		return f.Q3, true
	}
	return v, false
}

// IQRFences computes Q1/Q3 and fences at Q1 - w*IQR and Q3 + w*IQR.
func IQRFences(x []float64, w float64) (Fences, error) {
	if len(x) == 0 {
		return Fences{}, ErrEmpty
	}
	cp := slices.Clone(x)
	slices.Sort(cp)
	q1 := sortedQuantile(cp, 0.25)
	q3 := sortedQuantile(cp, 0.75)
	iqr := q3 - q1
	return Fences{Q1: q1, Q3: q3, Lower: q1 - w*iqr, Upper: q3 + w*iqr}, nil
}

// MeanScale returns the mean and the population standard deviation of x.
// A zero deviation yields scale 1 so constant columns map to 0.
func MeanScale(x []float64) (mean, scale float64, err error) {
	if len(x) == 0 {
		return 0, 0, ErrEmpty
	}
	mean, std := stat.PopMeanStdDev(x, nil)
	if std == 0 {
		std = 1
	}
	return mean, std, nil
}

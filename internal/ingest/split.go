// Package ingest splits the raw dataset into train and test partitions.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gota/gota/dataframe"

	"churnprep/internal/dataset"
)

var ErrSplit = errors.New("ingest: cannot split dataset")

// TestCount is ceil(testSize * n), the number of rows held out.
func TestCount(n int, testSize float64) int {
	return int(math.Ceil(testSize * float64(n)))
}

// TrainTestSplit shuffles rows with a seeded permutation and holds out
// TestCount rows. The same seed always yields the same partition.
func TrainTestSplit(df dataframe.DataFrame, testSize float64, seed uint64) (dataset.Split, error) {
	if testSize <= 0 || testSize >= 1 {
		return dataset.Split{}, fmt.Errorf("%w: test_size %v outside (0, 1)", ErrSplit, testSize)
	}
	n := df.Nrow()
	nTest := TestCount(n, testSize)
	if nTest == 0 || nTest >= n {
		return dataset.Split{}, fmt.Errorf("%w: %d rows with test_size %v leaves an empty partition", ErrSplit, n, testSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	test := df.Subset(perm[:nTest])
	if test.Err != nil {
		return dataset.Split{}, test.Err
	}
	train := df.Subset(perm[nTest:])
	if train.Err != nil {
		return dataset.Split{}, train.Err
	}
	return dataset.Split{Train: train, Test: test}, nil
}

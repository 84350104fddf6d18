package ingest

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnprep/internal/dataset"
)

func frame(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("EmpId,Salary_INR\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, 1000+i)
	}
	return b.String()
}

func TestTrainTestSplit_SizesAndDisjoint(t *testing.T) {
	df, err := dataset.Read(strings.NewReader(frame(t, 10)))
	require.NoError(t, err)

	split, err := TrainTestSplit(df, 0.25, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, split.Test.Nrow(), "ceil(0.25*10)")
	assert.Equal(t, 7, split.Train.Nrow())
	assert.Equal(t, df.Names(), split.Train.Names())

	ids := append(split.Train.Col("EmpId").Records(), split.Test.Col("EmpId").Records()...)
	slices.Sort(ids)
	assert.Equal(t, slices.Compact(slices.Clone(ids)), ids, "no row in both partitions")
	assert.Len(t, ids, 10)
}

func TestTrainTestSplit_SeedIsDeterministic(t *testing.T) {
	df, err := dataset.Read(strings.NewReader(frame(t, 50)))
	require.NoError(t, err)

	a, err := TrainTestSplit(df, 0.2, 4)
	require.NoError(t, err)
	b, err := TrainTestSplit(df, 0.2, 4)
	require.NoError(t, err)
	c, err := TrainTestSplit(df, 0.2, 5)
	require.NoError(t, err)

	assert.Equal(t, a.Test.Records(), b.Test.Records())
	assert.NotEqual(t, a.Test.Records(), c.Test.Records())
}

func TestTrainTestSplit_Rejects(t *testing.T) {
	df, err := dataset.Read(strings.NewReader(frame(t, 1)))
	require.NoError(t, err)

	_, err = TrainTestSplit(df, 0.5, 1)
	assert.ErrorIs(t, err, ErrSplit)
	_, err = TrainTestSplit(df, 1.5, 1)
	assert.ErrorIs(t, err, ErrSplit)
}

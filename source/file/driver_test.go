package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnprep/internal/spec"
	"churnprep/source"
)

func TestFileSource_ReadsCSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hr.csv")
	require.NoError(t, os.WriteFile(p, []byte("a,b\n1,2\n3,4\n"), 0o644))

	a, err := source.NewAdapter("file")
	require.NoError(t, err)
	require.NoError(t, a.Configure(spec.SourceSpec{Path: p}))
	df, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
}

func TestFileSource_Errors(t *testing.T) {
	a, err := source.NewAdapter("file")
	require.NoError(t, err)
	assert.Error(t, a.Configure(spec.SourceSpec{}))

	require.NoError(t, a.Configure(spec.SourceSpec{Path: filepath.Join(t.TempDir(), "missing.csv")}))
	_, err = a.Fetch(context.Background())
	assert.ErrorIs(t, err, source.ErrFetch)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewAdapter_Unknown(t *testing.T) {
	_, err := source.NewAdapter("ftp")
	assert.Error(t, err)
}

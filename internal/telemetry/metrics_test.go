package telemetry

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_TextfileFlush(t *testing.T) {
	m := New()
	m.RowsRead.WithLabelValues("outliers", "train").Add(80)
	m.ValuesClipped.WithLabelValues("high").Add(2)
	m.ObserveStage("outliers", 150*time.Millisecond, nil)
	m.ObserveStage("features", time.Second, errors.New("boom"))

	assert.Equal(t, 80.0, testutil.ToFloat64(m.RowsRead.WithLabelValues("outliers", "train")))

	path := filepath.Join(t.TempDir(), "churnprep.prom")
	require.NoError(t, m.Flush(path, "", "churnprep"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `churnprep_rows_read_total{dataset="train",stage="outliers"} 80`)
	assert.Contains(t, out, `churnprep_outlier_values_clipped_total{bound="high"} 2`)
	assert.Contains(t, out, `churnprep_stage_duration_seconds_count{stage="features",status="error"} 1`)
}

func TestMetrics_Push(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	m.Groups.Add(3)
	require.NoError(t, m.Flush("", srv.URL, "churnprep"))
	assert.True(t, strings.HasSuffix(gotPath, "/metrics/job/churnprep"), "path %q", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestMetrics_FlushNoop(t *testing.T) {
	assert.NoError(t, New().Flush("", "", "churnprep"))
}

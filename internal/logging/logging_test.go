package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ErrorsReachFileDebugOnlyConsole(t *testing.T) {
	dir := t.TempDir()
	errFile := filepath.Join(dir, "error.txt")
	var console bytes.Buffer

	l, closer, err := New(Options{Level: "debug", ErrorFile: errFile, Console: &console})
	require.NoError(t, err)

	l = l.With("stage", "outliers")
	l.Debug("loading datasets", "path", "data/raw")
	l.Error("group failed", "group", "Sales/3")
	require.NoError(t, closer.Close())

	out := console.String()
	assert.Contains(t, out, "loading datasets")
	assert.Contains(t, out, "group failed")

	raw, err := os.ReadFile(errFile)
	require.NoError(t, err)
	file := string(raw)
	assert.Contains(t, file, "group failed")
	assert.Contains(t, file, "stage=outliers")
	assert.NotContains(t, file, "loading datasets")
}

func TestNew_UnwritableErrorFileDegradesToConsole(t *testing.T) {
	var console bytes.Buffer
	bad := filepath.Join(t.TempDir(), "missing", "dir", "error.txt")

	l, closer, err := New(Options{Level: "info", ErrorFile: bad, Console: &console})
	require.NoError(t, err)
	defer closer.Close()

	l.Error("still logged")
	out := console.String()
	assert.Contains(t, out, "error log disabled")
	assert.Contains(t, out, "still logged")
}

func TestNew_JSONConsole(t *testing.T) {
	var console bytes.Buffer
	l, closer, err := New(Options{Level: "warn", JSON: true, Console: &console})
	require.NoError(t, err)
	defer closer.Close()

	l.Info("hidden")
	l.Warn("shown", "rows", 3)
	out := strings.TrimSpace(console.String())
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"rows":3`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("CHURNPREP_LOG_LEVEL", "error")
	t.Setenv("CHURNPREP_LOG_JSON", "true")
	o := OptionsFromEnv(Options{Level: "debug", ErrorFile: "e.txt"})
	assert.Equal(t, "error", o.Level)
	assert.True(t, o.JSON)
	assert.Equal(t, "e.txt", o.ErrorFile)
}

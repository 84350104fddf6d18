package remote

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnprep/internal/spec"
	"churnprep/source"
)

const csvBody = "EmpId,Department,Salary_INR\n1,Sales,100\n2,HR,200\n"

func zipped(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestKaggle_DownloadsZippedFileWithAuth(t *testing.T) {
	t.Setenv("KAGGLE_USERNAME", "alice")
	t.Setenv("KAGGLE_KEY", "secret")

	payload := zipped(t, "Employee_HR.csv", csvBody)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, key, ok := r.BasicAuth()
		if !ok || user != "alice" || key != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/datasets/download/prishatank/employee-hr-dataset/Employee_HR.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	a, err := source.NewAdapter("kaggle")
	require.NoError(t, err)
	require.NoError(t, a.Configure(spec.SourceSpec{
		URL:     srv.URL,
		Dataset: "prishatank/employee-hr-dataset",
		File:    "Employee_HR.csv",
	}))

	df, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"EmpId", "Department", "Salary_INR"}, df.Names())
}

func TestHTTP_PlainCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	a, err := source.NewAdapter("http")
	require.NoError(t, err)
	require.NoError(t, a.Configure(spec.SourceSpec{URL: srv.URL + "/hr.csv"}))
	df, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200"}, df.Col("Salary_INR").Records())
}

func TestHTTP_StatusErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	a, err := source.NewAdapter("http")
	require.NoError(t, err)
	require.NoError(t, a.Configure(spec.SourceSpec{URL: srv.URL}))
	_, err = a.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrFetch)
	assert.Contains(t, err.Error(), "403")
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	a, err := source.NewAdapter("http")
	require.NoError(t, err)
	require.NoError(t, a.Configure(spec.SourceSpec{URL: srv.URL}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigure_RequiredFields(t *testing.T) {
	h, _ := source.NewAdapter("http")
	assert.Error(t, h.Configure(spec.SourceSpec{}))
	k, _ := source.NewAdapter("kaggle")
	assert.Error(t, k.Configure(spec.SourceSpec{Dataset: "a/b"}))
}

func TestUnzip_MissingMember(t *testing.T) {
	_, err := unzip(zipped(t, "other.csv", csvBody), "Employee_HR.csv")
	assert.Error(t, err)
	b, err := unzip(zipped(t, "nested/data.csv", csvBody), "")
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(b))
}

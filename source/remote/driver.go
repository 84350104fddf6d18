// Package remote downloads the raw dataset over HTTP, either from a plain
// CSV URL or from the Kaggle dataset download API.
package remote

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"churnprep/internal/dataset"
	"churnprep/internal/spec"
	"churnprep/source"
)

const kaggleAPI = "https://www.kaggle.com/api/v1"

// maxBody bounds a download so a misconfigured URL cannot exhaust memory.
const maxBody = 512 << 20

type driver struct {
	kaggle bool
	url    string
	file   string
	user   string
	key    string
	client *http.Client
}

func (d *driver) Configure(s spec.SourceSpec) error {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	d.client = &http.Client{Timeout: timeout}
	d.file = s.File

	if !d.kaggle {
		if s.URL == "" {
			return errors.New("http-source: url is required")
		}
		d.url = s.URL
		return nil
	}

	if s.Dataset == "" || s.File == "" {
		return errors.New("kaggle-source: dataset and file are required")
	}
	base := s.URL
	if base == "" {
		base = kaggleAPI
	}
	d.url = strings.TrimSuffix(base, "/") + "/datasets/download/" + s.Dataset + "/" + s.File
	d.user = os.Getenv("KAGGLE_USERNAME")
	d.key = os.Getenv("KAGGLE_KEY")
	return nil
}

func (d *driver) Fetch(ctx context.Context) (dataframe.DataFrame, error) {
	body, err := d.download(ctx)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %w", source.ErrFetch, err)
	}
	if isZip(body) {
		if body, err = unzip(body, d.file); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %w", source.ErrFetch, err)
		}
	}
	df, err := dataset.Read(bytes.NewReader(body))
	if err != nil {
		return df, fmt.Errorf("%w: parse %s: %w", source.ErrFetch, d.url, err)
	}
	return df, nil
}

func (d *driver) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, err
	}
	if d.user != "" && d.key != "" {
		req.SetBasicAuth(d.user, d.key)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("GET %s: %s: %s", d.url, resp.Status, strings.TrimSpace(string(snippet)))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBody {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", d.url, maxBody)
	}
	return body, nil
}

func isZip(b []byte) bool { return bytes.HasPrefix(b, []byte("PK\x03\x04")) }

// unzip returns the archive member named want, or the only CSV member when
// want is empty.
func unzip(b []byte, want string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	var pick *zip.File
	for _, f := range zr.File {
		name := path.Base(f.Name)
		if want != "" && name == want {
			pick = f
			break
		}
		if want == "" && strings.HasSuffix(strings.ToLower(name), ".csv") {
			if pick != nil {
				return nil, errors.New("archive holds several CSV files; set source.file")
			}
			pick = f
		}
	}
	if pick == nil {
		return nil, fmt.Errorf("archive has no member %q", want)
	}
	rc, err := pick.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxBody))
}

func init() {
	source.Register("http", func() source.Adapter { return &driver{} })
	source.Register("kaggle", func() source.Adapter { return &driver{kaggle: true} })
}

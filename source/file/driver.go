package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"churnprep/internal/dataset"
	"churnprep/internal/spec"
	"churnprep/source"
)

type driver struct {
	path string
}

func (d *driver) Configure(s spec.SourceSpec) error {
	if s.Path == "" {
		return errors.New("file-source: path is required")
	}
	d.path = s.Path
	return nil
}

func (d *driver) Fetch(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}
	df, err := dataset.ReadFile(d.path)
	if err != nil {
		return df, fmt.Errorf("%w: %w", source.ErrFetch, err)
	}
	return df, nil
}

func init() {
	source.Register("file", func() source.Adapter { return &driver{} })
}

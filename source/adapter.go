package source

import (
	"context"
	"errors"

	"github.com/go-gota/gota/dataframe"

	"churnprep/internal/spec"
)

// ErrFetch wraps every failure to obtain the raw dataset.
var ErrFetch = errors.New("source: fetch failed")

// Adapter produces the raw, unsplit dataset.
type Adapter interface {
	Configure(spec.SourceSpec) error
	Fetch(context.Context) (dataframe.DataFrame, error)
}

package transform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"churnprep/internal/dataset"
)

const (
	ArtifactSchema = "v1"
	ArtifactKind   = "column_transformer"
)

var ErrArtifact = errors.New("transform: invalid artifact")

type ScalerParams struct {
	Column string  `yaml:"column"`
	Index  int     `yaml:"index"`
	Mean   float64 `yaml:"mean"`
	Scale  float64 `yaml:"scale"`
}

type EncoderParams struct {
	Column        string        `yaml:"column"`
	Index         int           `yaml:"index"`
	Categories    []string      `yaml:"categories"` // sorted
	DropFirst     bool          `yaml:"drop_first"`
	HandleUnknown UnknownPolicy `yaml:"handle_unknown"`
}

type ColumnRef struct {
	Column string `yaml:"column"`
	Index  int    `yaml:"index"`
}

// Fitted is a column transform learned from training features. It is also
// the on-disk artifact: a plain YAML document that any consumer can read
// to repeat the transform on new rows with the same input schema.
type Fitted struct {
	SchemaVersion string         `yaml:"schema_version"`
	Kind          string         `yaml:"kind"`
	FittedRows    int            `yaml:"fitted_rows"`
	InputColumns  []string       `yaml:"input_columns"`
	Scalers       []ScalerParams `yaml:"scalers"`
	Encoder       *EncoderParams `yaml:"encoder,omitempty"`
	Passthrough   []ColumnRef    `yaml:"passthrough"`
	Output        []string       `yaml:"output_columns"`
}

// Encode writes the artifact document.
func (f *Fitted) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes the artifact atomically to path.
func (f *Fitted) Save(path string) error {
	return dataset.AtomicWrite(path, f.Encode)
}

// DecodeArtifact parses and validates an artifact document.
func DecodeArtifact(r io.Reader) (*Fitted, error) {
	var f Fitted
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifact, err)
	}
	if f.SchemaVersion != ArtifactSchema {
		return nil, fmt.Errorf("%w: schema_version %q not supported (want %q)", ErrArtifact, f.SchemaVersion, ArtifactSchema)
	}
	if f.Kind != ArtifactKind {
		return nil, fmt.Errorf("%w: kind %q, want %q", ErrArtifact, f.Kind, ArtifactKind)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadArtifact reads an artifact written by Save.
func LoadArtifact(path string) (*Fitted, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return DecodeArtifact(fh)
}

// check rejects documents whose parts disagree with each other.
func (f *Fitted) check() error {
	ref := func(c string, i int) error {
		if i < 0 || i >= len(f.InputColumns) || f.InputColumns[i] != c {
			return fmt.Errorf("%w: column %q is not at input position %d", ErrArtifact, c, i)
		}
		return nil
	}
	for _, s := range f.Scalers {
		if err := ref(s.Column, s.Index); err != nil {
			return err
		}
		if s.Scale == 0 {
			return fmt.Errorf("%w: zero scale for %q", ErrArtifact, s.Column)
		}
	}
	if e := f.Encoder; e != nil {
		if err := ref(e.Column, e.Index); err != nil {
			return err
		}
		if !slices.IsSorted(e.Categories) {
			return fmt.Errorf("%w: categories of %q are not sorted", ErrArtifact, e.Column)
		}
	}
	for _, p := range f.Passthrough {
		if err := ref(p.Column, p.Index); err != nil {
			return err
		}
	}
	if !slices.Equal(f.Output, f.outputColumns()) {
		return fmt.Errorf("%w: output_columns disagree with the fitted columns", ErrArtifact)
	}
	return nil
}

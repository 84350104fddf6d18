package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"churnprep/internal/spec"
)

const SupportedSchema = "v1"

// EnvPrefix selects environment overrides, e.g.
// CHURNPREP__DATA_INGESTION__TEST_SIZE=0.3.
const EnvPrefix = "CHURNPREP__"

// ErrInvalid marks a parameter that is missing or out of range.
var ErrInvalid = errors.New("invalid parameter")

// LoadParams merges params.yaml (if present) with env-vars, applies defaults
// and validates the result.
func LoadParams(path string) (spec.Params, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return spec.Params{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return spec.Params{}, fmt.Errorf("%w: params schema_version %q not supported (want %q)", ErrInvalid, sv, SupportedSchema)
	}

	_ = k.Load(env.Provider(EnvPrefix, ".", envKey), nil)

	var p spec.Params
	if err := k.Unmarshal("", &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !k.Exists("data_ingestion.test_size") {
		return p, fmt.Errorf("%w: data_ingestion.test_size is required", ErrInvalid)
	}
	applyDefaults(&p)
	if err := Validate(p); err != nil {
		return p, err
	}
	return p, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(p *spec.Params) {
	if p.SchemaVersion == "" {
		p.SchemaVersion = SupportedSchema
	}
	if p.DataIngestion.RandomState == 0 {
		p.DataIngestion.RandomState = 4
	}
	src := &p.DataIngestion.Source
	if src.Kind == "" {
		src.Kind = "kaggle"
	}
	if src.Dataset == "" {
		src.Dataset = "prishatank/employee-hr-dataset"
	}
	if src.File == "" {
		src.File = "Employee_HR.csv"
	}
	if src.Timeout == 0 {
		src.Timeout = 2 * time.Minute
	}

	if p.Paths.Raw == "" {
		p.Paths.Raw = "data/raw"
	}
	if p.Paths.Interim == "" {
		p.Paths.Interim = "data/interim"
	}
	if p.Paths.Processed == "" {
		p.Paths.Processed = "data/processed"
	}
	if p.Paths.Artifact == "" {
		p.Paths.Artifact = "models/column_transformer.yaml"
	}

	if len(p.Outliers.GroupBy) == 0 {
		p.Outliers.GroupBy = []string{"Department", "time_spent_company"}
	}
	if p.Outliers.Column == "" {
		p.Outliers.Column = "Salary_INR"
	}
	if p.Outliers.Whisker == 0 {
		p.Outliers.Whisker = 1.5
	}

	f := &p.Features
	if f.IDColumn == "" {
		f.IDColumn = "EmpId"
	}
	if f.TargetColumn == "" {
		f.TargetColumn = "Churn"
	}
	if len(f.Numeric) == 0 {
		f.Numeric = []int{0, 1, 2, 3, 4, 5, 6, 8}
	}
	if f.Categorical == nil {
		c := 7
		f.Categorical = &c
	}
	if f.HandleUnknown == "" {
		f.HandleUnknown = "ignore"
	}

	if p.Logging.Level == "" {
		p.Logging.Level = "debug"
	}
	if p.Logging.ErrorFile == "" {
		p.Logging.ErrorFile = "error.txt"
	}
	if p.Metrics.Job == "" {
		p.Metrics.Job = "churnprep"
	}
}

// Validate checks ranges and cross-field constraints.
func Validate(p spec.Params) error {
	ts := p.DataIngestion.TestSize
	if ts <= 0 || ts >= 1 {
		return fmt.Errorf("%w: data_ingestion.test_size must be in (0, 1), got %v", ErrInvalid, ts)
	}
	switch p.DataIngestion.Source.Kind {
	case "kaggle", "http", "file":
	default:
		return fmt.Errorf("%w: unsupported source kind %q", ErrInvalid, p.DataIngestion.Source.Kind)
	}
	if p.Outliers.Whisker < 0 {
		return fmt.Errorf("%w: outliers.whisker must be >= 0, got %v", ErrInvalid, p.Outliers.Whisker)
	}
	seen := map[int]bool{}
	for _, i := range p.Features.Numeric {
		if i < 0 {
			return fmt.Errorf("%w: features.numeric position %d is negative", ErrInvalid, i)
		}
		if seen[i] {
			return fmt.Errorf("%w: features.numeric position %d listed twice", ErrInvalid, i)
		}
		seen[i] = true
	}
	if c := p.Features.Categorical; c != nil {
		if *c < 0 {
			return fmt.Errorf("%w: features.categorical position %d is negative", ErrInvalid, *c)
		}
		if seen[*c] {
			return fmt.Errorf("%w: position %d is both numeric and categorical", ErrInvalid, *c)
		}
	}
	switch p.Features.HandleUnknown {
	case "ignore", "error":
	default:
		return fmt.Errorf("%w: features.handle_unknown must be ignore or error, got %q", ErrInvalid, p.Features.HandleUnknown)
	}
	if p.Features.IDColumn == p.Features.TargetColumn {
		return fmt.Errorf("%w: id_column and target_column are both %q", ErrInvalid, p.Features.IDColumn)
	}
	return nil
}

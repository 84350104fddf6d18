package spec

import "time"

type SourceSpec struct {
	Kind    string        `koanf:"kind"`    // "kaggle", "http", "file"
	Dataset string        `koanf:"dataset"` // e.g. "prishatank/employee-hr-dataset"
	File    string        `koanf:"file"`    // e.g. "Employee_HR.csv"
	URL     string        `koanf:"url"`
	Path    string        `koanf:"path"`
	Timeout time.Duration `koanf:"timeout"`
}

type IngestionSpec struct {
	TestSize    float64    `koanf:"test_size"`
	RandomState uint64     `koanf:"random_state"`
	Source      SourceSpec `koanf:"source"`
}

type PathsSpec struct {
	Raw       string `koanf:"raw"`
	Interim   string `koanf:"interim"`
	Processed string `koanf:"processed"`
	Artifact  string `koanf:"artifact"`
}

type OutlierSpec struct {
	GroupBy       []string `koanf:"group_by"`
	Column        string   `koanf:"column"`
	Whisker       float64  `koanf:"whisker"`
	PreserveOrder *bool    `koanf:"preserve_order"` // nil = default (true)
}

type FeatureSpec struct {
	IDColumn      string `koanf:"id_column"`
	TargetColumn  string `koanf:"target_column"`
	Numeric       []int  `koanf:"numeric"`     // feature positions to standardize
	Categorical   *int   `koanf:"categorical"` // feature position to one-hot encode
	DropFirst     *bool  `koanf:"drop_first"`
	HandleUnknown string `koanf:"handle_unknown"` // "ignore" | "error"
}

type LoggingSpec struct {
	Level     string `koanf:"level"`
	JSON      bool   `koanf:"json"`
	ErrorFile string `koanf:"error_file"`
}

type MetricsSpec struct {
	Textfile    string `koanf:"textfile"`
	Pushgateway string `koanf:"pushgateway"`
	Job         string `koanf:"job"`
}

// Params is the parsed params.yaml document.
type Params struct {
	SchemaVersion string        `koanf:"schema_version"`
	DataIngestion IngestionSpec `koanf:"data_ingestion"`
	Paths         PathsSpec     `koanf:"paths"`
	Outliers      OutlierSpec   `koanf:"outliers"`
	Features      FeatureSpec   `koanf:"features"`
	Logging       LoggingSpec   `koanf:"logging"`
	Metrics       MetricsSpec   `koanf:"metrics"`
}

func (o OutlierSpec) KeepOrder() bool {
	return o.PreserveOrder == nil || *o.PreserveOrder
}

func (f FeatureSpec) DropFirstLevel() bool {
	return f.DropFirst == nil || *f.DropFirst
}

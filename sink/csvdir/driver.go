// Package csvdir writes train.csv and test.csv into a directory.
package csvdir

import (
	"fmt"
	"path/filepath"

	"churnprep/internal/dataset"
	"churnprep/sink"
)

type Config struct {
	Dir string
}

type driver struct {
	cfg Config
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("csvdir-sink: expected Config, got %T", raw)
	}
	if c.Dir == "" {
		return fmt.Errorf("csvdir-sink: dir is required")
	}
	d.cfg = c
	return nil
}

// Push replaces both files. Each file is swapped in atomically, train first.
func (d *driver) Push(s dataset.Split) error {
	if err := dataset.WriteFile(filepath.Join(d.cfg.Dir, dataset.TrainFile), s.Train); err != nil {
		return fmt.Errorf("write %s: %w", dataset.TrainFile, err)
	}
	if err := dataset.WriteFile(filepath.Join(d.cfg.Dir, dataset.TestFile), s.Test); err != nil {
		return fmt.Errorf("write %s: %w", dataset.TestFile, err)
	}
	return nil
}

func (d *driver) Close() error { return nil }

func init() {
	sink.Register("csvdir", func() sink.Adapter { return &driver{} })
}

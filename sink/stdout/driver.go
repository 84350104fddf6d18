// Package stdout previews datasets instead of writing them, for --dry-run.
package stdout

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"churnprep/internal/dataset"
	"churnprep/sink"
)

/* ────────── config ────────── */
type Config struct {
	Rows int       // rows printed per dataset; 0 = header only
	Out  io.Writer // defaults to os.Stdout
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(s dataset.Split) error {
	if err := d.print("train", s.Train); err != nil {
		return err
	}
	return d.print("test", s.Test)
}

func (d *driver) print(name string, df dataframe.DataFrame) error {
	shape := dataset.Shape(df)
	if _, err := fmt.Fprintf(d.cfg.Out, "[sink] %s %dx%d\n", name, shape[0], shape[1]); err != nil {
		return err
	}
	n := min(d.cfg.Rows, df.Nrow())
	if n == 0 {
		_, err := fmt.Fprintln(d.cfg.Out, strings.Join(df.Names(), ","))
		return err
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return dataset.Write(d.cfg.Out, df.Subset(idx))
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}

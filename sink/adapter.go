package sink

import (
	"fmt"
	"maps"
	"slices"

	"churnprep/internal/dataset"
)

// Adapter is the common behaviour every dataset sink exposes.
type Adapter interface {
	Configure(any) error            // driver-specific config struct
	Push(split dataset.Split) error // persist one train/test pair
	Close() error                   // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q (have %v)", name, Names())
}

// Names lists the registered sinks, sorted.
func Names() []string { return slices.Sorted(maps.Keys(reg)) }

package pipeline

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every stage error wraps exactly one of these so the CLI
// can pick an exit code with errors.Is.
var (
	ErrIO     = errors.New("io error")
	ErrSchema = errors.New("schema error")
	ErrConfig = errors.New("configuration error")
	ErrSource = errors.New("external source error")
)

func wrap(kind error, op string, err error) error {
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"churnprep/internal/config"
	"churnprep/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "churnprep:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps configuration problems to 2 and every other failure to 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrConfig), errors.Is(err, config.ErrInvalid), errors.Is(err, errUsage):
		return 2
	default:
		return 1
	}
}

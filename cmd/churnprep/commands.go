package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"churnprep/internal/engine"
	"churnprep/internal/pipeline"
)

var errUsage = errors.New("usage error")

// newRootCmd builds the command tree. Flags live on the returned command so
// tests can build fresh trees.
func newRootCmd() *cobra.Command {
	var cfg engine.Config

	root := &cobra.Command{
		Use:   "churnprep",
		Short: "Prepare the employee churn dataset for model training",
		Long: `churnprep ingests the HR dataset, clips salary outliers per
department and tenure, and fits the feature transform on the training split.
Each stage reads the previous stage's files, so stages can be rerun alone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.ParamsPath, "config", "c", "params.yaml", "path to params.yaml")
	pf.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error (overrides params)")
	pf.BoolVar(&cfg.LogJSON, "log-json", false, "emit JSON log records")
	pf.StringVar(&cfg.ErrorLog, "error-log", "", "file receiving error records (overrides params)")
	pf.BoolVar(&cfg.DryRun, "dry-run", false, "print stage outputs instead of writing them")

	stageCmd := func(name, short string) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: short,
			Args:  usage(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				return execute(cmd, cfg, name)
			},
		}
	}
	root.AddCommand(
		stageCmd("ingest", "Fetch the raw dataset and write the train/test split"),
		stageCmd("outliers", "Clip salary outliers in the training split"),
		stageCmd("features", "Fit the column transform and write processed datasets"),
		&cobra.Command{
			Use:       "run [stage...]",
			Short:     "Run stages in order (all of them by default)",
			ValidArgs: pipeline.Order,
			Args:      usage(cobra.OnlyValidArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return execute(cmd, cfg, args...)
			},
		},
	)
	return root
}

func execute(cmd *cobra.Command, cfg engine.Config, stages ...string) error {
	cfg.Console = cmd.ErrOrStderr()
	cfg.Out = cmd.OutOrStdout()

	e, err := engine.Bootstrap(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer e.Close()
	return e.Run(cmd.Context(), stages...)
}

// usage tags argument errors so they exit like flag errors.
func usage(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return nil
	}
}

package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tagtrain/internal/history"
	"tagtrain/internal/layout"
	"tagtrain/internal/logging"
	"tagtrain/internal/pipeline"
	"tagtrain/internal/trainer"
)

// trainerExecutor is swapped in tests to avoid launching python.
var trainerExecutor = trainer.NewCommandExecutor

func newTrainCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "train [tagger/config ...]",
		Short: "Train the listed configs, or every config under the configs folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			targets, err := layout.Targets(args, cfg.Paths.ConfigsDir)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				fmt.Fprintf(out, "No training targets found under %s\n", cfg.Paths.ConfigsDir)
				return nil
			}

			runID := uuid.NewString()
			logger, err := ctx.logger(runID)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			opts := []pipeline.Option{
				pipeline.WithInvoker(trainer.New(cfg, logger, trainer.WithExecutor(trainerExecutor()))),
			}
			if cfg.History.Enabled {
				store, err := history.Open(cfg)
				if err != nil {
					logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "delete or fix "+cfg.HistoryPath()),
						logging.String(logging.FieldImpact, "this batch is not recorded in tagtrain history"),
					)
				} else {
					defer store.Close()
					opts = append(opts, pipeline.WithLedger(store))
				}
			}

			runCtx := logging.WithRunID(cmd.Context(), runID)
			summary, runErr := pipeline.New(cfg, logger, opts...).Run(runCtx, targets)
			if len(summary.Runs) > 0 {
				fmt.Fprintln(out, renderRunSummary(summary, shouldColorize(out)))
			}
			if runErr != nil {
				return runErr
			}

			failed := summary.Failed()
			if strict && len(failed) > 0 {
				return &exitCodeError{
					code: 1,
					msg:  fmt.Sprintf("%d of %d trainer runs failed", len(failed), len(summary.Runs)),
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any trainer run fails")
	return cmd
}

func renderRunSummary(summary pipeline.Summary, colorize bool) string {
	rows := make([][]string, 0, len(summary.Runs))
	for _, run := range summary.Runs {
		status := "ok"
		switch {
		case run.TimedOut:
			status = "timed out"
		case run.ExitCode != 0:
			status = "failed"
		}
		rows = append(rows, []string{
			run.Target.String(),
			status,
			strconv.Itoa(run.ExitCode),
			formatDuration(run.Finished.Sub(run.Started)),
			logName(run.LogPath),
		})
	}
	return renderTable(runSummaryColumns, rows, colorize)
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tagtrain/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded training runs, newest first",
		Long: `List recorded training runs, newest first. With a run id (or a unique
prefix of one) show that run in detail.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled (history.enabled = false)")
				return nil
			}
			if _, err := os.Stat(cfg.HistoryPath()); os.IsNotExist(err) {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, renderRunDetail(run))
				return nil
			}

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(runs, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func renderHistoryTable(runs []history.Run, colorize bool) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		exit := "-"
		if run.ExitCode != nil {
			exit = strconv.Itoa(*run.ExitCode)
		}
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			run.Target(),
			string(run.Status),
			exit,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatDuration(run.Duration()),
			logName(run.LogPath),
		})
	}
	return renderTable(historyColumns, rows, colorize)
}

func renderRunDetail(run history.Run) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%-10s %s\n", label+":", value)
	}
	field("ID", run.ID)
	field("Target", run.Target())
	field("Dataset", valueOrDash(run.Dataset))
	field("Status", string(run.Status))
	exit := "-"
	if run.ExitCode != nil {
		exit = strconv.Itoa(*run.ExitCode)
	}
	field("Exit", exit)
	field("Started", run.StartedAt.Local().Format(time.RFC3339))
	finished := "-"
	if run.FinishedAt != nil {
		finished = run.FinishedAt.Local().Format(time.RFC3339)
	}
	field("Finished", finished)
	field("Duration", formatDuration(run.Duration()))
	field("Log", valueOrDash(run.LogPath))
	return b.String()
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

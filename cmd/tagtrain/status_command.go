package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tagtrain/internal/history"
	"tagtrain/internal/layout"
	"tagtrain/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dependency, directory, and run history status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configPath := ctx.configPath
			if _, statErr := os.Stat(configPath); statErr != nil {
				configPath += " (not found; defaults in use)"
			}
			lines = append(lines, renderStatusLine("Config", statusInfo, configPath, colorize))
			lines = append(lines, targetLine("Training targets", cfg.Paths.ConfigsDir, colorize))
			lines = append(lines, targetLine("Docker contexts", cfg.Paths.DockerDir, colorize))
			lines = append(lines, renderStatusLine("Prefab policy", statusInfo, cfg.Docker.PrefabPolicy, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cfg), colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			lines = append(lines, checkLines(preflight.RunAll(cfg), colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("History", colorize)...)
			lines = append(lines, historyLines(cmd, ctx, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func targetLine(label, root string, colorize bool) string {
	targets, err := layout.Discover(root)
	if err != nil {
		return renderStatusLine(label, statusWarn, fmt.Sprintf("%s (unreadable)", root), colorize)
	}
	return renderStatusLine(label, statusInfo, fmt.Sprintf("%d under %s", len(targets), root), colorize)
}

func historyLines(cmd *cobra.Command, ctx *commandContext, colorize bool) []string {
	cfg := ctx.config
	if !cfg.History.Enabled {
		return []string{renderStatusLine("Ledger", statusInfo, "Disabled", colorize)}
	}
	path := cfg.HistoryPath()
	if _, err := os.Stat(path); err != nil {
		return []string{renderStatusLine("Ledger", statusInfo, "No runs recorded", colorize)}
	}
	store, err := history.OpenPath(path)
	if err != nil {
		return []string{renderStatusLine("Ledger", statusError, err.Error(), colorize)}
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), 1)
	if err != nil {
		return []string{renderStatusLine("Ledger", statusError, err.Error(), colorize)}
	}
	lines := []string{renderStatusLine("Ledger", statusOK, path, colorize)}
	if len(runs) == 0 {
		return append(lines, renderStatusLine("Last run", statusInfo, "none", colorize))
	}
	last := runs[0]
	kind := statusOK
	switch last.Status {
	case history.StatusFailed:
		kind = statusError
	case history.StatusRunning:
		kind = statusWarn
	}
	detail := fmt.Sprintf("%s %s at %s", last.Target(), last.Status, last.StartedAt.Local().Format("2006-01-02 15:04"))
	lines = append(lines, renderStatusLine("Last run", kind, detail, colorize))
	return append(lines, failingTargetsLine(cmd, store, colorize))
}

// failingTargetsLine reports targets whose most recent run failed.
func failingTargetsLine(cmd *cobra.Command, store *history.Store, colorize bool) string {
	latest, err := store.Latest(cmd.Context())
	if err != nil {
		return renderStatusLine("Failing targets", statusError, err.Error(), colorize)
	}
	var failing []string
	for target, run := range latest {
		if run.Status == history.StatusFailed {
			failing = append(failing, target)
		}
	}
	if len(failing) == 0 {
		return renderStatusLine("Failing targets", statusOK, "none", colorize)
	}
	sort.Strings(failing)
	return renderStatusLine("Failing targets", statusWarn, strings.Join(failing, ", "), colorize)
}

// Package logging assembles structured slog loggers and formatting helpers used
// across tagtrain.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can tag log lines with
// the current run ID and tagger/config target. Warnings that replace silent
// fallbacks (missing dataset splits, unknown provenance, non-zero trainer
// exits) go through WarnWithContext so they always carry an event type, a
// hint, and an impact.
package logging

package logging

import (
	"context"
	"log/slog"
)

// runIDHandler stamps run_id on records that do not already carry one,
// either through WithAttrs or on the context passed to the log call.
type runIDHandler struct {
	base  slog.Handler
	runID string
}

func newRunIDHandler(base slog.Handler, runID string) slog.Handler {
	return &runIDHandler{base: base, runID: runID}
}

func (h *runIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *runIDHandler) Handle(ctx context.Context, record slog.Record) error {
	id, ok := RunIDFromContext(ctx)
	if !ok {
		id = h.runID
	}
	record.AddAttrs(slog.String(FieldRunID, id))
	return h.base.Handle(ctx, record)
}

func (h *runIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if HasAttrKey(attrs, FieldRunID) {
		return h.base.WithAttrs(attrs)
	}
	return &runIDHandler{base: h.base.WithAttrs(attrs), runID: h.runID}
}

func (h *runIDHandler) WithGroup(name string) slog.Handler {
	return &runIDHandler{base: h.base.WithGroup(name), runID: h.runID}
}

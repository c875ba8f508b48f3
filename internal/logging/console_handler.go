package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler writes one line per record:
//
//	2026-03-01 12:00:00 WARN trainer [pie/fast]: message key=value
//
// The component and target attributes become the line prefix; run_id is
// dropped because a terminal session only ever shows one batch.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Level
	addSource bool

	component string
	target    string
	group     string
	// attrs holds preformatted " key=value" pairs from WithAttrs.
	attrs []byte
}

func newConsoleHandler(w io.Writer, level slog.Level, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	component, target := h.component, h.target
	var pairs []byte
	record.Attrs(func(attr slog.Attr) bool {
		pairs = h.appendAttr(pairs, h.group, attr, &component, &target)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf := make([]byte, 0, 96+len(h.attrs)+len(pairs))
	buf = ts.Local().AppendFormat(buf, consoleTimeLayout)
	buf = append(buf, ' ')
	buf = append(buf, levelLabel(record.Level)...)
	buf = append(buf, ' ')
	switch {
	case component != "" && target != "":
		buf = append(buf, component+" ["+target+"]: "...)
	case component != "":
		buf = append(buf, component+": "...)
	case target != "":
		buf = append(buf, "["+target+"]: "...)
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf = append(buf, msg...)
	} else {
		buf = append(buf, "(no message)"...)
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			buf = append(buf, " ["+filepath.Base(src.File)+":"+strconv.Itoa(src.Line)+"]"...)
		}
	}
	buf = append(buf, h.attrs...)
	buf = append(buf, pairs...)
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clone(h.attrs)
	for _, attr := range attrs {
		clone.attrs = clone.appendAttr(clone.attrs, clone.group, attr, &clone.component, &clone.target)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

// appendAttr formats attr onto buf. Top-level component and target
// attributes are captured instead of printed.
func (h *consoleHandler) appendAttr(buf []byte, group string, attr slog.Attr, component, target *string) []byte {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return buf
	}
	if group == "" {
		switch attr.Key {
		case FieldComponent:
			*component = attr.Value.String()
			return buf
		case FieldTarget:
			*target = attr.Value.String()
			return buf
		case FieldRunID:
			return buf
		}
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, member := range attr.Value.Group() {
			buf = h.appendAttr(buf, joinKey(group, attr.Key), member, component, target)
		}
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, joinKey(group, attr.Key)...)
	buf = append(buf, '=')
	return append(buf, consoleValue(attr.Value)...)
}

func joinKey(group, key string) string {
	switch {
	case group == "":
		return key
	case key == "":
		return group
	default:
		return group + "." + key
	}
}

func consoleValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = v.String()
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/darling/internal/ui/output"
	"go.trai.ch/darling/internal/ui/style"
)

// levelMark is the icon and color a record of a given level is printed with.
type levelMark struct {
	icon  string
	color string
}

func markFor(level slog.Level) levelMark {
	switch {
	case level >= slog.LevelError:
		return levelMark{icon: style.Cross, color: string(style.Red)}
	case level >= slog.LevelWarn:
		return levelMark{icon: style.Warning, color: string(style.Yellow)}
	case level >= slog.LevelInfo:
		return levelMark{color: string(style.White)}
	default:
		return levelMark{icon: style.Dot, color: string(style.Slate)}
	}
}

// PrettyHandler renders records as one colored line each, for people reading a terminal.
// Attributes follow the message in a muted color as key=value pairs.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	prefix string
	attrs  []string
}

// NewPrettyHandler returns a PrettyHandler writing to w, or to stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	h := &PrettyHandler{out: output.New(w), level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether level passes the handler's threshold.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	mark := markFor(r.Level)

	var line strings.Builder
	if mark.icon != "" {
		line.WriteString(mark.icon + " ")
	}
	line.WriteString(r.Message)
	text := h.out.String(line.String()).Foreground(termenv.RGBColor(mark.color)).String()

	pairs := append([]string(nil), h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		pairs = append(pairs, h.pair(attr))
		return true
	})
	if len(pairs) > 0 {
		text += " " + h.out.String(strings.Join(pairs, " ")).Foreground(termenv.RGBColor(string(style.Slate))).String()
	}

	_, err := io.WriteString(h.out, text+"\n")
	return err
}

// WithAttrs returns a handler that prints attrs on every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]string(nil), h.attrs...)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, h.pair(attr))
	}
	return &clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *PrettyHandler) pair(attr slog.Attr) string {
	return h.prefix + attr.Key + "=" + attr.Value.String()
}

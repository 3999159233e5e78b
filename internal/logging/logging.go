// Package logging adapts log/slog to the tdx.Logger interface.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Options configures New.
type Options struct {
	// Level is DEBUG, INFO, WARN or ERROR. Defaults to ERROR.
	Level string
	// Format is "text" (tint) or "json".
	Format string
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// Logger implements tdx.Logger on top of a slog.Logger.
type Logger struct {
	slog  *slog.Logger
	level *slog.LevelVar
}

// New builds a logger. Text output is colored only when writing to a terminal.
func New(opts Options) *Logger {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(opts.Level))

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	var handler slog.Handler

	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(writer),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == "error" && a.Value.Kind() == slog.KindAny {
					if err, ok := a.Value.Any().(error); ok {
						return tint.Err(err)
					}
				}

				return a
			},
		})
	}

	return &Logger{slog: slog.New(handler), level: level}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	level := new(slog.LevelVar)
	level.Set(slog.LevelError + 1)

	return &Logger{
		slog:  slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})),
		level: level,
	}
}

// ParseLevel maps a level name to a slog level. Unknown names mean ERROR.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Slog returns the underlying slog logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.slog.Debug(msg, attrs(fields)...)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.slog.Info(msg, attrs(fields)...)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.slog.Warn(msg, attrs(fields)...)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.slog.Error(msg, attrs(fields)...)
}

// attrs flattens fields in key order so output is stable.
func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}

	return out
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}

	return false
}

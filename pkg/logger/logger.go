// Package logger provides a small structured logging facade over slog.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// callerLocation -> log -> logging method -> actual caller.
const callerSkip = 3

// Logger defines the logging interface.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field is a structured logging attribute. It is slog's attribute type
// under a shorter name, so constructing one allocates nothing extra.
type Field = slog.Attr

// Field constructors.
func String(key, val string) Field                 { return slog.String(key, val) }
func Int(key string, val int) Field                { return slog.Int(key, val) }
func Float64(key string, val float64) Field        { return slog.Float64(key, val) }
func Bool(key string, val bool) Field              { return slog.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return slog.Duration(key, val) }
func Any(key string, val interface{}) Field        { return slog.Any(key, val) }
func Error(err error) Field                        { return slog.Any("error", err) }

// slogLogger implements Logger on a slog.Logger.
type slogLogger struct {
	base *slog.Logger
}

func (s *slogLogger) Named(name string) Logger {
	return &slogLogger{base: s.base.WithGroup(name)}
}

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelDebug, msg, fields)
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelInfo, msg, fields)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelWarn, msg, fields)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
}

func (s *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (s *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	attrs := append(make([]slog.Attr, 0, len(fields)+1), fields...)
	attrs = append(attrs, slog.String("source", callerLocation()))
	s.base.LogAttrs(ctx, level, msg, attrs...)
}

var (
	global   Logger
	levelVar slog.LevelVar
	workdir  string
)

// Init initializes the global logger at info level, writing text lines
// to stdout. Adjust the level with SetLevel or SetLevelString.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	if wd, err := os.Getwd(); err == nil {
		workdir = wd
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &levelVar})
	global = &slogLogger{base: slog.New(handler)}
	return nil
}

// callerLocation reports where the log call happened as
// relative/path/file.go:line.
func callerLocation() string {
	_, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return "unknown:0"
	}
	if workdir != "" {
		if rel, err := filepath.Rel(workdir, file); err == nil {
			return fmt.Sprintf("%s:%d", rel, line)
		}
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		panic("logger not initialized; call logger.Init first")
	}
	return global
}

// Named creates a named logger off the global one.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries. slog does not buffer; kept for
// symmetry with loggers that do.
func Sync() error {
	return nil
}

// SetLevel updates the level of the global handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"":        slog.LevelInfo,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// SetLevelString parses and sets the logging level. It accepts debug,
// info, warn, warning, and error, case-insensitively; empty means info.
func SetLevelString(level string) error {
	parsed, ok := levelNames[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return fmt.Errorf("unknown log level: %s", level)
	}
	SetLevel(parsed)
	return nil
}

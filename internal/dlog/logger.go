// Package dlog provides structured logging for the engine core. Every
// writer targets stderr: stdout is reserved exclusively for the JSON
// response stream produced by internal/router, so nothing in this
// package is permitted to touch it.
package dlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors the subset of zerolog levels the CLI exposes via config.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the stderr encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config configures a Logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer // defaults to os.Stderr
}

// Logger is a thin structured-logging facade over zerolog.
type Logger struct {
	logger zerolog.Logger
}

// New builds a Logger per cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var output io.Writer = cfg.Output
	if cfg.Format == FormatText {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339, NoColor: true}
	}

	zl := zerolog.New(output).With().Timestamp().Logger()
	zl = zl.Level(levelOf(cfg.Level))
	return &Logger{logger: zl}
}

func levelOf(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string, fields ...interface{}) { l.emit(l.logger.Debug(), msg, fields...) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.emit(l.logger.Info(), msg, fields...) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.emit(l.logger.Warn(), msg, fields...) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.emit(l.logger.Error(), msg, fields...) }

// Fatal logs at error level and exits the process with status 1. Used
// only for startup-fatal conditions (spec.md §7): a missing engine
// library for a requested type is not fatal, a truly unrecoverable
// startup error is.
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	l.emit(l.logger.Error(), msg, fields...)
	os.Exit(1)
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields ...interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, fields[i+1])
	}
	event.Msg(msg)
}

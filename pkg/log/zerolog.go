package log

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger returns a JSON logger writing to w at the given minimum level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{logger: zl}
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) {
	emit(l.logger.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) {
	emit(l.logger.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) {
	emit(l.logger.Warn(), msg, fields)
}

// Error implements Logger.Error. A leading error field is attached with its stack.
func (l *ZerologLogger) Error(msg string, fields ...any) {
	e := l.logger.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.Stack().Err(err)
			fields = fields[1:]
		}
	}
	emit(e, msg, fields)
}

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{logger: l.logger.With().Fields(fields).Logger()}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	zl := toZerologLevel(level)
	return zl >= l.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

// Zerolog exposes the underlying zerolog.Logger.
func (l *ZerologLogger) Zerolog() zerolog.Logger {
	return l.logger
}

func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log_level", "must be one of debug, info, warn, error", s)
	}
}

var (
	loggerMu      sync.RWMutex
	defaultLogger Logger = NewZerologLogger(os.Stderr, LevelWarn)
)

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the process-wide logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// SetLogger replaces the process-wide logger.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = l
}

// GlobalProvider returns a LoggerProvider backed by the process-wide logger.
func GlobalProvider() LoggerProvider {
	return globalProvider{}
}

type globalProvider struct{}

func (globalProvider) GetLogger() Logger { return GetLogger() }

func (globalProvider) GetLoggerWithName(name string) Logger { return GetLoggerWithName(name) }

// SetLevel re-levels the process-wide logger when it is a *ZerologLogger.
// Other loggers are left as they are.
func (globalProvider) SetLevel(level Level) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if zl, ok := defaultLogger.(*ZerologLogger); ok {
		defaultLogger = &ZerologLogger{logger: zl.logger.Level(toZerologLevel(level))}
	}
}

// SetupLogger installs a zerolog logger on w at the named level and routes
// library warnings (errors.Warn) through it.
func SetupLogger(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	zl := NewZerologLogger(w, lvl)
	SetLogger(zl)

	base := zl.Zerolog()
	errors.SetZerologWarnFunc(func(warning error) {
		e := base.Warn()
		if m, ok := warning.(zerolog.LogObjectMarshaler); ok {
			e = e.EmbedObject(m)
		}
		e.Msg(warning.Error())
	})
	return nil
}

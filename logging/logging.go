package logging

import (
	"context"
	"fmt"
	"maps"
	"runtime/debug"
)

// Level represents log levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Fields represents structured logging fields
type Fields map[string]any

// contextKey is the type for context values read by WithContext.
type contextKey string

// FieldsContextKey is the context key under which a host may store Fields
// for WithContext to pick up.
const FieldsContextKey contextKey = "logger_fields"

// Logger defines the interface the library expects for logging. The signal
// processing packages never log; only the host-facing layer does, and only
// through whatever implementation the host injects here.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields
	WithFields(fields Fields) Logger

	// WithContext returns a logger that can extract fields from context
	WithContext(ctx context.Context) Logger

	// SetLevel sets the minimum log level
	SetLevel(level Level)
}

// The library is silent unless the host opts in: the global logger defaults
// to the no-op implementation and is replaced via SetGlobalLogger.
var globalLogger Logger = &NoOpLogger{}

// SetGlobalLogger sets the global logger instance. Passing nil restores the
// silent no-op logger.
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		globalLogger = &NoOpLogger{}
	} else {
		globalLogger = logger
	}
}

// GetGlobalLogger returns the current global logger
func GetGlobalLogger() Logger {
	return globalLogger
}

// LoggerFromAppLogger creates a library logger from an application logger,
// so the library stays standalone while reusing the host's existing logging.
// Loggers that already implement Logger are used directly; anything else is
// adapted per call through interface assertions, and unsupported methods
// become no-ops.
//
// Example integration:
//
//	appLogger := applog.NewWithFields(applog.Fields{"component": "onset"})
//	logging.SetGlobalLogger(logging.LoggerFromAppLogger(appLogger))
func LoggerFromAppLogger(appLogger any) Logger {
	if appLogger == nil {
		return &NoOpLogger{}
	}
	if logger, ok := appLogger.(Logger); ok {
		return logger
	}
	return &AppLoggerAdapter{appLogger: appLogger}
}

// mergeFields flattens preset and call-site fields into one map, later maps
// overriding earlier ones.
func mergeFields(base Fields, fields ...Fields) Fields {
	merged := make(Fields, len(base))
	maps.Copy(merged, base)
	for _, f := range fields {
		maps.Copy(merged, f)
	}
	return merged
}

// AppLoggerAdapter adapts an application logger to the Logger interface.
type AppLoggerAdapter struct {
	appLogger any
}

func (a *AppLoggerAdapter) Debug(msg string, fields ...Fields) {
	if l, ok := a.appLogger.(interface{ Debug(string, ...any) }); ok {
		l.Debug("%s", a.annotate(msg, fields))
	}
}

func (a *AppLoggerAdapter) Info(msg string, fields ...Fields) {
	if l, ok := a.appLogger.(interface{ Info(string, ...any) }); ok {
		l.Info("%s", a.annotate(msg, fields))
	}
}

func (a *AppLoggerAdapter) Warn(msg string, fields ...Fields) {
	if l, ok := a.appLogger.(interface{ Warn(string, ...any) }); ok {
		l.Warn("%s", a.annotate(msg, fields))
		return
	}
	// Hosts without a Warn level still see the message.
	if l, ok := a.appLogger.(interface{ Info(string, ...any) }); ok {
		l.Info("WARN: %s", a.annotate(msg, fields))
	}
}

func (a *AppLoggerAdapter) Error(err error, msg string, fields ...Fields) {
	if l, ok := a.appLogger.(interface{ Error(error, ...any) }); ok {
		l.Error(err, "%s", a.annotate(msg, fields))
	}
}

func (a *AppLoggerAdapter) Fatal(err error, msg string, fields ...Fields) {
	if l, ok := a.appLogger.(interface{ Fatal(string, ...any) }); ok {
		l.Fatal("%s: %v", a.annotate(msg, fields), err)
		return
	}
	// The app logger owns process exit; fall back to Error when it has no
	// Fatal level.
	if l, ok := a.appLogger.(interface{ Error(error, ...any) }); ok {
		l.Error(err, "FATAL: %s", a.annotate(msg, fields))
	}
}

func (a *AppLoggerAdapter) annotate(msg string, fields []Fields) string {
	if len(fields) == 0 {
		return msg
	}
	return fmt.Sprintf("%s %+v", msg, mergeFields(nil, fields...))
}

func (a *AppLoggerAdapter) WithFields(fields Fields) Logger {
	if l, ok := a.appLogger.(interface{ WithFields(any) any }); ok {
		return &AppLoggerAdapter{appLogger: l.WithFields(fields)}
	}
	return a
}

func (a *AppLoggerAdapter) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(FieldsContextKey).(Fields); ok {
		return a.WithFields(fields)
	}
	return a
}

func (a *AppLoggerAdapter) SetLevel(level Level) {
	if l, ok := a.appLogger.(interface{ SetLevel(any) }); ok {
		l.SetLevel(level)
	}
}

// Package-level logging functions that use the global logger
func Debug(msg string, fields ...Fields) {
	globalLogger.Debug(msg, fields...)
}

func Info(msg string, fields ...Fields) {
	globalLogger.Info(msg, fields...)
}

func Warn(msg string, fields ...Fields) {
	globalLogger.Warn(msg, fields...)
}

func Error(err error, msg string, fields ...Fields) {
	globalLogger.Error(err, msg, fields...)
}

func Fatal(err error, msg string, fields ...Fields) {
	globalLogger.Fatal(err, msg, fields...)
}

func WithFields(fields Fields) Logger {
	return globalLogger.WithFields(fields)
}

func WithContext(ctx context.Context) Logger {
	return globalLogger.WithContext(ctx)
}

func SetLevel(level Level) {
	globalLogger.SetLevel(level)
}

// CapturePanic is the host-installed crash diagnostic: deferred by the
// hosting application around its processing loop, it logs a recovered panic
// with the stack trace and re-panics so the crash still surfaces. The signal
// processing core never calls it.
//
//	defer logging.CapturePanic(logging.GetGlobalLogger())
func CapturePanic(logger Logger, fields ...Fields) {
	r := recover()
	if r == nil {
		return
	}
	if logger == nil {
		logger = globalLogger
	}
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	merged := mergeFields(nil, fields...)
	merged["stack"] = string(debug.Stack())
	logger.Error(err, "panic in host processing loop", merged)
	panic(r)
}

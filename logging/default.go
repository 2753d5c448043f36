package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// DefaultLogger is a leveled logger over Go's standard log package for hosts
// that want output without bringing their own logger.
// Debug/Info -> stdout (no color)
// Warn -> stderr (yellow)
// Error -> stderr (red)
// Fatal -> stderr (bold red)
// Colors come from fatih/color, which disables itself on non-terminal
// output and honors NO_COLOR.
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        Level
	fields       Fields
	warnColor    *color.Color
	errorColor   *color.Color
	fatalColor   *color.Color
}

// NewDefaultLogger creates a default logger with colored output.
func NewDefaultLogger() *DefaultLogger {
	return newDefaultLogger(os.Stdout, os.Stderr)
}

// NewDefaultLoggerNoColor creates a default logger without colored output.
func NewDefaultLoggerNoColor() *DefaultLogger {
	d := newDefaultLogger(os.Stdout, os.Stderr)
	d.disableColors()
	return d
}

func newDefaultLogger(stdout, stderr io.Writer) *DefaultLogger {
	return &DefaultLogger{
		stdoutLogger: log.New(stdout, "", log.LstdFlags),
		stderrLogger: log.New(stderr, "", log.LstdFlags),
		level:        InfoLevel,
		fields:       make(Fields),
		warnColor:    color.New(color.FgYellow),
		errorColor:   color.New(color.FgRed),
		fatalColor:   color.New(color.FgRed, color.Bold),
	}
}

func (d *DefaultLogger) enableColors() {
	d.warnColor.EnableColor()
	d.errorColor.EnableColor()
	d.fatalColor.EnableColor()
}

func (d *DefaultLogger) disableColors() {
	d.warnColor.DisableColor()
	d.errorColor.DisableColor()
	d.fatalColor.DisableColor()
}

func (d *DefaultLogger) formatMessage(level Level, err error, msg string, fields ...Fields) string {
	logMsg := fmt.Sprintf("[%s] %s", level.String(), msg)

	if err != nil {
		logMsg += fmt.Sprintf(": %v", err)
	}

	if merged := mergeFields(d.fields, fields...); len(merged) > 0 {
		logMsg += fmt.Sprintf(" %+v", merged)
	}

	switch level {
	case WarnLevel:
		logMsg = d.warnColor.Sprint(logMsg)
	case ErrorLevel:
		logMsg = d.errorColor.Sprint(logMsg)
	case FatalLevel:
		logMsg = d.fatalColor.Sprint(logMsg)
	}

	return logMsg
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < d.level {
		return
	}

	formattedMsg := d.formatMessage(level, err, msg, fields...)

	switch level {
	case DebugLevel, InfoLevel:
		d.stdoutLogger.Println(formattedMsg)
	case WarnLevel, ErrorLevel:
		d.stderrLogger.Println(formattedMsg)
	case FatalLevel:
		d.stderrLogger.Println(formattedMsg)
		os.Exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields...)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	return &DefaultLogger{
		stdoutLogger: d.stdoutLogger,
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       mergeFields(d.fields, fields),
		warnColor:    d.warnColor,
		errorColor:   d.errorColor,
		fatalColor:   d.fatalColor,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(FieldsContextKey).(Fields); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// DisableColors globally disables color output for the default logger
func DisableColors() {
	if defaultLogger, ok := globalLogger.(*DefaultLogger); ok {
		defaultLogger.disableColors()
	}
}

// EnableColors globally enables color output for the default logger
func EnableColors() {
	if defaultLogger, ok := globalLogger.(*DefaultLogger); ok {
		defaultLogger.enableColors()
	}
}

// NoOpLogger discards everything. It is the global default so the library
// stays silent until the host injects a real logger.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}

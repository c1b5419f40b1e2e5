// Package logger provides structured logging for the engine and CLI
// with configurable levels and output formats.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with application-level helpers.
type Logger struct {
	*logrus.Logger
}

// LogLevel represents available log levels
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New creates a JSON logger at info level.
func New() *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	return &Logger{Logger: log}
}

// NewWithOptions creates a logger with the given level and format.
func NewWithOptions(level LogLevel, format Format) *Logger {
	logger := New()
	logger.SetLogLevel(level)
	logger.SetFormat(format)
	return logger
}

// SetLogLevel sets the logging level
func (l *Logger) SetLogLevel(level LogLevel) {
	switch level {
	case DebugLevel:
		l.Logger.SetLevel(logrus.DebugLevel)
	case WarnLevel:
		l.Logger.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		l.Logger.SetLevel(logrus.ErrorLevel)
	default:
		l.Logger.SetLevel(logrus.InfoLevel)
	}
}

// SetFormat switches between JSON and plain-text output.
func (l *Logger) SetFormat(format Format) {
	if format == FormatText {
		l.Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	l.Logger.SetFormatter(&logrus.JSONFormatter{})
}

// WithFields adds fields to log entry
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// WithComponent tags entries with the emitting component name.
func (l *Logger) WithComponent(name string) *logrus.Entry {
	return l.Logger.WithField("component", name)
}

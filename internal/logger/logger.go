// Package logger wraps logrus with the small surface the portal uses.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is an alias so callers do not import logrus directly.
type Fields = logrus.Fields

type Logger struct {
	logger *logrus.Logger
}

// New builds a Logger. Unknown levels fall back to info; format "json"
// selects the JSON formatter, anything else the text formatter.
func New(level, format string) *Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(w io.Writer, level, format string) *Logger {
	l := logrus.New()
	l.Out = w

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			PadLevelText:  true,
		})
	}

	return &Logger{logger: l}
}

// Discard returns a Logger that drops everything. Used by tests and the TUI.
func Discard() *Logger {
	l := logrus.New()
	l.Out = io.Discard
	return &Logger{logger: l}
}

// Writer exposes the underlying output, e.g. for echo's request logger.
func (l *Logger) Writer() io.Writer {
	return l.logger.Out
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.logWithFields(logrus.DebugLevel, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.logWithFields(logrus.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.logWithFields(logrus.WarnLevel, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Fields) {
	l.logWithFields(logrus.ErrorLevel, msg, fields...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...Fields) {
	l.logWithFields(logrus.FatalLevel, msg, fields...)
	os.Exit(1)
}

func (l *Logger) logWithFields(level logrus.Level, msg string, fields ...Fields) {
	entry := logrus.NewEntry(l.logger)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	entry.Log(level, msg)
}

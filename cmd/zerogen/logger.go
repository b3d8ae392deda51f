// logger.go - Structured logging for the genesis generator
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger wraps a zerolog.Logger writing to the console, an optional log
// file, and an optional audit file that only receives warnings and above
// plus explicit audit events.
type Logger struct {
	zerolog.Logger
	audit zerolog.Logger
	files []*os.File
}

// NewLogger creates a new logger instance. Unknown levels fall back to info.
func NewLogger(level string, console io.Writer, logFile string, auditFile string) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l := &Logger{audit: zerolog.Nop()}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: timeFormat}}

	// Setup file logging if specified
	if logFile != "" {
		file, err := openAppend(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.files = append(l.files, file)
		writers = append(writers, file)
	}

	// Setup audit logging if specified
	if auditFile != "" {
		file, err := openAppend(auditFile)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to open audit file: %w", err)
		}
		l.files = append(l.files, file)
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: file},
			Level:  zerolog.WarnLevel,
		})
		l.audit = zerolog.New(file).With().Timestamp().Logger()
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().Timestamp().Logger()
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}

// RouteGnark sends gnark's compiler and prover logs through l.
func (l *Logger) RouteGnark() {
	gnarklogger.Set(l.Logger.With().Str("component", "gnark").Logger())
}

// Close closes the logger and its files
func (l *Logger) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.files = nil
	return first
}

// Audit logs an audit event
func (l *Logger) Audit(event string, details map[string]interface{}) {
	l.audit.Log().Str("audit", event).Fields(details).Send()
}

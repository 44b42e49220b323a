// Package logging provides the small leveled logger the session package
// uses for connection lifecycle events, dropped/malformed-stanza
// notices, and handler errors. It wraps the standard log package rather
// than pulling in a structured-logging library: no such dependency
// appears anywhere in the retrieved reference corpus for this concern.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is a logging verbosity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?"
	}
}

// Logger is a minimal leveled wrapper around *log.Logger.
type Logger struct {
	min    Level
	logger *log.Logger
}

// New creates a Logger writing to w, suppressing messages below min.
func New(w io.Writer, min Level) *Logger {
	return &Logger{min: min, logger: log.New(w, "", log.LstdFlags)}
}

// NewStderr creates a Logger writing to stderr, the logger cmd/profanity
// uses.
func NewStderr(min Level) *Logger {
	return New(os.Stderr, min)
}

func (l *Logger) log(lvl Level, format string, args ...interface{}) {
	if l == nil || lvl < l.min {
		return
	}
	l.logger.Print(lvl.String() + " " + fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

// Package logging provides the logging interface and default implementations
// used by the mutation tooling.
//
// Design: five-level interface (Error, Warn, Info, Debug, Fatal). Callers can
// wrap their own structured loggers (slog, zap) behind it.
//
// Fatalf logs at FATAL level and calls the configured FatalHandler. It never
// exits the process.
//
// Log format: YYYY/MM/DD HH:MM:SS LEVEL [component] message
//
// Example: 2026/10/16 18:45:13 INFO [tracker] flush threshold reached
//
// Component namespace prefixes are used for filtering:
//   - [tracker]   footprint accounting and flush decisions
//   - [cellblock] cell-block encoding and decoding
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"sync/atomic"
)

// FatalHandler is called when Fatalf is invoked.
//
// Contract: FatalHandler must be safe for concurrent use and must not call Fatalf.
type FatalHandler func(msg string)

// Level represents the logging level.
type Level int

const (
	// LevelError logs only errors.
	LevelError Level = iota
	// LevelWarn logs warnings and errors.
	LevelWarn
	// LevelInfo logs info, warnings, and errors.
	LevelInfo
	// LevelDebug logs everything including debug messages.
	LevelDebug
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging interface.
//
// Implementations MUST be safe for concurrent use: a FootprintTracker shared
// by several writers logs from all of them.
type Logger interface {
	// Errorf logs a formatted error message.
	Errorf(format string, args ...any)

	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)

	// Infof logs a formatted informational message.
	Infof(format string, args ...any)

	// Debugf logs a formatted debug message.
	Debugf(format string, args ...any)

	// Fatalf logs a fatal error and triggers the fatal handler.
	Fatalf(format string, args ...any)
}

// DefaultLogger writes to an io.Writer through a log.Logger.
// Level is read-only after construction.
type DefaultLogger struct {
	logger       *log.Logger
	level        Level
	fatalHandler atomic.Pointer[FatalHandler]
}

// NewDefaultLogger creates a logger writing to stderr at the given level.
func NewDefaultLogger(level Level) *DefaultLogger {
	return NewLogger(os.Stderr, level)
}

// NewLogger creates a logger with the specified output and level.
func NewLogger(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// SetFatalHandler sets the handler called when Fatalf is invoked.
func (l *DefaultLogger) SetFatalHandler(h FatalHandler) {
	l.fatalHandler.Store(&h)
}

// Level returns the logging level.
func (l *DefaultLogger) Level() Level {
	return l.level
}

// Errorf logs a formatted error message.
func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.output(LevelError, "ERROR ", format, args)
}

// Warnf logs a formatted warning message.
func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.output(LevelWarn, "WARN ", format, args)
}

// Infof logs a formatted informational message.
func (l *DefaultLogger) Infof(format string, args ...any) {
	l.output(LevelInfo, "INFO ", format, args)
}

// Debugf logs a formatted debug message.
func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.output(LevelDebug, "DEBUG ", format, args)
}

// Fatalf logs regardless of level and then calls the fatal handler, if any.
func (l *DefaultLogger) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_ = l.logger.Output(2, "FATAL "+msg)
	if h := l.fatalHandler.Load(); h != nil {
		(*h)(msg)
	}
}

func (l *DefaultLogger) output(level Level, prefix, format string, args []any) {
	if l.level < level {
		return
	}
	_ = l.logger.Output(3, prefix+fmt.Sprintf(format, args...))
}

// Namespace prefixes for log messages.
const (
	// NSTracker is the namespace for footprint accounting.
	NSTracker = "[tracker] "
	// NSCellBlock is the namespace for cell-block encoding and decoding.
	NSCellBlock = "[cellblock] "
)

// IsNil returns true if the logger is nil or a typed-nil.
// A typed-nil occurs when a nil pointer is assigned to an interface:
//
//	var l *MyLogger = nil
//	opts.Logger = l  // Interface is not nil, but underlying pointer is
func IsNil(l Logger) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// OrDefault returns l if it is usable, otherwise a WARN-level stderr logger.
func OrDefault(l Logger) Logger {
	if IsNil(l) {
		return NewDefaultLogger(LevelWarn)
	}
	return l
}

// Package logging provides the structured logging sink used by the core.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// Level is a log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Fields is a flat context mapping attached to an event
type Fields map[string]interface{}

// Logger accepts a severity, a message and a flat context.
// Implementations must not block the caller.
type Logger interface {
	Log(level Level, message string, fields Fields)
}

// Config captures options for building a zerolog-backed Logger.
type Config struct {
	Level      string    // optional log level ("debug", "info", etc.)
	Output     io.Writer // optional writer (defaults to os.Stdout)
	Service    string    // optional service name attached to every entry
	Sync       bool      // write in the caller's goroutine instead of through a diode
	BufferSize int       // diode ring size, defaults to 1000
}

// ZeroLogger is the production Logger
type ZeroLogger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// New builds a ZeroLogger. Unless cfg.Sync is set, writes go through a
// non-blocking diode that drops entries when the sink falls behind.
func New(cfg Config) *ZeroLogger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}

	var closer io.Closer
	if !cfg.Sync {
		size := cfg.BufferSize
		if size <= 0 {
			size = 1000
		}
		d := diode.NewWriter(writer, size, 10*time.Millisecond, func(missed int) {
			fmt.Fprintf(os.Stderr, "logging: dropped %d messages\n", missed)
		})
		writer = d
		closer = d
	}

	service := cfg.Service
	if service == "" {
		service = "vid2scene"
	}

	zl := zerolog.New(writer).Level(level).With().
		Timestamp().
		Str(FieldService, service).
		Logger()

	return &ZeroLogger{zl: zl, closer: closer}
}

// Log writes one structured event
func (l *ZeroLogger) Log(level Level, message string, fields Fields) {
	ev := l.zl.WithLevel(toZerolog(level))
	if len(fields) > 0 {
		ev = ev.Fields(map[string]interface{}(fields))
	}
	ev.Msg(message)
}

// Zerolog exposes the underlying logger for components that log directly.
func (l *ZeroLogger) Zerolog() zerolog.Logger {
	return l.zl
}

// WithComponent returns a child logger annotated with the given component name.
func (l *ZeroLogger) WithComponent(component string) *ZeroLogger {
	return &ZeroLogger{zl: l.zl.With().Str(FieldComponent, component).Logger()}
}

// Close flushes the diode, if any
func (l *ZeroLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func toZerolog(level Level) zerolog.Level {
	switch level {
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

type nopLogger struct{}

func (nopLogger) Log(Level, string, Fields) {}

// Nop returns a Logger that discards everything
func Nop() Logger {
	return nopLogger{}
}

// ABOUTME: zerolog logger construction for postadmin commands.
// ABOUTME: Builder picks a file, a writer, or nothing, and applies the configured level.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o600

// Build collects logger settings.
type Build struct {
	writer io.Writer
	path   string
	level  string
}

// New starts a logger builder. With no destination the logger discards output.
func New() *Build {
	return &Build{}
}

// FromPath appends log lines to the file at path.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// FromWriter writes log lines to w.
func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// WithLevel sets the minimum level by name ("debug", "info", ...). Unknown
// names fall back to info.
func (b *Build) WithLevel(level string) *Build {
	b.level = level
	return b
}

// Logger is a built logger and the file it owns, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// Make builds the logger.
func (b *Build) Make() (*Logger, error) {
	out := &Logger{}

	writer := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		out.file = f
		writer = zerolog.SyncWriter(f)
	}
	if writer == nil {
		out.Logger = zerolog.Nop()
		return out, nil
	}

	out.Logger = zerolog.New(writer).
		Level(ParseLevel(b.level)).
		With().
		Timestamp().
		Logger()
	return out, nil
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Package logging builds the prefixed loggers used by each component.
//
// Every logger writes to stderr. When a log file is configured the same
// lines are appended to it through lumberjack, which rotates by size.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/steveyegge/snipsync/internal/config"
)

// Factory hands out loggers sharing one output.
type Factory struct {
	out  io.Writer
	file *lumberjack.Logger
}

// New creates a Factory for cfg. A zero LogConfig logs to stderr only.
func New(cfg config.LogConfig) *Factory {
	return newFactory(os.Stderr, cfg)
}

func newFactory(stderr io.Writer, cfg config.LogConfig) *Factory {
	f := &Factory{out: stderr}
	if cfg.File != "" {
		f.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		f.out = io.MultiWriter(stderr, f.file)
	}
	return f
}

// Logger returns a logger whose lines start with "[name] ".
func (f *Factory) Logger(name string) *log.Logger {
	return log.New(f.out, "["+name+"] ", log.LstdFlags)
}

// Writer returns the shared output.
func (f *Factory) Writer() io.Writer {
	return f.out
}

// Close closes the log file, if any.
func (f *Factory) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

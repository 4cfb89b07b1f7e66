package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Options controls where log lines go and how verbose they are
type Options struct {
	File   string
	Level  string
	Prefix string
	Stderr io.Writer
}

// New builds the process logger. Lines are mirrored to stderr and, when a
// file is configured, appended to it. The returned closer releases the file.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		l, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	var out io.Writer = os.Stderr
	if opts.Stderr != nil {
		out = opts.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = f
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Prefix:          opts.Prefix,
	})
	return logger, closer, nil
}

// Discard is a logger that drops everything, used by tests
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Into stores the logger on the context
func Into(ctx context.Context, logger *log.Logger) context.Context {
	return log.WithContext(ctx, logger)
}

// From returns the context logger, or the package default when none was set
func From(ctx context.Context) *log.Logger {
	return log.FromContext(ctx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Package obslog builds the structured logger used across the solver
// CLI: a single fan-out *slog.Logger writing to one or more handlers,
// tagged with a run id so that concurrent solves in the same process
// (or log aggregation across runs) can be told apart.
package obslog

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures the logger returned by New.
type Options struct {
	// Level is the minimum level that reaches any handler. Nil defaults
	// to slog.LevelInfo.
	Level *slog.LevelVar
	// Writers receives text-handler output, one handler per writer.
	// Typically just os.Stderr; a second writer (a file, a test buffer)
	// can be appended for simultaneous terminal and file logging.
	Writers []io.Writer
	// JSON selects slog.NewJSONHandler over slog.NewTextHandler for
	// every writer in Writers.
	JSON bool
}

// New builds a fan-out logger from opts and tags every record with a
// "run" group holding the run id (key run.id) so that log lines from
// distinct solve/play invocations in the same stream can be separated.
// With no writers it returns a logger that discards everything.
//
// This module has no systemd-journal-specific deployment target, so
// unlike the journal-aware loggers in the wider corpus, New only ever
// fans out to the writers it's given.
func New(runID string, opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = new(slog.LevelVar)
		level.Set(slog.LevelInfo)
	}

	writers := opts.Writers
	if len(writers) == 0 {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))
	}

	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		ho := &slog.HandlerOptions{Level: level}
		if opts.JSON {
			handlers = append(handlers, slog.NewJSONHandler(w, ho))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, ho))
		}
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	return logger.With(slog.Group("run", slog.String("id", runID)))
}

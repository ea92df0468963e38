// Package debug provides the process-wide logger. Output goes to
// stderr by default, or to a size-rotated file when one is configured.
// The chain core itself never logs; logging happens at the CLI and
// replay boundaries.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Options configures the process logger.
type Options struct {
	// LogFile, when non-empty, routes output to a rotated file.
	LogFile string
	// Level is "debug", "info", "warn", or "error". Empty means info.
	Level string
}

// Init installs the process logger. Safe to call more than once; the
// last call wins.
func Init(opts Options) {
	var w io.Writer = os.Stderr
	if opts.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	level := slog.LevelInfo
	switch opts.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the process logger, initializing a stderr logger on
// first use if Init was never called.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return logger
}

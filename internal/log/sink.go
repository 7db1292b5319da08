package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SinkConfig describes a size-bounded rotating log file.
type SinkConfig struct {
	Dir        string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// OpenRotatingSink creates the log directory and returns a lumberjack writer
// that rotates at MaxSizeMB and keeps MaxBackups old files, discarding the oldest.
func OpenRotatingSink(cfg SinkConfig) (*lumberjack.Logger, error) {
	if cfg.Dir == "" || cfg.File == "" {
		return nil, fmt.Errorf("log sink requires a directory and file name")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, cfg.File),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}, nil
}

// bestEffortWriter never reports a failure to its caller. The first error of
// a failure burst is reported on the fallback logger; a later successful
// write re-arms the report.
type bestEffortWriter struct {
	w        io.Writer
	fallback *slog.Logger

	mu      sync.Mutex
	failing bool
}

func newBestEffortWriter(w io.Writer, fallback *slog.Logger) *bestEffortWriter {
	return &bestEffortWriter{w: w, fallback: fallback}
}

func (b *bestEffortWriter) Write(p []byte) (int, error) {
	_, err := b.w.Write(p)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		if !b.failing && b.fallback != nil {
			b.fallback.Error("request log write failed; continuing without it", "error", err)
		}
		b.failing = true
	} else if b.failing {
		b.failing = false
		if b.fallback != nil {
			b.fallback.Info("request log writes recovered")
		}
	}
	return len(p), nil
}

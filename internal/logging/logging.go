package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
	level  = new(slog.LevelVar)
)

// Logger returns the process-wide logger. Until Init is called it discards
// everything, so packages can log unconditionally.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// Init points the logger at a file under path. The terminal is owned by the
// UI, so nothing goes to stdout. The returned closer releases the file.
func Init(path string, debug bool) (io.Closer, error) {
	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	logger = slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
	return file, nil
}

// SetOutput replaces the logger destination. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

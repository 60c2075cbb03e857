package anki

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/logging"
)

// Recorder keeps a history of written exports.
type Recorder interface {
	RecordExport(path string, rows int, at time.Time) error
}

// Exporter writes CSV exports into Dir.
type Exporter struct {
	App      string
	Dir      string
	Recorder Recorder
	Now      func() time.Time
}

type Result struct {
	Path    string
	Rows    int
	Skipped int
}

func (x *Exporter) now() time.Time {
	if x.Now != nil {
		return x.Now()
	}
	return time.Now()
}

// Export builds rows from items and writes them to
// <Dir>/<App>-anki-<date>.csv, replacing a file of the same name. Nothing is
// written when BuildRows refuses.
func (x *Exporter) Export(items []api.Example) (Result, error) {
	rows, err := BuildRows(items)
	if err != nil {
		return Result{}, err
	}

	at := x.now()
	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(x.Dir, FileName(x.App, at))
	if err := os.WriteFile(path, Encode(rows), 0o644); err != nil {
		return Result{}, fmt.Errorf("writing export: %w", err)
	}

	if x.Recorder != nil {
		if err := x.Recorder.RecordExport(path, len(rows), at); err != nil {
			// The file is already on disk; history is best effort
			logging.Logger().Warn("recording export", "path", path, "err", err)
		}
	}
	logging.Logger().Info("anki export written", "path", path, "rows", len(rows), "skipped", len(items)-len(rows))
	return Result{Path: path, Rows: len(rows), Skipped: len(items) - len(rows)}, nil
}

var clipboardWrite = clipboard.WriteAll

// Copy puts the CSV for items on the system clipboard and returns the number
// of rows copied. It refuses with the same errors as BuildRows.
func Copy(items []api.Example) (int, error) {
	rows, err := BuildRows(items)
	if err != nil {
		return 0, err
	}
	if err := clipboardWrite(string(Encode(rows))); err != nil {
		return 0, fmt.Errorf("clipboard: %w", err)
	}
	return len(rows), nil
}

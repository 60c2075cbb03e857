package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Cache is the client-local store: a key/value table for small blobs such
// as preferences, plus the export history.
type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	c := &Cache{writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	// The read handle is opened after the schema exists so mode=ro never
	// sees an empty file.
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS exports (
			id         TEXT PRIMARY KEY,
			path       TEXT NOT NULL,
			rows       INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Get returns the value stored under key. ok is false when the key is
// absent.
func (c *Cache) Get(key string) (value string, ok bool, err error) {
	err = c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (c *Cache) Set(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(key string) error {
	if _, err := c.writeDB.Exec("DELETE FROM meta WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// LastFetch is when examples were last fetched successfully, or the zero
// time.
func (c *Cache) LastFetch() time.Time {
	value, ok, err := c.Get("last_fetch")
	if err != nil || !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (c *Cache) SetLastFetch(t time.Time) error {
	return c.Set("last_fetch", t.UTC().Format(time.RFC3339))
}

// RecordExport adds an entry to the export history.
func (c *Cache) RecordExport(path string, rows int, at time.Time) error {
	_, err := c.writeDB.Exec(
		"INSERT INTO exports (id, path, rows, created_at) VALUES (?, ?, ?, ?)",
		uuid.NewString(), path, rows, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording export: %w", err)
	}
	return nil
}

// Exports lists the most recent exports first. limit <= 0 means 50.
func (c *Cache) Exports(limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.readDB.Query(
		"SELECT id, path, rows, created_at FROM exports ORDER BY created_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ID, &e.Path, &e.Rows, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning export: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune drops export history older than retention. Exported files are left
// alone.
func (c *Cache) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()
	res, err := c.writeDB.Exec("DELETE FROM exports WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning exports: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		c.writeDB.Exec("VACUUM")
	}
	return n, nil
}

// Stats reports the export count and the database file size.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM exports").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting exports: %w", err)
	}
	var size int64
	if info, err := os.Stat(dbPath); err == nil {
		size = info.Size()
	}
	return count, size, nil
}

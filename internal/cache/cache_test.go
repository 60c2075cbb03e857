package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestGetMissingKey(t *testing.T) {
	db, _ := testDB(t)
	value, ok, err := db.Get("preferences")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || value != "" {
		t.Errorf("expected absent key, got %q ok=%v", value, ok)
	}
}

func TestSetGetOverwrite(t *testing.T) {
	db, _ := testDB(t)
	if err := db.Set("preferences", `{"track":"arts"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Set("preferences", `{"track":"commerce"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := db.Get("preferences")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != `{"track":"commerce"}` {
		t.Errorf("unexpected value %q", value)
	}
}

func TestDelete(t *testing.T) {
	db, _ := testDB(t)
	db.Set("k", "v")
	if err := db.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := db.Get("k"); ok {
		t.Error("key survived delete")
	}
	if err := db.Delete("never-set"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestLastFetch(t *testing.T) {
	db, _ := testDB(t)
	if !db.LastFetch().IsZero() {
		t.Error("expected zero last fetch on a new db")
	}
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := db.SetLastFetch(now); err != nil {
		t.Fatalf("set last fetch: %v", err)
	}
	if got := db.LastFetch(); !got.Equal(now) {
		t.Errorf("LastFetch = %v, want %v", got, now)
	}

	db.Set("last_fetch", "garbage")
	if !db.LastFetch().IsZero() {
		t.Error("expected zero time for unparsable value")
	}
}

func TestRecordAndListExports(t *testing.T) {
	db, _ := testDB(t)
	now := time.Now()
	if err := db.RecordExport("/tmp/a.csv", 3, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordExport("/tmp/b.csv", 5, now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := db.Exports(0)
	if err != nil {
		t.Fatalf("exports: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(got))
	}
	if got[0].Path != "/tmp/b.csv" || got[0].Rows != 5 {
		t.Errorf("expected newest first, got %+v", got[0])
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("expected distinct ids, got %q and %q", got[0].ID, got[1].ID)
	}
}

func TestPrune(t *testing.T) {
	db, _ := testDB(t)
	now := time.Now()
	db.RecordExport("/tmp/old.csv", 1, now.Add(-100*24*time.Hour))
	db.RecordExport("/tmp/new.csv", 1, now.Add(-1*time.Hour))

	deleted, err := db.Prune(90 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}
	got, _ := db.Exports(10)
	if len(got) != 1 || got[0].Path != "/tmp/new.csv" {
		t.Errorf("unexpected remaining exports %+v", got)
	}
}

func TestStats(t *testing.T) {
	db, path := testDB(t)
	db.RecordExport("/tmp/a.csv", 2, time.Now())

	count, size, err := db.Stats(path)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 export, got %d", count)
	}
	if size <= 0 {
		t.Errorf("expected positive db size, got %d", size)
	}
}

package db

import (
	"path/filepath"
	"testing"
)

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	versions, err := AppliedVersions(d)
	if err != nil {
		t.Fatalf("AppliedVersions: %v", err)
	}
	if len(versions) != 1 || versions[0] != 1 {
		t.Fatalf("unexpected versions %v", versions)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening must not re-run 0001.
	d, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("schema_migrations rows = %d, want 1", n)
	}
}

func TestRollbackLast_DropsSchema(t *testing.T) {
	d, err := Open("file:rollback?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()
	if err := RollbackLast(d); err != nil {
		t.Fatalf("RollbackLast: %v", err)
	}
	var name string
	err = d.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='donations'`).Scan(&name)
	if err == nil {
		t.Fatalf("donations table should be gone after rollback")
	}
	versions, err := AppliedVersions(d)
	if err != nil {
		t.Fatalf("AppliedVersions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no applied versions, got %v", versions)
	}
	// Nothing left to roll back.
	if err := RollbackLast(d); err != nil {
		t.Fatalf("second RollbackLast: %v", err)
	}
}

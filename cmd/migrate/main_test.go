package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestRun_AppliesThenRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer
	if err := run(path, 0, &out); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := out.String(); got != "applied versions: [1]\n" {
		t.Fatalf("output = %q", got)
	}

	out.Reset()
	if err := run(path, 1, &out); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	// Open re-applies pending migrations before rolling back, so the
	// rollback leaves the schema empty.
	if got := out.String(); got != "applied versions: []\n" {
		t.Fatalf("output after rollback = %q", got)
	}
}

func TestRun_RejectsNegativeCount(t *testing.T) {
	if err := run(filepath.Join(t.TempDir(), "neg.db"), -1, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for negative rollback")
	}
}

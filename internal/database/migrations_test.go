package database

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestListMigrationFiles(t *testing.T) {
	dir := t.TempDir()

	// Written out of order; discovery must return lexical (execution) order
	// and skip everything that is not a .sql file.
	for _, name := range []string{
		"002_create_customers.sql",
		"001_create_orders.sql",
		"010_create_receipts.sql",
		"notes.txt",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "archive.sql"), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	files, err := listMigrationFiles(dir)
	if err != nil {
		t.Fatalf("listMigrationFiles failed: %v", err)
	}

	want := []string{
		"001_create_orders.sql",
		"002_create_customers.sql",
		"010_create_receipts.sql",
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("listMigrationFiles = %v, want %v", files, want)
	}
}

func TestListMigrationFiles_MissingDirectory(t *testing.T) {
	if _, err := listMigrationFiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing migrations directory")
	}
}

package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/escuriola/edaitorial/internal/storage"
)

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "nested", "state")
	db, err := storage.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := storage.ApplySchema(db, `CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY);`); err != nil {
		t.Fatalf("ApplySchema: %v", err)
	}
	if err := storage.ApplySchema(db, `CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY);`); err != nil {
		t.Fatalf("ApplySchema should be idempotent: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, storage.DBFileName)); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE t (v TEXT); INSERT INTO t VALUES ('x');`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	var v string
	if err := db.QueryRow(`SELECT v FROM t`).Scan(&v); err != nil || v != "x" {
		t.Fatalf("expected to read back row, got %q %v", v, err)
	}
}

func TestOpen_RequiresRoot(t *testing.T) {
	t.Parallel()
	if _, err := storage.Open(""); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestApplySchema_NilDB(t *testing.T) {
	t.Parallel()
	if err := storage.ApplySchema(nil, "SELECT 1"); err == nil {
		t.Fatal("expected error for nil db")
	}
}

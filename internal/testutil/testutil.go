// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lherron/farmlist/internal/db"
)

// TempDB opens a migrated catalog database in a per-test directory.
func TempDB(t *testing.T) (*db.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("open catalog database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := database.Migrate(); err != nil {
		t.Fatalf("migrate catalog database: %v", err)
	}
	return database, path
}

// CatalogDir writes an items.csv and definitions.yaml pair into a fresh
// directory and returns it. An empty definitions body is written as an
// empty donation list.
func CatalogDir(t *testing.T, items, definitions string) string {
	t.Helper()
	if definitions == "" {
		definitions = "donations: []\n"
	}
	dir := t.TempDir()
	WriteFile(t, dir, "items.csv", items)
	WriteFile(t, dir, "definitions.yaml", definitions)
	return dir
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// AssertErrorIs fails unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

// AssertEqual compares with reflect.DeepEqual so maps and slices work.
func AssertEqual(t *testing.T, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %#v, got %#v", want, got)
	}
}

func AssertStringContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("expected %q to contain %q", s, substr)
	}
}

package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"001_quizzes.sql", 1},
		{"012_results.sql", 12},
		{"README.md", 0},
		{"abc_quizzes.sql", 0},
		{"001.sql", 0},
		{"003_notes.txt", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := migrationVersion(tc.name); got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestListMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"010_later.sql", "002_results.sql", "001_quizzes.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "999_dir.sql"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	migrations, err := listMigrations(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 2, 10}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migrations))
	}
	for i, v := range want {
		if migrations[i].version != v {
			t.Errorf("migration %d: expected version %d, got %d", i, v, migrations[i].version)
		}
	}
}

func TestListMigrations_MissingDir(t *testing.T) {
	if _, err := listMigrations(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

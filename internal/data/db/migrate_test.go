package db

import (
	"strings"
	"testing"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no migrations embedded")
	}

	seen := map[string]bool{}
	prev := ""
	for _, m := range migrations {
		if m.Version == "" || strings.HasSuffix(m.Version, ".sql") {
			t.Fatalf("bad version %q", m.Version)
		}
		if seen[m.Version] {
			t.Fatalf("duplicate version %q", m.Version)
		}
		seen[m.Version] = true
		if m.Version <= prev {
			t.Fatalf("out of order: %q after %q", m.Version, prev)
		}
		prev = m.Version
		if strings.TrimSpace(m.SQL) == "" {
			t.Fatalf("migration %q is empty", m.Version)
		}
	}

	// The schema baseline has to come first; everything else layers on it.
	if !strings.Contains(migrations[0].Version, "init_core_schema") {
		t.Fatalf("first migration is %q", migrations[0].Version)
	}
}

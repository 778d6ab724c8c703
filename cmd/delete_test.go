package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shopdash/sales"
	"shopdash/storage"

	"github.com/shopspring/decimal"
)

func TestConfirmDeletePrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "uppercase Y confirms", input: "Y\n", want: true},
		{name: "lowercase y does not confirm", input: "y\n", want: false},
		{name: "N does not confirm", input: "N\n", want: false},
		{name: "empty does not confirm", input: "\n", want: false},
		{name: "Y without newline confirms", input: "Y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirmDeletePrompt(bytes.NewBufferString(tt.input), &out, "./shopdash.db", []string{"shop-a", "shop-b"})
			if err != nil {
				t.Fatalf("confirm prompt returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if !strings.Contains(out.String(), "2 owner(s): shop-a, shop-b") {
				t.Fatalf("expected owners in prompt, got %q", out.String())
			}
		})
	}
}

func TestStoredOwners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopdash.db")
	if _, err := storedOwners(path); err == nil {
		t.Fatalf("expected error for missing database")
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := store.InsertExpense("shop-a", sales.Expense{SpentOn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Category: "ads", Amount: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("insert expense: %v", err)
	}
	_ = store.Close()

	owners, err := storedOwners(path)
	if err != nil {
		t.Fatalf("stored owners: %v", err)
	}
	if len(owners) != 1 || owners[0] != "shop-a" {
		t.Fatalf("unexpected owners: %v", owners)
	}
}

func TestRemoveDatabaseFile(t *testing.T) {
	t.Run("deletes existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shopdash.db")
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatalf("write temp db file: %v", err)
		}

		if err := removeDatabaseFile(path); err != nil {
			t.Fatalf("remove db file: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected file to be deleted")
		}
	})

	t.Run("fails for directory path", func(t *testing.T) {
		dir := t.TempDir()
		if err := removeDatabaseFile(dir); err == nil {
			t.Fatalf("expected error for directory path")
		}
	})

	t.Run("fails for missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.db")
		if err := removeDatabaseFile(path); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/orbital-trader/internal/config"
)

func TestRunFailsWhenDataDirCannotBeCreated(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		dbPath string
	}{
		{"parent is a file", filepath.Join(blocker, "saves.db")},
		{"nested under a file", filepath.Join(blocker, "data", "saves.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(config.Server{DBPath: tt.dbPath})
			if err == nil || !strings.Contains(err.Error(), "create data dir") {
				t.Fatalf("run err = %v", err)
			}
		})
	}
}

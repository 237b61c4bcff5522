package cli

import (
	"path/filepath"
	"testing"

	"yt-ingest/internal/registry"
)

func TestRunSettingsSetUpdatesConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "playlists.json")

	if err := Run([]string{
		"settings", "set",
		"--config", cfg,
		"--languages", "de,en",
		"--fragments", "8",
		"--download-limit-mb-s", "2.5",
	}); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	global, err := registry.GetGlobalSettings(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(global.Languages) != 2 || global.Languages[0] != "de" {
		t.Fatalf("unexpected languages: %v", global.Languages)
	}
	if global.Fragments != 8 {
		t.Fatalf("expected fragments 8, got %d", global.Fragments)
	}
	if global.DownloadLimitMBps != 2.5 {
		t.Fatalf("expected download limit 2.5, got %v", global.DownloadLimitMBps)
	}
}

func TestRunSettingsSetRejectsNegativeLimit(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "playlists.json")
	err := Run([]string{
		"settings", "set",
		"--config", cfg,
		"--download-limit-mb-s", "-3",
	})
	if err == nil {
		t.Fatal("expected error for negative download limit")
	}
}

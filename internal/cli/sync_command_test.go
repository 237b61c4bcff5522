package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"yt-ingest/internal/registry"
)

func TestCollectSyncItemsActiveOnly(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "playlists.json")

	_, err := registry.AddPlaylist(registry.AddPlaylistOptions{
		ConfigPath:  cfg,
		Name:        "active-one",
		PlaylistURL: "https://www.youtube.com/playlist?list=PLa",
		Active:      boolPtr(true),
	})
	if err != nil {
		t.Fatalf("add active playlist failed: %v", err)
	}
	_, err = registry.AddPlaylist(registry.AddPlaylistOptions{
		ConfigPath:  cfg,
		Name:        "inactive-one",
		PlaylistURL: "https://www.youtube.com/playlist?list=PLb",
		Active:      boolPtr(false),
	})
	if err != nil {
		t.Fatalf("add inactive playlist failed: %v", err)
	}

	items, err := collectSyncItems("", "", "", true, true, cfg)
	if err != nil {
		t.Fatalf("collect sync items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 active item, got %d", len(items))
	}
	if items[0].Name != "active-one" {
		t.Fatalf("expected active-one, got %q", items[0].Name)
	}
}

func TestCollectSyncItemsActiveOnlyRequiresPlaylistMode(t *testing.T) {
	_, err := collectSyncItems("https://www.youtube.com/playlist?list=PLa", "", "", false, true, "config/playlists.json")
	if err == nil {
		t.Fatal("expected error for active-only in URL mode")
	}
}

func TestCollectSyncItemsModesAreExclusive(t *testing.T) {
	_, err := collectSyncItems("https://www.youtube.com/playlist?list=PLa", "", "demo", false, false, "config/playlists.json")
	if err == nil {
		t.Fatal("expected error for mixed URL and playlist mode")
	}
}

func TestRunSyncJSONRemainsMachineReadable(t *testing.T) {
	installFakeIngestTools(t, `{"id":"PLtest","title":"Empty List","entries":[]}`)

	outputRoot := filepath.Join(t.TempDir(), "data")
	configPath := filepath.Join(t.TempDir(), "config", "playlists.json")

	output := captureStdout(t, func() {
		err := Run([]string{
			"sync",
			"--playlist-url", "https://www.youtube.com/playlist?list=PLtest",
			"--output-root", outputRoot,
			"--config", configPath,
			"--skip-transcripts",
			"--json",
		})
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
	})

	if strings.Contains(output, "sync: ingesting") {
		t.Fatalf("expected no human status lines in JSON mode, got:\n%s", output)
	}
	var parsed syncResult
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v\noutput:\n%s", err, output)
	}
	if parsed.Playlists != 1 {
		t.Fatalf("expected 1 playlist in result, got %d", parsed.Playlists)
	}
	if len(parsed.Reports) != 1 || parsed.Reports[0].PlaylistID != "PLtest" {
		t.Fatalf("unexpected reports: %+v", parsed.Reports)
	}
}

func TestRunSyncFetchlist(t *testing.T) {
	flat := `{"id":"PLtest","title":"Demo List","entries":[{"id":"vid1","title":"Video 1","url":"https://www.youtube.com/watch?v=vid1"}]}`
	installFakeIngestTools(t, flat)

	tmp := t.TempDir()
	outputRoot := filepath.Join(tmp, "data")
	configPath := filepath.Join(tmp, "config", "playlists.json")
	fetchlist := filepath.Join(tmp, "fetchlist.txt")
	writeFileOrFatal(t, fetchlist, "# tracked elsewhere\nDemo|https://www.youtube.com/playlist?list=PLtest\n")

	if err := Run([]string{
		"sync",
		"--fetchlist", fetchlist,
		"--output-root", outputRoot,
		"--config", configPath,
		"--skip-transcripts",
		"--progress=false",
	}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
}

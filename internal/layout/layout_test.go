package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_RequiresPlaylistID(t *testing.T) {
	if _, err := New("data", "  "); err == nil {
		t.Fatalf("expected error for empty playlist id")
	}
}

func TestPaths_AreDeterministic(t *testing.T) {
	l, err := New("data", "PL123")
	if err != nil {
		t.Fatal(err)
	}

	if got := l.AudioPath("abc"); got != filepath.Join("data", "PL123", "audio", "abc.mp3") {
		t.Fatalf("unexpected audio path: %s", got)
	}
	if got := l.TranscriptPath("abc"); got != filepath.Join("data", "PL123", "transcripts", "abc.json") {
		t.Fatalf("unexpected transcript path: %s", got)
	}
	if got := l.MetadataPath("abc"); got != filepath.Join("data", "PL123", "metadata", "abc.json") {
		t.Fatalf("unexpected metadata path: %s", got)
	}
	if got := l.ManifestPath(); got != filepath.Join("data", "PL123", "manifest.json") {
		t.Fatalf("unexpected manifest path: %s", got)
	}
}

func TestSanitizeID_ReplacesUnsafeCharacters(t *testing.T) {
	if got := SanitizeID("PL abc/../def"); got != "PL_abc_.._def" {
		t.Fatalf("unexpected sanitized id: %s", got)
	}
	if got := SanitizeID(""); got != "" {
		t.Fatalf("expected empty result, got %s", got)
	}
}

func TestEnsureDirs_CreatesTree(t *testing.T) {
	tmp := t.TempDir()
	l, err := New(tmp, "PLxyz")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	// idempotent
	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("ensure dirs twice: %v", err)
	}

	for _, dir := range []string{l.AudioDir(), l.TranscriptsDir(), l.MetadataDir(), l.LogsDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}

func TestRel_RelativeToPlaylistDir(t *testing.T) {
	l, err := New("data", "PL123")
	if err != nil {
		t.Fatal(err)
	}
	if got := l.Rel(l.AudioPath("abc")); got != "audio/abc.mp3" {
		t.Fatalf("unexpected relative path: %s", got)
	}
	if got := l.Rel(""); got != "" {
		t.Fatalf("expected empty for empty input, got %q", got)
	}
}

package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"yt-ingest/internal/model"
	"yt-ingest/internal/registry"
	"yt-ingest/internal/store"
)

// installFakeIngestTools puts fake yt-dlp and ffmpeg binaries on PATH. The
// fake yt-dlp serves flat-playlist JSON from YTI_FAKE_FLAT, synthesizes
// per-video info JSON, and touches the requested mp3 on audio downloads.
func installFakeIngestTools(t *testing.T, flatJSON string) {
	t.Helper()

	tmp := t.TempDir()
	fakeBin := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(fakeBin, 0o755); err != nil {
		t.Fatal(err)
	}

	flatPath := filepath.Join(tmp, "flat.json")
	if err := os.WriteFile(flatPath, []byte(flatJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	ytScript := `#!/usr/bin/env bash
set -euo pipefail
mode=""
outdir=""
url=""
prev=""
for a in "$@"; do
  case "$a" in
    --flat-playlist) mode=flat ;;
    --skip-download) mode=info ;;
    -x) mode=audio ;;
    http*) url="$a" ;;
  esac
  if [ "$prev" = "-P" ]; then outdir="$a"; fi
  prev="$a"
done
vid="${url##*v=}"
case "$mode" in
  flat)
    cat "$YTI_FAKE_FLAT"
    ;;
  info)
    printf '{"id":"%s","title":"Video %s","channel":"Chan","duration":10.0,"webpage_url":"%s"}' "$vid" "$vid" "$url"
    ;;
  audio)
    echo "[download] 100% of 1.00MiB at 2.00MiB/s"
    touch "$outdir/$vid.mp3"
    ;;
  *)
    echo "unexpected invocation: $*" >&2
    exit 2
    ;;
esac
`
	ffmpegScript := `#!/usr/bin/env bash
exit 0
`
	if err := os.WriteFile(filepath.Join(fakeBin, "yt-dlp"), []byte(ytScript), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fakeBin, "ffmpeg"), []byte(ffmpegScript), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PATH", fakeBin+":"+os.Getenv("PATH"))
	t.Setenv("YTI_FAKE_FLAT", flatPath)
}

func writeFileOrFatal(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()
	defer r.Close()

	fn()

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestHarnessPlaylistLifecycle(t *testing.T) {
	flat := `{"id":"PLtest","title":"Demo List","entries":[{"id":"vid1","title":"Video 1","url":"https://www.youtube.com/watch?v=vid1"}]}`
	installFakeIngestTools(t, flat)

	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config", "playlists.json")
	outputRoot := filepath.Join(tmp, "data")

	if err := Run([]string{
		"add",
		"--name", "demo",
		"--playlist-url", "https://www.youtube.com/playlist?list=PLtest",
		"--config", configPath,
	}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	reg, err := registry.LoadRegistry(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Playlists) != 1 {
		t.Fatalf("expected 1 playlist, got %d", len(reg.Playlists))
	}
	if reg.Playlists[0].Name != "demo" {
		t.Fatalf("expected playlist name demo, got %q", reg.Playlists[0].Name)
	}

	if err := Run([]string{
		"sync",
		"--playlist", "demo",
		"--config", configPath,
		"--output-root", outputRoot,
		"--skip-transcripts",
		"--progress=false",
	}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	var mf model.Manifest
	if err := store.ReadJSON(filepath.Join(outputRoot, "PLtest", "manifest.json"), &mf); err != nil {
		t.Fatal(err)
	}
	if mf.Total != 1 || mf.Succeeded != 1 {
		t.Fatalf("unexpected manifest totals: total=%d succeeded=%d", mf.Total, mf.Succeeded)
	}
	if _, err := os.Stat(filepath.Join(outputRoot, "PLtest", "audio", "vid1.mp3")); err != nil {
		t.Fatalf("expected audio artifact: %v", err)
	}

	if err := Run([]string{
		"status",
		"--playlist", "demo",
		"--config", configPath,
	}); err != nil {
		t.Fatalf("status failed: %v", err)
	}

	if err := Run([]string{
		"remove",
		"--name", "demo",
		"--config", configPath,
		"--yes",
	}); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	reg, err = registry.LoadRegistry(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Playlists) != 0 {
		t.Fatalf("expected no playlists after remove, got %d", len(reg.Playlists))
	}
}

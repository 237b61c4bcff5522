package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yt-ingest/internal/model"
)

// installFakeTools puts fake yt-dlp and ffmpeg binaries on PATH. The fake
// yt-dlp serves flat-playlist JSON from YTI_FAKE_FLAT, synthesizes per-video
// info JSON, and records every audio invocation in YTI_FAKE_CALLS. Videos
// named failvid fail their download and badvid their metadata probe.
func installFakeTools(t *testing.T, flatJSON string) (callsPath string) {
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
	callsPath = filepath.Join(tmp, "calls.log")

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
    if [ "$vid" = "badvid" ]; then
      echo "ERROR: Video unavailable" >&2
      exit 1
    fi
    printf '{"id":"%s","title":"Tïtle %s","channel":"Chan","duration":10.0,"view_count":42,"webpage_url":"%s"}' "$vid" "$vid" "$url"
    ;;
  audio)
    echo "$vid" >> "$YTI_FAKE_CALLS"
    if [ "$vid" = "failvid" ]; then
      echo "ERROR: unable to download video data: timed out" >&2
      exit 1
    fi
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
	t.Setenv("YTI_FAKE_CALLS", callsPath)
	return callsPath
}

func countCalls(t *testing.T, callsPath string) int {
	t.Helper()
	data, err := os.ReadFile(callsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatal(err)
	}
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

type fakeTranscripts struct {
	calls []string
	err   error
}

func (f *fakeTranscripts) Fetch(_ context.Context, videoID string, _ []string) (model.TranscriptBundle, error) {
	f.calls = append(f.calls, videoID)
	if f.err != nil {
		return model.TranscriptBundle{}, f.err
	}
	return model.TranscriptBundle{
		VideoID:  videoID,
		Language: "en",
		Tier:     model.TierManual,
		Segments: []model.Segment{{Start: 0, Duration: 1.5, Text: "hello"}},
	}, nil
}

func flatPlaylistJSON(title string, ids ...string) string {
	out := `{"id":"PLtest","title":"` + title + `","entries":[`
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += `{"id":"` + id + `","title":"Entry ` + id + `","url":"https://www.youtube.com/watch?v=` + id + `","duration":10.0,"channel":"Chan"}`
	}
	return out + `]}`
}

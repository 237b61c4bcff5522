package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJSON_EscapesNonASCII(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "meta.json")

	payload := map[string]string{
		"title":   "日本語のタイトル — ützëñ",
		"channel": "café 🎵",
	}
	if err := WriteJSON(path, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, b := range data {
		if b > 0x7F {
			t.Fatalf("found raw non-ASCII byte 0x%02x in output", b)
		}
	}

	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if out["title"] != payload["title"] || out["channel"] != payload["channel"] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestWriteJSON_SupplementaryPlaneSurrogates(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "emoji.json")

	if err := WriteJSON(path, map[string]string{"v": "🎵"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), `\ud83c\udfb5`) {
		t.Fatalf("expected surrogate pair escape, got %s", data)
	}
	for _, b := range data {
		if b > 0x7f {
			t.Fatalf("expected ASCII-only output, found byte 0x%x in %s", b, data)
		}
	}
}

func TestWriteBytes_CreatesParentAndOverwrites(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "dir", "file.txt")

	if err := WriteBytes(path, []byte("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteBytes(path, []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwritten content, got %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".yti-tmp-") {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}
}

func TestReadJSON_MissingFile(t *testing.T) {
	var v map[string]string
	if err := ReadJSON(filepath.Join(t.TempDir(), "absent.json"), &v); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

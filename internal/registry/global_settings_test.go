package registry

import (
	"path/filepath"
	"testing"
)

func TestReadGlobalSettingsDefaultsWhenMissing(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "playlists.json")

	g, err := ReadGlobalSettings(cfg)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if g.OutputRoot != DefaultOutputRoot {
		t.Fatalf("output root = %q", g.OutputRoot)
	}
	if g.AudioQuality != DefaultAudioQuality {
		t.Fatalf("audio quality = %q", g.AudioQuality)
	}
	if len(g.Languages) != 1 || g.Languages[0] != "en" {
		t.Fatalf("languages = %v", g.Languages)
	}
}

func TestUpdateGlobalSettingsRoundTrip(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "playlists.json")

	_, err := UpdateGlobalSettings(UpdateGlobalSettingsOptions{
		ConfigPath: cfg,
		Global: GlobalSettings{
			Languages:         []string{"de", "en"},
			OutputRoot:        "archive",
			DownloadLimitMBps: 2.5,
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	g, err := GetGlobalSettings(cfg)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if g.OutputRoot != "archive" || g.DownloadLimitMBps != 2.5 {
		t.Fatalf("unexpected settings: %+v", g)
	}
	if len(g.Languages) != 2 || g.Languages[0] != "de" {
		t.Fatalf("languages = %v", g.Languages)
	}
	// Unset fields fall back to defaults on normalize.
	if g.AudioQuality != DefaultAudioQuality || g.Fragments != DefaultFragments {
		t.Fatalf("defaults not applied: %+v", g)
	}
}

func TestResolveEffectiveSettingsPrecedence(t *testing.T) {
	global := GlobalSettings{
		Languages:    []string{"en"},
		OutputRoot:   "archive",
		AudioQuality: "128K",
		Fragments:    8,
	}
	playlist := Playlist{
		Name:        "demo",
		PlaylistURL: "https://www.youtube.com/playlist?list=PLx",
		Languages:   []string{"ja", "en"},
		OutputRoot:  "special",
	}

	eff := ResolveEffectiveSettings(playlist, global)
	if eff.OutputRoot != "special" {
		t.Fatalf("playlist output root should win: %q", eff.OutputRoot)
	}
	if len(eff.Languages) != 2 || eff.Languages[0] != "ja" {
		t.Fatalf("playlist languages should win: %v", eff.Languages)
	}
	if eff.AudioQuality != "128K" || eff.Fragments != 8 {
		t.Fatalf("global fallbacks not applied: %+v", eff)
	}

	eff = ResolveEffectiveSettings(Playlist{Name: "bare", PlaylistURL: "u"}, GlobalSettings{})
	if eff.OutputRoot != DefaultOutputRoot || eff.AudioQuality != DefaultAudioQuality {
		t.Fatalf("built-in defaults not applied: %+v", eff)
	}
}

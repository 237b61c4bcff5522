package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"yt-ingest/internal/registry"
)

func TestManageBoolFieldSupportsYN(t *testing.T) {
	m := manageModel{
		mode: manageModeForm,
		form: newManageForm(nil, 80),
	}
	if m.form == nil {
		t.Fatal("expected form")
	}
	m.form.Index = findFieldIndexByKey(m.form, "skip_audio")
	if m.form.Index < 0 {
		t.Fatal("skip_audio field not found")
	}

	model, _ := m.updateForm(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m2 := model.(manageModel)
	if got := m2.form.currentField().Value; got != "y" {
		t.Fatalf("expected skip_audio value y after 'y', got %q", got)
	}

	model, _ = m2.updateForm(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m3 := model.(manageModel)
	if got := m3.form.currentField().Value; got != "n" {
		t.Fatalf("expected skip_audio value n after 'n', got %q", got)
	}
}

func TestManageBoolFieldSupportsArrowAndSpace(t *testing.T) {
	m := manageModel{
		mode: manageModeForm,
		form: newManageForm(nil, 80),
	}
	if m.form == nil {
		t.Fatal("expected form")
	}
	m.form.Index = findFieldIndexByKey(m.form, "active")
	if m.form.Index < 0 {
		t.Fatal("active field not found")
	}

	model, _ := m.updateForm(tea.KeyMsg{Type: tea.KeyLeft})
	m2 := model.(manageModel)
	if got := m2.form.currentField().Value; got != "n" {
		t.Fatalf("expected active value n after left, got %q", got)
	}

	model, _ = m2.updateForm(tea.KeyMsg{Type: tea.KeyRight})
	m3 := model.(manageModel)
	if got := m3.form.currentField().Value; got != "y" {
		t.Fatalf("expected active value y after right, got %q", got)
	}

	model, _ = m3.updateForm(tea.KeyMsg{Type: tea.KeySpace})
	m4 := model.(manageModel)
	if got := m4.form.currentField().Value; got != "n" {
		t.Fatalf("expected active value n after space, got %q", got)
	}
}

func TestManageBrowseSyncActiveSetsLaunchingStatus(t *testing.T) {
	m := manageModel{
		mode:   manageModeBrowse,
		cursor: 1, // len(playlists)=0 => row 0 is [+] New Playlist, row 1 is first Action.
	}

	model, _ := m.updateBrowse(tea.KeyMsg{Type: tea.KeyEnter})
	m2 := model.(manageModel)
	if !m2.launchSyncActive {
		t.Fatal("expected launchSyncActive=true")
	}
	if m2.statusMessage == "" {
		t.Fatal("expected non-empty status message")
	}
}

func TestManageGlobalFormRoundTrip(t *testing.T) {
	m := manageModel{
		mode:   manageModeBrowse,
		cursor: 2, // second Action row: Global Settings.
		global: registry.GlobalSettings{
			Languages:    []string{"en"},
			OutputRoot:   registry.DefaultOutputRoot,
			AudioQuality: registry.DefaultAudioQuality,
			Fragments:    registry.DefaultFragments,
		},
	}

	model, _ := m.updateBrowse(tea.KeyMsg{Type: tea.KeyEnter})
	m2 := model.(manageModel)
	if m2.form == nil || m2.form.Kind != manageFormKindGlobal {
		t.Fatal("expected global settings form")
	}

	global, err := m2.form.toGlobalSettings()
	if err != nil {
		t.Fatalf("toGlobalSettings failed: %v", err)
	}
	if len(global.Languages) == 0 {
		t.Fatal("expected default languages in global form")
	}
	if global.Fragments <= 0 {
		t.Fatalf("expected positive fragments, got %d", global.Fragments)
	}
}

func findFieldIndexByKey(f *manageForm, key string) int {
	if f == nil {
		return -1
	}
	for i, field := range f.Fields {
		if field.Key == key {
			return i
		}
	}
	return -1
}

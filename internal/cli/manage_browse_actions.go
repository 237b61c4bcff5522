package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"yt-ingest/internal/registry"
)

const (
	manageActionSyncActive = iota
	manageActionGlobalSettings
)

var manageActions = []string{
	"Sync Active Playlists",
	"Global Settings",
}

func (m manageModel) renderActionsPanel(width int) string {
	lines := make([]string, 0, len(manageActions)+2)
	lines = append(lines, "Actions")
	lines = append(lines, "")
	for i, action := range manageActions {
		row := "[>] " + action
		if m.isActionCursor() && m.selectedActionIndex() == i {
			row = manageSelStyle.Width(maxInt(width-4, 6)).Render(truncateRunes(row, maxInt(width-6, 10)))
			lines = append(lines, row)
			continue
		}
		lines = append(lines, truncateRunes(row, maxInt(width-6, 10)))
	}
	return managePanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func togglePlaylistActiveCmd(configPath string, playlist registry.Playlist) tea.Cmd {
	return func() tea.Msg {
		nextActive := !registry.IsActive(playlist)
		opts := registry.AddPlaylistOptions{
			ConfigPath:          configPath,
			Name:                playlist.Name,
			PlaylistURL:         playlist.PlaylistURL,
			Languages:           playlist.Languages,
			OutputRoot:          playlist.OutputRoot,
			MaxVideos:           playlist.MaxVideos,
			SkipAudio:           playlist.SkipAudio,
			SkipTranscripts:     playlist.SkipTranscripts,
			CookiesPath:         playlist.CookiesPath,
			Fragments:           playlist.Fragments,
			AudioQuality:        playlist.AudioQuality,
			Active:              boolPtr(nextActive),
			ReplaceIfNameExists: true,
		}
		res, err := registry.AddPlaylist(opts)
		if err != nil {
			return manageSaveMsg{err: err}
		}
		return manageSaveMsg{message: fmt.Sprintf("playlist %s active: %s", res.Playlist.Name, yesNo(registry.IsActive(res.Playlist)))}
	}
}

func (m manageModel) totalBrowseRows() int {
	return (len(m.playlists) + 1) + len(manageActions)
}

func (m manageModel) isActionCursor() bool {
	return m.cursor >= len(m.playlists)+1
}

func (m manageModel) selectedActionIndex() int {
	idx := m.cursor - (len(m.playlists) + 1)
	if idx < 0 {
		return 0
	}
	if idx >= len(manageActions) {
		return len(manageActions) - 1
	}
	return idx
}

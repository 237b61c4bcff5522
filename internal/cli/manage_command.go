package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"yt-ingest/internal/registry"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type manageMode int

const (
	manageModeBrowse manageMode = iota
	manageModeForm
	manageModeDeleteConfirm
)

type manageFormKind int

const (
	manageFormKindPlaylist manageFormKind = iota
	manageFormKindGlobal
)

type manageFieldKind int

const (
	manageFieldString manageFieldKind = iota
	manageFieldInt
	manageFieldBool
	manageFieldSelect
)

type manageFormField struct {
	Key      string
	Label    string
	Help     string
	Kind     manageFieldKind
	Value    string
	Options  []string
	Required bool
}

type manageForm struct {
	Kind         manageFormKind
	Title        string
	IsEdit       bool
	PlaylistName string
	Fields       []manageFormField
	Index        int
	Input        textinput.Model
	Error        string
	Saving       bool
}

type manageModel struct {
	configPath string
	playlists  []registry.Playlist
	global     registry.GlobalSettings
	cursor     int
	width      int
	height     int
	mode       manageMode
	form       *manageForm

	confirmDeleteName string
	statusMessage     string
	launchSyncActive  bool
	fatalErr          error
}

type manageLoadedMsg struct {
	playlists []registry.Playlist
	global    registry.GlobalSettings
	err       error
}

type manageSaveMsg struct {
	message string
	err     error
}

type manageDeleteMsg struct {
	message string
	err     error
}

var (
	manageTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	manageMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	manageErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	manageOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	managePanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	manageSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

func runManage(args []string) error {
	fs := flag.NewFlagSet("manage", flag.ContinueOnError)
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("manage requires an interactive terminal (TTY)")
	}

	m := manageModel{
		configPath: strings.TrimSpace(*config),
		mode:       manageModeBrowse,
		cursor:     0,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("manage requires an interactive terminal (TTY)")
		}
		return err
	}
	if fm, ok := finalModel.(manageModel); ok {
		if fm.launchSyncActive {
			fmt.Println("sync active playlists: launching sync...")
			return runSync([]string{
				"--all",
				"--active-only",
				"--config", fm.configPath,
			})
		}
		return fm.fatalErr
	}
	return nil
}

func (m manageModel) Init() tea.Cmd {
	return loadPlaylistsCmd(m.configPath)
}

func (m manageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form = resizeFormInput(m.form, m.width)
		}
		return m, nil
	case manageLoadedMsg:
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		m.global = msg.global
		if m.cursor < 0 {
			m.cursor = 0
		}
		total := m.totalBrowseRows()
		if total <= 0 {
			m.cursor = 0
		} else if m.cursor > total-1 {
			m.cursor = total - 1
		}
		return m, nil
	case manageSaveMsg:
		if msg.err != nil {
			if m.form != nil {
				m.form.Error = msg.err.Error()
				m.form.Saving = false
			}
			return m, nil
		}
		m.mode = manageModeBrowse
		m.form = nil
		m.statusMessage = msg.message
		return m, loadPlaylistsCmd(m.configPath)
	case manageDeleteMsg:
		if msg.err != nil {
			m.statusMessage = "error: " + msg.err.Error()
			m.mode = manageModeBrowse
			m.confirmDeleteName = ""
			return m, nil
		}
		m.mode = manageModeBrowse
		m.confirmDeleteName = ""
		m.statusMessage = msg.message
		return m, loadPlaylistsCmd(m.configPath)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.mode {
	case manageModeBrowse:
		return m.updateBrowse(keyMsg)
	case manageModeForm:
		return m.updateForm(keyMsg)
	case manageModeDeleteConfirm:
		return m.updateDeleteConfirm(keyMsg)
	default:
		return m, nil
	}
}

func (m manageModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	totalItems := m.totalBrowseRows()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < totalItems-1 {
			m.cursor++
		}
		return m, nil
	case " ", "space":
		if m.isActionCursor() {
			return m, nil
		}
		if m.cursor >= len(m.playlists) {
			return m, nil
		}
		selected := m.playlists[m.cursor]
		return m, togglePlaylistActiveCmd(m.configPath, selected)
	case "n":
		m.mode = manageModeForm
		m.form = newManageForm(nil, m.width)
		m.statusMessage = ""
		return m, nil
	case "r":
		return m, loadPlaylistsCmd(m.configPath)
	case "enter", "e":
		if m.isActionCursor() {
			switch m.selectedActionIndex() {
			case manageActionSyncActive:
				m.statusMessage = "sync active playlists: launching sync..."
				m.launchSyncActive = true
				return m, tea.Quit
			case manageActionGlobalSettings:
				m.mode = manageModeForm
				m.form = newManageGlobalForm(m.global, m.width)
				m.statusMessage = ""
				return m, nil
			}
			return m, nil
		}
		if m.cursor == len(m.playlists) {
			m.mode = manageModeForm
			m.form = newManageForm(nil, m.width)
			m.statusMessage = ""
			return m, nil
		}
		if len(m.playlists) == 0 {
			m.statusMessage = "no playlists configured yet"
			return m, nil
		}
		selected := m.playlists[m.cursor]
		m.mode = manageModeForm
		m.form = newManageForm(&selected, m.width)
		m.statusMessage = ""
		return m, nil
	case "d":
		if len(m.playlists) == 0 || m.cursor >= len(m.playlists) {
			m.statusMessage = "select a playlist to delete"
			return m, nil
		}
		m.mode = manageModeDeleteConfirm
		m.confirmDeleteName = m.playlists[m.cursor].Name
		return m, nil
	}
	return m, nil
}

func (m manageModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = manageModeBrowse
		return m, nil
	}
	if m.form.Saving {
		return m, nil
	}

	key := strings.ToLower(msg.String())
	switch key {
	case "ctrl+c", "esc":
		m.mode = manageModeBrowse
		m.form = nil
		m.statusMessage = "wizard cancelled"
		return m, nil
	case "up", "shift+tab":
		m.form.commitInput()
		if m.form.Index > 0 {
			m.form.Index--
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case "down", "tab":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 {
			m.form.Index++
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case " ", "space":
		kind := m.form.currentField().Kind
		if kind == manageFieldBool {
			m.form.toggleBoolField()
			return m, nil
		}
		if kind == manageFieldSelect {
			m.form.nextSelectOption()
			return m, nil
		}
	case "left", "h":
		kind := m.form.currentField().Kind
		if kind == manageFieldBool {
			m.form.toggleBoolField()
			return m, nil
		}
		if kind == manageFieldSelect {
			m.form.prevSelectOption()
			return m, nil
		}
	case "right", "l":
		kind := m.form.currentField().Kind
		if kind == manageFieldBool {
			m.form.toggleBoolField()
			return m, nil
		}
		if kind == manageFieldSelect {
			m.form.nextSelectOption()
			return m, nil
		}
	case "y":
		if m.form.currentField().Kind == manageFieldBool {
			m.form.setBoolField(true)
			return m, nil
		}
	case "n":
		if m.form.currentField().Kind == manageFieldBool {
			m.form.setBoolField(false)
			return m, nil
		}
	case "enter", "ctrl+s":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 && key != "ctrl+s" {
			m.form.Index++
			m.form.loadFieldIntoInput()
			return m, nil
		}
		if m.form.Kind == manageFormKindGlobal {
			global, err := m.form.toGlobalSettings()
			if err != nil {
				m.form.Error = err.Error()
				return m, nil
			}
			m.form.Error = ""
			m.form.Saving = true
			return m, saveGlobalSettingsCmd(m.configPath, global)
		}
		opts, err := m.form.toAddPlaylistOptions(m.configPath)
		if err != nil {
			m.form.Error = err.Error()
			return m, nil
		}
		m.form.Error = ""
		m.form.Saving = true
		return m, savePlaylistCmd(opts)
	}

	kind := m.form.currentField().Kind
	if kind == manageFieldBool || kind == manageFieldSelect {
		return m, nil
	}
	var cmd tea.Cmd
	m.form.Input, cmd = m.form.Input.Update(msg)
	m.form.Fields[m.form.Index].Value = m.form.Input.Value()
	return m, cmd
}

func (m manageModel) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "n":
		m.mode = manageModeBrowse
		m.confirmDeleteName = ""
		m.statusMessage = "delete cancelled"
		return m, nil
	case "y", "enter":
		name := strings.TrimSpace(m.confirmDeleteName)
		if name == "" {
			m.mode = manageModeBrowse
			m.statusMessage = "delete cancelled"
			return m, nil
		}
		return m, deletePlaylistCmd(m.configPath, name)
	}
	return m, nil
}

func (m manageModel) View() string {
	if m.fatalErr != nil {
		return manageErrorStyle.Render("fatal: " + m.fatalErr.Error())
	}
	if m.width <= 0 {
		m.width = 100
	}
	if m.height <= 0 {
		m.height = 30
	}

	switch m.mode {
	case manageModeForm:
		return m.viewForm()
	case manageModeDeleteConfirm:
		return m.viewDeleteConfirm()
	default:
		return m.viewBrowse()
	}
}

func (m manageModel) viewBrowse() string {
	header := manageTitleStyle.Render("yt-ingest manage") + "\n" +
		manageMutedStyle.Render("up/down: move | space: toggle active | enter/e: edit/run | n: new | d: delete | r: refresh | q: quit")

	if m.width < 90 {
		list := m.renderListPanel(m.width)
		actions := m.renderActionsPanel(m.width)
		details := m.renderDetailsPanel(m.width)
		body := lipgloss.JoinVertical(lipgloss.Left, list, actions, details)
		status := m.renderStatusLine(m.width)
		return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
	}

	leftW := clampInt(m.width/2, 34, 56)
	rightW := m.width - leftW - 1
	list := m.renderListPanel(leftW)
	actions := m.renderActionsPanel(leftW)
	left := lipgloss.JoinVertical(lipgloss.Left, list, actions)
	right := m.renderDetailsPanel(rightW)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	status := m.renderStatusLine(m.width)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m manageModel) renderListPanel(width int) string {
	total := len(m.playlists) + 1
	maxRows := clampInt(m.height-14, 4, 18)
	listCursor := m.cursor
	if listCursor >= total {
		listCursor = total - 1
	}
	start, end := listWindow(total, listCursor, maxRows)

	lines := make([]string, 0, maxRows+3)
	if len(m.playlists) == 0 {
		lines = append(lines, manageMutedStyle.Render("No playlists yet."))
		lines = append(lines, manageMutedStyle.Render("Select '[+] New Playlist' and press Enter."))
	}
	if start > 0 {
		lines = append(lines, manageMutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		line := ""
		if i == len(m.playlists) {
			line = "[+] New Playlist (wizard)"
		} else {
			p := m.playlists[i]
			activeMark := " "
			if registry.IsActive(p) {
				activeMark = "x"
			}
			line = fmt.Sprintf("[%s] %s  %s", activeMark, p.Name, p.PlaylistURL)
		}
		line = truncateRunes(line, maxInt(width-6, 10))
		if i == m.cursor {
			line = manageSelStyle.Width(maxInt(width-4, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	if end < total {
		lines = append(lines, manageMutedStyle.Render("..."))
	}

	content := strings.Join(lines, "\n")
	return managePanelStyle.Width(width).Render(content)
}

func (m manageModel) renderDetailsPanel(width int) string {
	lines := []string{}
	if m.isActionCursor() {
		lines = append(lines, "Action")
		lines = append(lines, "")
		switch m.selectedActionIndex() {
		case manageActionSyncActive:
			lines = append(lines, "Sync Active Playlists")
			lines = append(lines, "")
			lines = append(lines, "Runs sync for all playlists with active=yes.")
			lines = append(lines, "Press Enter to launch sync view.")
		case manageActionGlobalSettings:
			lines = append(lines, "Global Settings")
			lines = append(lines, kv("languages", strings.Join(m.global.Languages, ",")))
			lines = append(lines, kv("output_root", m.global.OutputRoot))
			lines = append(lines, kv("audio_quality", m.global.AudioQuality))
			lines = append(lines, kv("fragments", strconv.Itoa(m.global.Fragments)))
			lines = append(lines, kv("download_limit_mb_s", formatFloat(m.global.DownloadLimitMBps)))
			lines = append(lines, "")
			lines = append(lines, "Press Enter to edit global defaults.")
		default:
			lines = append(lines, "Select an action.")
		}
	} else if m.cursor >= len(m.playlists) {
		lines = append(lines, "New Playlist Wizard")
		lines = append(lines, "")
		lines = append(lines, "Press Enter or n to track a playlist.")
		lines = append(lines, "The wizard guides URL, languages, and settings.")
	} else if len(m.playlists) > 0 {
		p := m.playlists[m.cursor]
		lines = append(lines, "Playlist Details")
		lines = append(lines, "")
		lines = append(lines, kv("name", p.Name))
		lines = append(lines, kv("url", p.PlaylistURL))
		lines = append(lines, kv("active", yesNo(registry.IsActive(p))))
		lines = append(lines, kv("languages", defaultIfEmpty(strings.Join(p.Languages, ","), "(global default)")))
		lines = append(lines, kv("output_root", defaultIfEmpty(p.OutputRoot, "(global default)")))
		lines = append(lines, kv("max_videos", formatMaxVideos(p.MaxVideos)))
		lines = append(lines, kv("skip_audio", yesNo(p.SkipAudio)))
		lines = append(lines, kv("skip_transcripts", yesNo(p.SkipTranscripts)))
		lines = append(lines, kv("audio_quality", defaultIfEmpty(p.AudioQuality, "(global default)")))
		lines = append(lines, kv("fragments", formatIntDefault(p.Fragments)))
		lines = append(lines, kv("cookies_file", yesNo(strings.TrimSpace(p.CookiesPath) != "")))
	} else {
		lines = append(lines, "No playlists configured")
		lines = append(lines, "")
		lines = append(lines, "Press n to start the playlist wizard.")
	}

	for i := range lines {
		lines[i] = wrapOrTrim(lines[i], maxInt(width-6, 12))
	}
	return managePanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m manageModel) renderStatusLine(width int) string {
	msg := strings.TrimSpace(m.statusMessage)
	if msg == "" {
		msg = "Tip: space toggles playlist active; go down to Actions to sync active playlists."
	}
	style := manageMutedStyle
	if strings.HasPrefix(strings.ToLower(msg), "error:") {
		style = manageErrorStyle
	} else if strings.HasPrefix(strings.ToLower(msg), "playlist ") || strings.HasPrefix(strings.ToLower(msg), "updated") {
		style = manageOKStyle
	}
	return style.Width(width).Render(truncateRunes(msg, maxInt(width-2, 10)))
}

func (m manageModel) viewForm() string {
	if m.form == nil {
		return ""
	}
	header := manageTitleStyle.Render(m.form.Title)
	hints := manageMutedStyle.Render("tab/shift+tab or up/down: move | left/right/space: toggle | y/n: set yes/no | enter: next/save | ctrl+s: save | esc: cancel")

	lines := make([]string, 0, len(m.form.Fields)+6)
	for i, f := range m.form.Fields {
		prefix := "  "
		if i == m.form.Index {
			prefix = "> "
		}
		display := strings.TrimSpace(f.Value)
		if f.Kind == manageFieldBool {
			v, _ := parseBool(display)
			display = yesNo(v)
		}
		if display == "" {
			display = manageMutedStyle.Render("(empty)")
		}
		if f.Kind == manageFieldSelect {
			display = "[" + display + "]"
		}
		line := fmt.Sprintf("%s%s: %s", prefix, f.Label, display)
		lines = append(lines, wrapOrTrim(line, maxInt(m.width-6, 20)))
	}

	curr := m.form.currentField()
	inputLabel := fmt.Sprintf("\n%s\n", curr.Label)
	inputHelp := ""
	if strings.TrimSpace(curr.Help) != "" {
		inputHelp = manageMutedStyle.Render(curr.Help) + "\n"
	}
	input := m.form.Input.View()
	status := ""
	if m.form.Saving {
		status = manageMutedStyle.Render("\nSaving...")
	}
	if strings.TrimSpace(m.form.Error) != "" {
		status = "\n" + manageErrorStyle.Render(m.form.Error)
	}

	panel := managePanelStyle.Width(maxInt(m.width, 40)).Render(strings.Join(lines, "\n") + inputLabel + inputHelp + input + status)
	return lipgloss.JoinVertical(lipgloss.Left, header, hints, panel)
}

func (m manageModel) viewDeleteConfirm() string {
	text := fmt.Sprintf(
		"Delete playlist '%s'?\n\nThis removes it from config only.\nIngested audio/transcripts remain on disk.\n\nPress y or Enter to confirm, n or Esc to cancel.",
		m.confirmDeleteName,
	)
	boxW := clampInt(m.width-8, 36, 80)
	boxH := clampInt(m.height-6, 9, 14)
	panel := managePanelStyle.Width(boxW).Height(boxH).Render(text)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

func loadPlaylistsCmd(configPath string) tea.Cmd {
	return func() tea.Msg {
		reg, err := registry.LoadRegistry(configPath)
		if err != nil {
			return manageLoadedMsg{err: err}
		}
		return manageLoadedMsg{playlists: reg.Playlists, global: reg.Global}
	}
}

func savePlaylistCmd(opts registry.AddPlaylistOptions) tea.Cmd {
	return func() tea.Msg {
		res, err := registry.AddPlaylist(opts)
		if err != nil {
			return manageSaveMsg{err: err}
		}
		if res.Created {
			return manageSaveMsg{message: "playlist added: " + res.Playlist.Name}
		}
		return manageSaveMsg{message: "playlist updated: " + res.Playlist.Name}
	}
}

func deletePlaylistCmd(configPath, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := registry.RemovePlaylist(registry.RemovePlaylistOptions{ConfigPath: configPath, Name: name})
		if err != nil {
			return manageDeleteMsg{err: err}
		}
		return manageDeleteMsg{message: "playlist removed: " + name}
	}
}

var manageQualityOptions = []string{"320K", "256K", registry.DefaultAudioQuality, "128K"}

func newManageForm(existing *registry.Playlist, width int) *manageForm {
	f := &manageForm{Kind: manageFormKindPlaylist}
	if existing == nil {
		f.Title = "New Playlist Wizard"
		f.IsEdit = false
		f.Fields = []manageFormField{
			{Key: "playlist_url", Label: "Playlist URL", Help: "Full playlist URL or bare playlist id", Kind: manageFieldString, Required: true},
			{Key: "name", Label: "Playlist Name", Help: "Optional; leave empty for auto-name", Kind: manageFieldString},
			{Key: "active", Label: "Active", Help: "Included in 'Sync Active Playlists'", Kind: manageFieldBool, Value: "y"},
			{Key: "languages", Label: "Languages", Help: "Comma-separated transcript preference; empty inherits global", Kind: manageFieldString},
			{Key: "audio_quality", Label: "Audio Quality", Help: "mp3 bitrate passed to yt-dlp", Kind: manageFieldSelect, Value: registry.DefaultAudioQuality, Options: manageQualityOptions},
			{Key: "max_videos", Label: "Max Videos", Help: "Per-sync entry cap; 0 means no limit", Kind: manageFieldInt, Value: "0"},
			{Key: "fragments", Label: "Fragments", Help: "How many chunks per download stream", Kind: manageFieldInt, Value: strconv.Itoa(registry.DefaultFragments)},
			{Key: "skip_audio", Label: "Skip Audio", Help: "Metadata/transcripts only for this playlist", Kind: manageFieldBool, Value: "n"},
			{Key: "skip_transcripts", Label: "Skip Transcripts", Help: "Audio/metadata only for this playlist", Kind: manageFieldBool, Value: "n"},
			{Key: "cookies_path", Label: "Cookies File Path", Help: "Optional cookies.txt path", Kind: manageFieldString},
			{Key: "output_root", Label: "Output Root", Help: "Optional override", Kind: manageFieldString},
		}
	} else {
		f.Title = "Edit Playlist: " + existing.Name
		f.IsEdit = true
		f.PlaylistName = existing.Name
		f.Fields = []manageFormField{
			{Key: "playlist_url", Label: "Playlist URL", Help: "Full playlist URL or bare playlist id", Kind: manageFieldString, Required: true, Value: existing.PlaylistURL},
			{Key: "active", Label: "Active", Help: "Included in 'Sync Active Playlists'", Kind: manageFieldBool, Value: boolToYN(registry.IsActive(*existing))},
			{Key: "languages", Label: "Languages", Help: "Comma-separated transcript preference; empty inherits global", Kind: manageFieldString, Value: strings.Join(existing.Languages, ",")},
			{Key: "audio_quality", Label: "Audio Quality", Help: "mp3 bitrate passed to yt-dlp", Kind: manageFieldSelect, Value: defaultIfEmpty(existing.AudioQuality, registry.DefaultAudioQuality), Options: manageQualityOptions},
			{Key: "max_videos", Label: "Max Videos", Help: "Per-sync entry cap; 0 means no limit", Kind: manageFieldInt, Value: strconv.Itoa(existing.MaxVideos)},
			{Key: "fragments", Label: "Fragments", Help: "How many chunks per download stream", Kind: manageFieldInt, Value: strconv.Itoa(maxInt(existing.Fragments, registry.DefaultFragments))},
			{Key: "skip_audio", Label: "Skip Audio", Help: "Metadata/transcripts only for this playlist", Kind: manageFieldBool, Value: boolToYN(existing.SkipAudio)},
			{Key: "skip_transcripts", Label: "Skip Transcripts", Help: "Audio/metadata only for this playlist", Kind: manageFieldBool, Value: boolToYN(existing.SkipTranscripts)},
			{Key: "cookies_path", Label: "Cookies File Path", Help: "Optional cookies.txt path", Kind: manageFieldString, Value: existing.CookiesPath},
			{Key: "output_root", Label: "Output Root", Help: "Optional override", Kind: manageFieldString, Value: existing.OutputRoot},
		}
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 1024
	input.Width = clampInt(width-8, 20, 120)
	f.Input = input
	f.loadFieldIntoInput()
	f.Input.Focus()
	return f
}

func (f *manageForm) currentField() manageFormField {
	if len(f.Fields) == 0 {
		return manageFormField{}
	}
	if f.Index < 0 {
		f.Index = 0
	}
	if f.Index >= len(f.Fields) {
		f.Index = len(f.Fields) - 1
	}
	return f.Fields[f.Index]
}

func (f *manageForm) commitInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Fields[f.Index].Value = strings.TrimSpace(f.Input.Value())
}

func (f *manageForm) loadFieldIntoInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Input.SetValue(f.Fields[f.Index].Value)
	f.Input.CursorEnd()
}

func (f *manageForm) toggleBoolField() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != manageFieldBool {
		return
	}
	v, ok := parseBool(curr.Value)
	if !ok {
		v = false
	}
	curr.Value = boolToYN(!v)
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *manageForm) setBoolField(v bool) {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != manageFieldBool {
		return
	}
	curr.Value = boolToYN(v)
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *manageForm) nextSelectOption() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != manageFieldSelect || len(curr.Options) == 0 {
		return
	}
	current := strings.TrimSpace(curr.Value)
	pos := 0
	for i, opt := range curr.Options {
		if strings.EqualFold(opt, current) {
			pos = i
			break
		}
	}
	pos = (pos + 1) % len(curr.Options)
	curr.Value = curr.Options[pos]
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *manageForm) prevSelectOption() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != manageFieldSelect || len(curr.Options) == 0 {
		return
	}
	current := strings.TrimSpace(curr.Value)
	pos := 0
	for i, opt := range curr.Options {
		if strings.EqualFold(opt, current) {
			pos = i
			break
		}
	}
	pos = (pos - 1 + len(curr.Options)) % len(curr.Options)
	curr.Value = curr.Options[pos]
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *manageForm) toAddPlaylistOptions(configPath string) (registry.AddPlaylistOptions, error) {
	if f == nil {
		return registry.AddPlaylistOptions{}, errors.New("internal form error")
	}
	vals := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		v := strings.TrimSpace(field.Value)
		if field.Required && v == "" {
			return registry.AddPlaylistOptions{}, fmt.Errorf("%s is required", strings.ToLower(field.Label))
		}
		switch field.Kind {
		case manageFieldInt:
			if v == "" {
				v = "0"
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return registry.AddPlaylistOptions{}, fmt.Errorf("%s must be an integer >= 0", strings.ToLower(field.Label))
			}
		case manageFieldBool:
			if _, ok := parseBool(v); !ok {
				return registry.AddPlaylistOptions{}, fmt.Errorf("%s must be y or n", strings.ToLower(field.Label))
			}
		case manageFieldSelect:
			if len(field.Options) == 0 {
				break
			}
			matched := false
			for _, opt := range field.Options {
				if strings.EqualFold(opt, v) {
					v = opt
					matched = true
					break
				}
			}
			if !matched {
				return registry.AddPlaylistOptions{}, fmt.Errorf("%s has invalid value", strings.ToLower(field.Label))
			}
		}
		vals[field.Key] = v
	}

	maxVideos, _ := strconv.Atoi(defaultIfEmpty(vals["max_videos"], "0"))
	fragments, _ := strconv.Atoi(defaultIfEmpty(vals["fragments"], "0"))
	active, _ := parseBool(defaultIfEmpty(vals["active"], "y"))
	skipAudio, _ := parseBool(defaultIfEmpty(vals["skip_audio"], "n"))
	skipTranscripts, _ := parseBool(defaultIfEmpty(vals["skip_transcripts"], "n"))

	name := strings.TrimSpace(vals["name"])
	replace := false
	if f.IsEdit {
		name = f.PlaylistName
		replace = true
	}

	return registry.AddPlaylistOptions{
		ConfigPath:          configPath,
		Name:                name,
		PlaylistURL:         strings.TrimSpace(vals["playlist_url"]),
		Languages:           splitLanguages(vals["languages"]),
		OutputRoot:          strings.TrimSpace(vals["output_root"]),
		MaxVideos:           maxVideos,
		SkipAudio:           skipAudio,
		SkipTranscripts:     skipTranscripts,
		CookiesPath:         strings.TrimSpace(vals["cookies_path"]),
		Fragments:           fragments,
		AudioQuality:        strings.TrimSpace(vals["audio_quality"]),
		Active:              boolPtr(active),
		ReplaceIfNameExists: replace,
	}, nil
}

// Package registry persists the set of tracked playlists plus global defaults
// in a single JSON config file, and resolves effective per-playlist settings.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"yt-ingest/internal/store"
)

const (
	DefaultConfigPath = "config/playlists.json"
	schemaVersion     = 1
)

var (
	ErrNoPlaylistsConfigured  = errors.New("no playlists configured")
	ErrPlaylistSelectRequired = errors.New("playlist selection required")
)

type Playlist struct {
	Name            string   `json:"name"`
	PlaylistURL     string   `json:"playlist_url"`
	Active          *bool    `json:"active,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	OutputRoot      string   `json:"output_root,omitempty"`
	MaxVideos       int      `json:"max_videos,omitempty"`
	SkipAudio       bool     `json:"skip_audio,omitempty"`
	SkipTranscripts bool     `json:"skip_transcripts,omitempty"`
	CookiesPath     string   `json:"cookies_path,omitempty"`
	Fragments       int      `json:"fragments,omitempty"`
	AudioQuality    string   `json:"audio_quality,omitempty"`
}

type Registry struct {
	SchemaVersion int            `json:"schema_version"`
	UpdatedAt     string         `json:"updated_at"`
	Global        GlobalSettings `json:"global,omitempty"`
	Playlists     []Playlist     `json:"playlists"`
}

type AddPlaylistOptions struct {
	ConfigPath          string
	Name                string
	PlaylistURL         string
	Languages           []string
	OutputRoot          string
	MaxVideos           int
	SkipAudio           bool
	SkipTranscripts     bool
	CookiesPath         string
	Fragments           int
	AudioQuality        string
	Active              *bool
	ReplaceIfNameExists bool
}

type AddPlaylistResult struct {
	Playlist Playlist
	Created  bool
}

type RemovePlaylistOptions struct {
	ConfigPath string
	Name       string
}

type RemovePlaylistResult struct {
	Playlist Playlist
	Removed  bool
}

type ListPlaylistsResult struct {
	ConfigPath string
	Playlists  []Playlist
}

func normalizeConfigPath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return DefaultConfigPath
	}
	return p
}

// EnsureRegistry loads the config file, creating it with defaults on first
// use. The second return reports whether the file was created.
func EnsureRegistry(configPath string) (Registry, bool, error) {
	path := normalizeConfigPath(configPath)
	reg, err := loadRegistry(path)
	if err == nil {
		return reg, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Registry{}, false, err
	}

	reg = Registry{
		SchemaVersion: schemaVersion,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		Global:        defaultGlobalSettings(),
		Playlists:     []Playlist{},
	}
	if err := saveRegistry(path, reg); err != nil {
		return Registry{}, false, err
	}
	return reg, true, nil
}

func AddPlaylist(opts AddPlaylistOptions) (AddPlaylistResult, error) {
	configPath := normalizeConfigPath(opts.ConfigPath)
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return AddPlaylistResult{}, err
	}

	playlistURL := strings.TrimSpace(opts.PlaylistURL)
	if playlistURL == "" {
		return AddPlaylistResult{}, fmt.Errorf("playlist URL is required")
	}
	if opts.MaxVideos < 0 {
		return AddPlaylistResult{}, fmt.Errorf("max videos must be >= 0")
	}
	if opts.Fragments < 0 {
		return AddPlaylistResult{}, fmt.Errorf("fragments must be >= 0")
	}
	for _, p := range reg.Playlists {
		if strings.EqualFold(strings.TrimSpace(p.PlaylistURL), playlistURL) && !strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(opts.Name)) {
			return AddPlaylistResult{}, fmt.Errorf("playlist URL already tracked by %q", p.Name)
		}
	}

	explicitName := canonicalName(opts.Name)
	name := explicitName
	if name == "" {
		name = suggestPlaylistName(playlistURL)
	}
	if explicitName == "" {
		name = ensureUniqueName(name, reg.Playlists, opts.ReplaceIfNameExists)
	}
	if name == "" {
		return AddPlaylistResult{}, fmt.Errorf("playlist name is required")
	}

	playlist := Playlist{
		Name:            name,
		PlaylistURL:     playlistURL,
		Active:          opts.Active,
		Languages:       cleanLanguages(opts.Languages),
		OutputRoot:      strings.TrimSpace(opts.OutputRoot),
		MaxVideos:       opts.MaxVideos,
		SkipAudio:       opts.SkipAudio,
		SkipTranscripts: opts.SkipTranscripts,
		CookiesPath:     strings.TrimSpace(opts.CookiesPath),
		Fragments:       opts.Fragments,
		AudioQuality:    strings.TrimSpace(opts.AudioQuality),
	}
	if playlist.Active == nil {
		playlist.Active = boolPtr(true)
	}

	created := true
	replaced := false
	for i := range reg.Playlists {
		if strings.EqualFold(reg.Playlists[i].Name, name) {
			if !opts.ReplaceIfNameExists {
				return AddPlaylistResult{}, fmt.Errorf("playlist %q already exists (use --replace)", name)
			}
			reg.Playlists[i] = playlist
			created = false
			replaced = true
			break
		}
	}
	if !replaced {
		reg.Playlists = append(reg.Playlists, playlist)
	}

	sort.Slice(reg.Playlists, func(i, j int) bool {
		return reg.Playlists[i].Name < reg.Playlists[j].Name
	})
	reg.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := saveRegistry(configPath, reg); err != nil {
		return AddPlaylistResult{}, err
	}

	return AddPlaylistResult{Playlist: playlist, Created: created}, nil
}

func RemovePlaylist(opts RemovePlaylistOptions) (RemovePlaylistResult, error) {
	configPath := normalizeConfigPath(opts.ConfigPath)
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return RemovePlaylistResult{}, err
	}

	name := canonicalName(opts.Name)
	if name == "" {
		return RemovePlaylistResult{}, fmt.Errorf("playlist name is required")
	}

	for i := range reg.Playlists {
		if strings.EqualFold(reg.Playlists[i].Name, name) {
			removed := reg.Playlists[i]
			reg.Playlists = append(reg.Playlists[:i], reg.Playlists[i+1:]...)
			reg.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			if err := saveRegistry(configPath, reg); err != nil {
				return RemovePlaylistResult{}, err
			}
			return RemovePlaylistResult{Playlist: removed, Removed: true}, nil
		}
	}

	return RemovePlaylistResult{}, fmt.Errorf("playlist %q not found", name)
}

func ListPlaylists(configPath string) (ListPlaylistsResult, error) {
	path := normalizeConfigPath(configPath)
	reg, _, err := EnsureRegistry(path)
	if err != nil {
		return ListPlaylistsResult{}, err
	}

	playlists := append([]Playlist(nil), reg.Playlists...)
	sort.Slice(playlists, func(i, j int) bool {
		return playlists[i].Name < playlists[j].Name
	})
	return ListPlaylistsResult{ConfigPath: path, Playlists: playlists}, nil
}

func LoadRegistry(configPath string) (Registry, error) {
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return Registry{}, err
	}
	return reg, nil
}

func FindPlaylistByName(configPath, name string) (Playlist, error) {
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return Playlist{}, err
	}
	target := canonicalName(name)
	if target == "" {
		return Playlist{}, fmt.Errorf("playlist name is required")
	}
	for _, p := range reg.Playlists {
		if strings.EqualFold(p.Name, target) {
			return p, nil
		}
	}
	return Playlist{}, fmt.Errorf("playlist %q not found", target)
}

// ResolveSelection picks playlists by comma-separated name list or all of
// them; with activeOnly, inactive entries are filtered out.
func ResolveSelection(configPath, names string, all, activeOnly bool) ([]Playlist, error) {
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return nil, err
	}
	if len(reg.Playlists) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPlaylistsConfigured, normalizeConfigPath(configPath))
	}

	if all {
		selected := make([]Playlist, 0, len(reg.Playlists))
		for _, p := range reg.Playlists {
			if activeOnly && !IsActive(p) {
				continue
			}
			selected = append(selected, p)
		}
		if len(selected) == 0 {
			return nil, fmt.Errorf("no active playlists selected")
		}
		sort.Slice(selected, func(i, j int) bool {
			return selected[i].Name < selected[j].Name
		})
		return selected, nil
	}

	wanted := splitAndClean(names)
	if len(wanted) == 0 {
		return nil, fmt.Errorf("%w (--playlist <name> or --all)", ErrPlaylistSelectRequired)
	}

	index := make(map[string]Playlist, len(reg.Playlists))
	for _, p := range reg.Playlists {
		index[strings.ToLower(strings.TrimSpace(p.Name))] = p
	}
	selected := make([]Playlist, 0, len(wanted))
	seen := make(map[string]bool)
	for _, n := range wanted {
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		p, ok := index[key]
		if !ok {
			return nil, fmt.Errorf("playlist %q not found", n)
		}
		if activeOnly && !IsActive(p) {
			continue
		}
		selected = append(selected, p)
		seen[key] = true
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no active playlists selected")
	}
	return selected, nil
}

func IsActive(p Playlist) bool {
	if p.Active == nil {
		return true
	}
	return *p.Active
}

func loadRegistry(path string) (Registry, error) {
	var reg Registry
	if err := store.ReadJSON(path, &reg); err != nil {
		return Registry{}, err
	}
	if reg.SchemaVersion == 0 {
		reg.SchemaVersion = schemaVersion
	}
	reg.Global = normalizeGlobalSettings(reg.Global)
	if reg.Playlists == nil {
		reg.Playlists = []Playlist{}
	}
	normalized := make([]Playlist, 0, len(reg.Playlists))
	for _, p := range reg.Playlists {
		p.Name = canonicalName(p.Name)
		p.PlaylistURL = strings.TrimSpace(p.PlaylistURL)
		p.OutputRoot = strings.TrimSpace(p.OutputRoot)
		p.CookiesPath = strings.TrimSpace(p.CookiesPath)
		p.AudioQuality = strings.TrimSpace(p.AudioQuality)
		p.Languages = cleanLanguages(p.Languages)
		if p.Active == nil {
			p.Active = boolPtr(true)
		}
		if p.MaxVideos < 0 {
			p.MaxVideos = 0
		}
		if p.Fragments < 0 {
			p.Fragments = 0
		}
		if p.Name == "" || p.PlaylistURL == "" {
			continue
		}
		normalized = append(normalized, p)
	}
	reg.Playlists = normalized
	return reg, nil
}

func saveRegistry(path string, reg Registry) error {
	reg.SchemaVersion = schemaVersion
	if strings.TrimSpace(reg.UpdatedAt) == "" {
		reg.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	reg.Global = normalizeGlobalSettings(reg.Global)
	if reg.Playlists == nil {
		reg.Playlists = []Playlist{}
	}
	if err := store.Mkdir(filepath.Dir(path)); err != nil {
		return err
	}
	return store.WriteJSON(path, reg)
}

func splitAndClean(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := canonicalName(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func cleanLanguages(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, l := range raw {
		v := strings.TrimSpace(l)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func boolPtr(v bool) *bool {
	b := v
	return &b
}

func suggestPlaylistName(playlistURL string) string {
	u := strings.TrimSpace(playlistURL)
	if u == "" {
		return "playlist"
	}
	if idx := strings.Index(u, "list="); idx >= 0 {
		v := u[idx+len("list="):]
		if cut := strings.Index(v, "&"); cut >= 0 {
			v = v[:cut]
		}
		if name := canonicalName(v); name != "" {
			return name
		}
	}
	base := strings.TrimSpace(filepath.Base(strings.TrimRight(u, "/")))
	if name := canonicalName(base); name != "" {
		return name
	}
	return "playlist"
}

func canonicalName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	var b strings.Builder
	prevDash := false
	for _, r := range s {
		isAlphaNum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlphaNum {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteRune('-')
			prevDash = true
		}
	}
	clean := strings.Trim(b.String(), "-")
	return clean
}

func ensureUniqueName(base string, existing []Playlist, allowExisting bool) string {
	name := canonicalName(base)
	if name == "" {
		return ""
	}
	if allowExisting {
		return name
	}
	set := make(map[string]bool, len(existing))
	for _, p := range existing {
		set[strings.ToLower(strings.TrimSpace(p.Name))] = true
	}
	if !set[name] {
		return name
	}
	for i := 2; i < 10000; i++ {
		candidate := fmt.Sprintf("%s-%d", name, i)
		if !set[candidate] {
			return candidate
		}
	}
	return ""
}

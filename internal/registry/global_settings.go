package registry

import (
	"errors"
	"os"
	"strings"
	"time"
)

type GlobalSettings struct {
	Languages         []string `json:"languages,omitempty"`
	OutputRoot        string   `json:"output_root,omitempty"`
	AudioQuality      string   `json:"audio_quality,omitempty"`
	Fragments         int      `json:"fragments,omitempty"`
	DownloadLimitMBps float64  `json:"download_limit_mb_s,omitempty"`
}

// EffectiveSettings is the merged playlist + global + built-in defaults view
// one ingest run actually receives.
type EffectiveSettings struct {
	Languages         []string
	OutputRoot        string
	AudioQuality      string
	Fragments         int
	DownloadLimitMBps float64
}

type UpdateGlobalSettingsOptions struct {
	ConfigPath string
	Global     GlobalSettings
}

type UpdateGlobalSettingsResult struct {
	ConfigPath string         `json:"config_path"`
	Global     GlobalSettings `json:"global"`
}

func defaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		Languages:         append([]string(nil), DefaultLanguages...),
		OutputRoot:        DefaultOutputRoot,
		AudioQuality:      DefaultAudioQuality,
		Fragments:         DefaultFragments,
		DownloadLimitMBps: DefaultDownloadLimitMBps,
	}
}

func normalizeGlobalSettings(raw GlobalSettings) GlobalSettings {
	norm := raw
	norm.Languages = cleanLanguages(norm.Languages)
	if len(norm.Languages) == 0 {
		norm.Languages = append([]string(nil), DefaultLanguages...)
	}
	norm.OutputRoot = strings.TrimSpace(norm.OutputRoot)
	if norm.OutputRoot == "" {
		norm.OutputRoot = DefaultOutputRoot
	}
	norm.AudioQuality = strings.TrimSpace(norm.AudioQuality)
	if norm.AudioQuality == "" {
		norm.AudioQuality = DefaultAudioQuality
	}
	if norm.Fragments <= 0 {
		norm.Fragments = DefaultFragments
	}
	if norm.DownloadLimitMBps < 0 {
		norm.DownloadLimitMBps = DefaultDownloadLimitMBps
	}
	return norm
}

// ReadGlobalSettings never creates the config file; a missing file yields the
// built-in defaults.
func ReadGlobalSettings(configPath string) (GlobalSettings, error) {
	path := normalizeConfigPath(configPath)
	reg, err := loadRegistry(path)
	if err == nil {
		return reg.Global, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return defaultGlobalSettings(), nil
	}
	return GlobalSettings{}, err
}

func GetGlobalSettings(configPath string) (GlobalSettings, error) {
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return GlobalSettings{}, err
	}
	return reg.Global, nil
}

func UpdateGlobalSettings(opts UpdateGlobalSettingsOptions) (UpdateGlobalSettingsResult, error) {
	configPath := normalizeConfigPath(opts.ConfigPath)
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return UpdateGlobalSettingsResult{}, err
	}
	reg.Global = normalizeGlobalSettings(opts.Global)
	reg.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := saveRegistry(configPath, reg); err != nil {
		return UpdateGlobalSettingsResult{}, err
	}
	return UpdateGlobalSettingsResult{ConfigPath: configPath, Global: reg.Global}, nil
}

// ResolveEffectiveSettings merges in precedence order: playlist-specific
// fields, then global settings, then built-in defaults.
func ResolveEffectiveSettings(p Playlist, global GlobalSettings) EffectiveSettings {
	g := normalizeGlobalSettings(global)

	languages := cleanLanguages(p.Languages)
	if len(languages) == 0 {
		languages = g.Languages
	}
	outputRoot := strings.TrimSpace(p.OutputRoot)
	if outputRoot == "" {
		outputRoot = g.OutputRoot
	}
	audioQuality := strings.TrimSpace(p.AudioQuality)
	if audioQuality == "" {
		audioQuality = g.AudioQuality
	}
	fragments := p.Fragments
	if fragments <= 0 {
		fragments = g.Fragments
	}

	return EffectiveSettings{
		Languages:         languages,
		OutputRoot:        outputRoot,
		AudioQuality:      audioQuality,
		Fragments:         fragments,
		DownloadLimitMBps: g.DownloadLimitMBps,
	}
}

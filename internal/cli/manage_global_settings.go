package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"yt-ingest/internal/registry"
)

func newManageGlobalForm(global registry.GlobalSettings, width int) *manageForm {
	f := &manageForm{
		Kind:  manageFormKindGlobal,
		Title: "Global Settings",
		Fields: []manageFormField{
			{Key: "languages", Label: "Languages", Help: "Comma-separated transcript language preference", Kind: manageFieldString, Value: strings.Join(global.Languages, ", ")},
			{Key: "output_root", Label: "Output Root", Help: "Default directory for playlist bundles", Kind: manageFieldString, Value: global.OutputRoot},
			{Key: "audio_quality", Label: "Audio Quality", Help: "mp3 bitrate passed to yt-dlp", Kind: manageFieldSelect, Value: defaultIfEmpty(global.AudioQuality, registry.DefaultAudioQuality), Options: manageQualityOptions},
			{Key: "fragments", Label: "Fragments", Help: "Default yt-dlp fragment concurrency", Kind: manageFieldInt, Value: strconv.Itoa(global.Fragments)},
			{Key: "download_limit_mb_s", Label: "Download Limit MB/s", Help: "0 disables the global rate limit", Kind: manageFieldString, Value: formatFloat(global.DownloadLimitMBps)},
		},
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2048
	input.Width = clampInt(width-8, 20, 120)
	f.Input = input
	f.loadFieldIntoInput()
	f.Input.Focus()
	return f
}

func (f *manageForm) toGlobalSettings() (registry.GlobalSettings, error) {
	if f == nil {
		return registry.GlobalSettings{}, fmt.Errorf("internal form error")
	}
	vals := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		v := strings.TrimSpace(field.Value)
		switch field.Kind {
		case manageFieldInt:
			if v == "" {
				v = "0"
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return registry.GlobalSettings{}, fmt.Errorf("%s must be an integer >= 0", strings.ToLower(field.Label))
			}
		case manageFieldSelect:
			matched := false
			for _, opt := range field.Options {
				if strings.EqualFold(opt, v) {
					v = opt
					matched = true
					break
				}
			}
			if !matched {
				return registry.GlobalSettings{}, fmt.Errorf("%s has invalid value", strings.ToLower(field.Label))
			}
		}
		vals[field.Key] = v
	}

	languages := splitLanguages(vals["languages"])
	if len(languages) == 0 {
		return registry.GlobalSettings{}, fmt.Errorf("languages requires at least one entry")
	}
	fragments, _ := strconv.Atoi(defaultIfEmpty(vals["fragments"], "0"))
	if fragments <= 0 {
		return registry.GlobalSettings{}, fmt.Errorf("fragments must be >= 1")
	}
	downloadLimit, err := strconv.ParseFloat(defaultIfEmpty(vals["download_limit_mb_s"], "0"), 64)
	if err != nil || downloadLimit < 0 {
		return registry.GlobalSettings{}, fmt.Errorf("download limit mb/s must be a number >= 0")
	}

	return registry.GlobalSettings{
		Languages:         languages,
		OutputRoot:        strings.TrimSpace(vals["output_root"]),
		AudioQuality:      strings.TrimSpace(vals["audio_quality"]),
		Fragments:         fragments,
		DownloadLimitMBps: downloadLimit,
	}, nil
}

func saveGlobalSettingsCmd(configPath string, global registry.GlobalSettings) tea.Cmd {
	return func() tea.Msg {
		res, err := registry.UpdateGlobalSettings(registry.UpdateGlobalSettingsOptions{
			ConfigPath: configPath,
			Global:     global,
		})
		if err != nil {
			return manageSaveMsg{err: err}
		}
		return manageSaveMsg{
			message: fmt.Sprintf(
				"updated global settings: languages=%s quality=%s fragments=%d limit=%sMB/s",
				strings.Join(res.Global.Languages, ","),
				res.Global.AudioQuality,
				res.Global.Fragments,
				formatFloat(res.Global.DownloadLimitMBps),
			),
		}
	}
}

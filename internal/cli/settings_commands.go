package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"yt-ingest/internal/registry"
)

func runSettings(args []string) error {
	if len(args) == 0 {
		printSettingsUsage()
		return nil
	}
	switch args[0] {
	case "show":
		return runSettingsShow(args[1:])
	case "set":
		return runSettingsSet(args[1:])
	case "help", "-h", "--help":
		printSettingsUsage()
		return nil
	default:
		printSettingsUsage()
		return fmt.Errorf("unknown settings subcommand %q", args[0])
	}
}

func runSettingsShow(args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ContinueOnError)
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	global, err := registry.GetGlobalSettings(strings.TrimSpace(*config))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"config_path": strings.TrimSpace(*config),
			"global":      global,
		})
	}

	fmt.Printf("config: %s\n", strings.TrimSpace(*config))
	fmt.Printf("languages: %s\n", strings.Join(global.Languages, ","))
	fmt.Printf("output_root: %s\n", global.OutputRoot)
	fmt.Printf("audio_quality: %s\n", global.AudioQuality)
	fmt.Printf("fragments: %d\n", global.Fragments)
	fmt.Printf("download_limit_mb_s: %s\n", formatFloat(global.DownloadLimitMBps))
	return nil
}

func runSettingsSet(args []string) error {
	fs := flag.NewFlagSet("settings set", flag.ContinueOnError)
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	languages := fs.String("languages", "", "comma-separated transcript language preference (empty keeps current)")
	outputRoot := fs.String("output-root", "", "default output root (empty keeps current)")
	quality := fs.String("audio-quality", "", "default mp3 bitrate (empty keeps current)")
	fragments := fs.Int("fragments", -1, "default yt-dlp fragment concurrency (>=1, -1 keeps current)")
	downloadLimit := fs.Float64("download-limit-mb-s", -1, "global download limit in MB/s (>=0, 0 disables, -1 keeps current)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath := strings.TrimSpace(*config)
	global, err := registry.GetGlobalSettings(configPath)
	if err != nil {
		return err
	}

	if langs := splitLanguages(*languages); len(langs) > 0 {
		global.Languages = langs
	}
	if strings.TrimSpace(*outputRoot) != "" {
		global.OutputRoot = strings.TrimSpace(*outputRoot)
	}
	if strings.TrimSpace(*quality) != "" {
		global.AudioQuality = strings.TrimSpace(*quality)
	}
	if *fragments != -1 {
		if *fragments <= 0 {
			return errors.New("--fragments must be >= 1")
		}
		global.Fragments = *fragments
	}
	if *downloadLimit != -1 {
		if *downloadLimit < 0 {
			return errors.New("--download-limit-mb-s must be >= 0")
		}
		global.DownloadLimitMBps = *downloadLimit
	}

	res, err := registry.UpdateGlobalSettings(registry.UpdateGlobalSettingsOptions{
		ConfigPath: configPath,
		Global:     global,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Printf("updated global settings in %s\n", res.ConfigPath)
	fmt.Printf("languages: %s\n", strings.Join(res.Global.Languages, ","))
	fmt.Printf("output_root: %s\n", res.Global.OutputRoot)
	fmt.Printf("audio_quality: %s\n", res.Global.AudioQuality)
	fmt.Printf("fragments: %d\n", res.Global.Fragments)
	fmt.Printf("download_limit_mb_s: %s\n", formatFloat(res.Global.DownloadLimitMBps))
	return nil
}

func printSettingsUsage() {
	fmt.Println("settings commands:")
	fmt.Println("  settings show")
	fmt.Println("  settings set [--languages a,b] [--output-root <dir>] [--audio-quality <rate>] [--fragments N] [--download-limit-mb-s N]")
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

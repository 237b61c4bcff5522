package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"yt-ingest/internal/registry"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	outputRoot := fs.String("output-root", registry.DefaultOutputRoot, "output root directory")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := registry.InitWorkspace(registry.InitWorkspaceOptions{
		OutputRoot: strings.TrimSpace(*outputRoot),
		ConfigPath: strings.TrimSpace(*config),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Println("workspace initialized")
	fmt.Printf("output_root: %s\n", res.OutputRoot)
	fmt.Printf("config: %s\n", res.ConfigPath)
	fmt.Printf("created_output_root: %t\n", res.CreatedOutputRoot)
	fmt.Printf("created_config: %t\n", res.CreatedConfig)
	fmt.Println("checks:")
	for _, c := range res.DoctorResult.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("  %s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.DoctorResult.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("next: yt-ingest add --playlist-url <url>")
	return nil
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	outputRoot := fs.String("output-root", registry.DefaultOutputRoot, "output root directory")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := registry.Doctor(registry.DoctorOptions{
		OutputRoot: strings.TrimSpace(*outputRoot),
		ConfigPath: strings.TrimSpace(*config),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}

func runAddPlaylist(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "playlist name (optional; auto-generated from URL)")
	playlistURL := fs.String("playlist-url", "", "playlist URL")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	languages := fs.String("languages", "", "comma-separated transcript language preference override")
	outputRoot := fs.String("output-root", "", "output root override")
	maxVideos := fs.Int("max-videos", 0, "default per-sync entry cap for this playlist (0 = no limit)")
	skipAudio := fs.Bool("skip-audio", false, "never download audio for this playlist")
	skipTranscripts := fs.Bool("skip-transcripts", false, "never fetch transcripts for this playlist")
	cookies := fs.String("cookies", "", "path to cookies.txt")
	fragments := fs.Int("fragments", 0, "yt-dlp fragment concurrency override (0 = inherit global)")
	quality := fs.String("audio-quality", "", "mp3 bitrate override")
	replace := fs.Bool("replace", false, "replace playlist if it already exists")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	url := strings.TrimSpace(*playlistURL)
	if url == "" {
		var err error
		url, err = promptRequired("playlist URL")
		if err != nil {
			return err
		}
	}

	res, err := registry.AddPlaylist(registry.AddPlaylistOptions{
		ConfigPath:          strings.TrimSpace(*config),
		Name:                strings.TrimSpace(*name),
		PlaylistURL:         url,
		Languages:           splitLanguages(*languages),
		OutputRoot:          strings.TrimSpace(*outputRoot),
		MaxVideos:           *maxVideos,
		SkipAudio:           *skipAudio,
		SkipTranscripts:     *skipTranscripts,
		CookiesPath:         strings.TrimSpace(*cookies),
		Fragments:           *fragments,
		AudioQuality:        strings.TrimSpace(*quality),
		Active:              boolPtr(true),
		ReplaceIfNameExists: *replace,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(res)
	}

	action := "added"
	if !res.Created {
		action = "updated"
	}
	fmt.Printf("playlist %s: %s\n", action, res.Playlist.Name)
	fmt.Printf("url: %s\n", res.Playlist.PlaylistURL)
	fmt.Printf("config: %s\n", strings.TrimSpace(*config))
	fmt.Printf("next: yt-ingest sync --playlist %s\n", res.Playlist.Name)
	return nil
}

func runListPlaylists(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := registry.ListPlaylists(strings.TrimSpace(*config))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Printf("config: %s\n", res.ConfigPath)
	if len(res.Playlists) == 0 {
		fmt.Println("no playlists configured")
		fmt.Println("next: yt-ingest add --playlist-url <url>")
		return nil
	}
	for _, p := range res.Playlists {
		fmt.Printf("- %s | %s\n", p.Name, p.PlaylistURL)
	}
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	playlist := fs.String("playlist", "", "playlist name or comma-separated names")
	all := fs.Bool("all", true, "show all tracked playlists")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*playlist) != "" {
		*all = false
	}

	res, err := registry.Status(registry.StatusOptions{
		ConfigPath: strings.TrimSpace(*config),
		Playlist:   strings.TrimSpace(*playlist),
		All:        *all,
	})
	if err != nil {
		if errors.Is(err, registry.ErrNoPlaylistsConfigured) {
			fmt.Println("no playlists configured")
			fmt.Println("start here:")
			fmt.Println("  yt-ingest init")
			fmt.Println("  yt-ingest add --playlist-url <url> [--name <playlist>]")
			fmt.Println("then sync:")
			fmt.Println("  yt-ingest sync --all")
			return nil
		}
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	for _, row := range res.Rows {
		fmt.Printf("%s [%s]\n", row.Playlist, row.State)
		fmt.Printf("  url: %s\n", row.PlaylistURL)
		if row.PlaylistTitle != "" {
			fmt.Printf("  title: %s\n", row.PlaylistTitle)
		}
		fmt.Printf("  succeeded/failed/skipped/pending: %d/%d/%d/%d\n", row.Succeeded, row.Failed, row.Skipped, row.Pending)
	}
	fmt.Println("totals")
	fmt.Printf("  playlists: %d\n", res.Totals.Playlists)
	fmt.Printf("  healthy: %d\n", res.Totals.Healthy)
	fmt.Printf("  attention: %d\n", res.Totals.Attention)
	fmt.Printf("  never_ingested: %d\n", res.Totals.NeverIngested)
	return nil
}

func runRemovePlaylist(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	name := fs.String("name", "", "playlist name")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	yes := fs.Bool("yes", false, "skip confirmation")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	target := strings.TrimSpace(*name)
	if target == "" {
		return errors.New("--name is required")
	}
	if !*yes {
		ok, err := promptConfirm(fmt.Sprintf("remove playlist %q? [y/N] ", target))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("aborted")
			return nil
		}
	}

	res, err := registry.RemovePlaylist(registry.RemovePlaylistOptions{
		ConfigPath: strings.TrimSpace(*config),
		Name:       target,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("removed playlist: %s (%s)\n", res.Playlist.Name, res.Playlist.PlaylistURL)
	return nil
}

package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "ingest-playlist":
		return runIngestPlaylist(args[1:])
	case "download-video":
		return runDownloadVideo(args[1:])
	case "sync":
		return runSync(args[1:])
	case "init":
		return runInit(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "add":
		return runAddPlaylist(args[1:])
	case "list":
		return runListPlaylists(args[1:])
	case "manage":
		return runManage(args[1:])
	case "settings":
		return runSettings(args[1:])
	case "status":
		return runStatus(args[1:])
	case "remove":
		return runRemovePlaylist(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("yt-ingest: playlist-first YouTube audio + transcript ingester")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  yt-ingest init")
	fmt.Println("  yt-ingest add --playlist-url <url> [--name <playlist>]")
	fmt.Println("  yt-ingest sync --all")
	fmt.Println("  yt-ingest status --all")
	fmt.Println()
	fmt.Println("Playlist Commands:")
	fmt.Println("  init      create workspace config + run environment checks")
	fmt.Println("  doctor    run dependency and filesystem preflight checks")
	fmt.Println("  add       add/update a tracked playlist in config")
	fmt.Println("  list      list tracked playlists")
	fmt.Println("  manage    interactive playlist manager (wizard + editor)")
	fmt.Println("  settings  show/update global runtime settings")
	fmt.Println("  sync      ingest tracked playlist(s) or ad-hoc URL(s)")
	fmt.Println("  status    manifest rollup for tracked playlist(s)")
	fmt.Println("  remove    remove a playlist from config")
	fmt.Println()
	fmt.Println("Direct Commands:")
	fmt.Println("  ingest-playlist  ingest one playlist URL end to end")
	fmt.Println("  download-video   ingest a single video outside any playlist")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Per-video failures never abort a playlist run; check status")
}

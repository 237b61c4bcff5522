package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"yt-ingest/internal/ingest"
	"yt-ingest/internal/logging"
	"yt-ingest/internal/registry"
	"yt-ingest/internal/transcript"
)

type ingestReport struct {
	PlaylistID    string `json:"playlist_id"`
	PlaylistTitle string `json:"playlist_title,omitempty"`
	Dir           string `json:"dir"`
	ManifestPath  string `json:"manifest_path"`
	Processed     int    `json:"processed_now"`
	Total         int    `json:"total_count"`
	Succeeded     int    `json:"succeeded_count"`
	Failed        int    `json:"failed_count"`
	Skipped       int    `json:"skipped_count"`
	Pending       int    `json:"pending_count"`
}

func runIngestPlaylist(args []string) error {
	fs := flag.NewFlagSet("ingest-playlist", flag.ContinueOnError)
	playlistURL := fs.String("playlist-url", "", "playlist URL or bare playlist id")
	languages := fs.String("languages", "", "comma-separated transcript language preference (default: global setting)")
	maxVideos := fs.Int("max-videos", 0, "process at most N playlist entries (0 = no limit)")
	skipExisting := fs.Bool("skip-existing", false, "skip videos whose artifacts already exist on disk")
	skipAudio := fs.Bool("skip-audio", false, "do not download audio")
	skipTranscripts := fs.Bool("skip-transcripts", false, "do not fetch transcripts")
	outputRoot := fs.String("output-root", "", "output root directory (default: global setting)")
	cookies := fs.String("cookies", "", "path to cookies.txt")
	quality := fs.String("audio-quality", "", "mp3 bitrate passed to yt-dlp (default: global setting)")
	fragments := fs.Int("fragments", 0, "yt-dlp fragment concurrency (0 = global setting)")
	progress := fs.Bool("progress", true, "show live progress renderer")
	rawOutput := fs.Bool("raw-output", false, "print raw yt-dlp/ffmpeg output lines (verbose)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
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

	global, err := registry.ReadGlobalSettings(strings.TrimSpace(*config))
	if err != nil {
		return err
	}
	langs := splitLanguages(*languages)
	if len(langs) == 0 {
		langs = global.Languages
	}

	log := logging.Setup(*verbose)
	res, err := ingest.Run(context.Background(), ingest.RunOptions{
		PlaylistURL:       url,
		OutputRoot:        firstNonEmpty(strings.TrimSpace(*outputRoot), global.OutputRoot),
		Languages:         langs,
		MaxVideos:         *maxVideos,
		SkipExisting:      *skipExisting,
		SkipAudio:         *skipAudio,
		SkipTranscripts:   *skipTranscripts,
		CookiesPath:       strings.TrimSpace(*cookies),
		AudioQuality:      firstNonEmpty(strings.TrimSpace(*quality), global.AudioQuality),
		Fragments:         firstNonZero(*fragments, global.Fragments),
		DownloadLimitMBps: global.DownloadLimitMBps,
		Progress:          *progress && !*jsonOut,
		RawOutput:         *rawOutput,
		Transcripts:       transcript.NewClient(nil),
		Log:               log,
	})
	if err != nil {
		return err
	}

	report := ingestReport{
		PlaylistID:    res.PlaylistID,
		PlaylistTitle: res.PlaylistTitle,
		Dir:           res.Dir,
		ManifestPath:  res.ManifestPath,
		Processed:     res.Processed,
		Total:         res.Total,
		Succeeded:     res.Succeeded,
		Failed:        res.Failed,
		Skipped:       res.Skipped,
		Pending:       res.Pending,
	}
	if *jsonOut {
		return printJSON(report)
	}

	fmt.Println("ingest summary")
	fmt.Printf("playlist: %s (%s)\n", firstNonEmpty(report.PlaylistTitle, report.PlaylistID), report.PlaylistID)
	fmt.Printf("dir: %s\n", report.Dir)
	fmt.Printf("processed_now: %d\n", report.Processed)
	fmt.Printf("succeeded/failed/skipped: %d/%d/%d\n", report.Succeeded, report.Failed, report.Skipped)
	if report.Pending > 0 {
		fmt.Printf("pending: %d\n", report.Pending)
	}
	if report.Failed > 0 {
		fmt.Println("some videos failed; rerun with --skip-existing to retry only the missing ones")
	}
	return nil
}

func runDownloadVideo(args []string) error {
	fs := flag.NewFlagSet("download-video", flag.ContinueOnError)
	videoURL := fs.String("url", "", "video URL or bare video id")
	outputDir := fs.String("output-dir", "", "output directory (default: downloads)")
	languages := fs.String("languages", "", "comma-separated transcript language preference (default: global setting)")
	skipExisting := fs.Bool("skip-existing", false, "skip when artifacts already exist on disk")
	skipAudio := fs.Bool("skip-audio", false, "do not download audio")
	skipTranscripts := fs.Bool("skip-transcripts", false, "do not fetch transcripts")
	cookies := fs.String("cookies", "", "path to cookies.txt")
	quality := fs.String("audio-quality", "", "mp3 bitrate passed to yt-dlp (default: global setting)")
	fragments := fs.Int("fragments", 0, "yt-dlp fragment concurrency (0 = global setting)")
	progress := fs.Bool("progress", true, "show live progress renderer")
	rawOutput := fs.Bool("raw-output", false, "print raw yt-dlp/ffmpeg output lines (verbose)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	url := strings.TrimSpace(*videoURL)
	if url == "" {
		var err error
		url, err = promptRequired("video URL")
		if err != nil {
			return err
		}
	}

	global, err := registry.ReadGlobalSettings(strings.TrimSpace(*config))
	if err != nil {
		return err
	}
	langs := splitLanguages(*languages)
	if len(langs) == 0 {
		langs = global.Languages
	}

	log := logging.Setup(*verbose)
	res, err := ingest.DownloadVideo(context.Background(), ingest.DownloadOptions{
		VideoURL:          url,
		OutputDir:         strings.TrimSpace(*outputDir),
		Languages:         langs,
		SkipExisting:      *skipExisting,
		SkipAudio:         *skipAudio,
		SkipTranscripts:   *skipTranscripts,
		CookiesPath:       strings.TrimSpace(*cookies),
		AudioQuality:      firstNonEmpty(strings.TrimSpace(*quality), global.AudioQuality),
		Fragments:         firstNonZero(*fragments, global.Fragments),
		DownloadLimitMBps: global.DownloadLimitMBps,
		Progress:          *progress && !*jsonOut,
		RawOutput:         *rawOutput,
		Transcripts:       transcript.NewClient(nil),
		Log:               log,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("video %s: %s\n", res.VideoID, res.Status)
	if res.Title != "" {
		fmt.Printf("title: %s\n", res.Title)
	}
	if res.AudioPath != "" {
		fmt.Printf("audio: %s\n", res.AudioPath)
	}
	if res.TranscriptPath != "" {
		fmt.Printf("transcript: %s (%s, %s)\n", res.TranscriptPath, res.TranscriptLanguage, res.TranscriptTier)
	}
	fmt.Printf("metadata: %s\n", res.MetadataPath)
	return nil
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"yt-ingest/internal/ingest"
	"yt-ingest/internal/logging"
	"yt-ingest/internal/registry"
	"yt-ingest/internal/transcript"
)

type syncPlaylistItem struct {
	Name            string
	PlaylistURL     string
	Languages       []string
	OutputRoot      string
	MaxVideos       int
	SkipAudio       bool
	SkipTranscripts bool
	CookiesPath     string
	Fragments       int
	AudioQuality    string
}

type syncPlaylistReport struct {
	Playlist      string `json:"playlist,omitempty"`
	PlaylistURL   string `json:"playlist_url"`
	PlaylistID    string `json:"playlist_id,omitempty"`
	PlaylistTitle string `json:"playlist_title,omitempty"`
	Dir           string `json:"dir,omitempty"`
	Processed     int    `json:"processed_now"`
	Total         int    `json:"total_count"`
	Succeeded     int    `json:"succeeded_count"`
	Failed        int    `json:"failed_count"`
	Skipped       int    `json:"skipped_count"`
	Pending       int    `json:"pending_count"`
	Error         string `json:"error,omitempty"`
}

type syncResult struct {
	Playlists    int                  `json:"playlists"`
	ProcessedNow int                  `json:"processed_now"`
	Succeeded    int                  `json:"succeeded_count"`
	Failed       int                  `json:"failed_count"`
	Skipped      int                  `json:"skipped_count"`
	Failures     int                  `json:"failures"`
	Reports      []syncPlaylistReport `json:"reports"`
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	playlistURL := fs.String("playlist-url", "", "single ad-hoc playlist URL (not saved to config)")
	fetchlist := fs.String("fetchlist", "", "file with one playlist URL per line")
	playlist := fs.String("playlist", "", "playlist name or comma-separated names")
	all := fs.Bool("all", false, "sync all tracked playlists")
	activeOnly := fs.Bool("active-only", false, "only sync playlists marked active")
	config := fs.String("config", registry.DefaultConfigPath, "playlist config path")
	continueOnError := fs.Bool("continue-on-error", true, "continue with other playlists if one fails")

	languages := fs.String("languages", "", "comma-separated transcript language preference override")
	maxVideos := fs.Int("max-videos", 0, "max entries per playlist this invocation (0 = playlist/default)")
	skipExisting := fs.Bool("skip-existing", true, "skip videos whose artifacts already exist on disk")
	skipAudio := fs.Bool("skip-audio", false, "do not download audio")
	skipTranscripts := fs.Bool("skip-transcripts", false, "do not fetch transcripts")
	outputRoot := fs.String("output-root", "", "output root override")
	cookies := fs.String("cookies", "", "path to cookies.txt")
	quality := fs.String("audio-quality", "", "mp3 bitrate override")
	fragments := fs.Int("fragments", 0, "yt-dlp fragment concurrency (0 = playlist/default)")
	progress := fs.Bool("progress", true, "show live progress renderer")
	rawOutput := fs.Bool("raw-output", false, "print raw yt-dlp/ffmpeg output lines (verbose)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	jsonOut := fs.Bool("json", false, "print JSON output")

	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := collectSyncItems(
		strings.TrimSpace(*playlistURL),
		strings.TrimSpace(*fetchlist),
		strings.TrimSpace(*playlist),
		*all,
		*activeOnly,
		strings.TrimSpace(*config),
	)
	if err != nil {
		return err
	}

	global, err := registry.ReadGlobalSettings(strings.TrimSpace(*config))
	if err != nil {
		return err
	}
	cliLangs := splitLanguages(*languages)
	progressEnabled := *progress && !*jsonOut
	log := logging.Setup(*verbose)
	fetcher := transcript.NewClient(nil)

	if !*jsonOut {
		fmt.Printf("sync: ingesting %d playlist(s)...\n", len(items))
	}

	totalProcessed := 0
	totalSucceeded := 0
	totalFailed := 0
	totalSkipped := 0
	failures := 0
	reports := make([]syncPlaylistReport, 0, len(items))

	for idx, item := range items {
		report := syncPlaylistReport{
			Playlist:    item.Name,
			PlaylistURL: item.PlaylistURL,
		}
		label := firstNonEmpty(item.Name, item.PlaylistURL)
		if !*jsonOut {
			fmt.Printf("[%d/%d] ingesting %s\n", idx+1, len(items), label)
		}

		langs := cliLangs
		if len(langs) == 0 {
			langs = item.Languages
		}
		if len(langs) == 0 {
			langs = global.Languages
		}

		start := time.Now()
		res, runErr := ingest.Run(context.Background(), ingest.RunOptions{
			PlaylistURL:       item.PlaylistURL,
			OutputRoot:        firstNonEmpty(strings.TrimSpace(*outputRoot), item.OutputRoot, global.OutputRoot),
			Languages:         langs,
			MaxVideos:         firstNonZero(*maxVideos, item.MaxVideos),
			SkipExisting:      *skipExisting,
			SkipAudio:         *skipAudio || item.SkipAudio,
			SkipTranscripts:   *skipTranscripts || item.SkipTranscripts,
			CookiesPath:       firstNonEmpty(strings.TrimSpace(*cookies), item.CookiesPath),
			AudioQuality:      firstNonEmpty(strings.TrimSpace(*quality), item.AudioQuality, global.AudioQuality),
			Fragments:         firstNonZero(*fragments, item.Fragments, global.Fragments),
			DownloadLimitMBps: global.DownloadLimitMBps,
			Progress:          progressEnabled,
			RawOutput:         *rawOutput,
			Transcripts:       fetcher,
			Log:               log,
		})
		if runErr != nil {
			failures++
			report.Error = runErr.Error()
			reports = append(reports, report)
			fmt.Fprintf(os.Stderr, "sync failed for %s: %v\n", label, runErr)
			if !*continueOnError {
				result := syncResult{Playlists: len(items), ProcessedNow: totalProcessed, Succeeded: totalSucceeded, Failed: totalFailed, Skipped: totalSkipped, Failures: failures, Reports: reports}
				if *jsonOut {
					_ = printJSON(result)
				}
				return runErr
			}
			continue
		}

		report.PlaylistID = res.PlaylistID
		report.PlaylistTitle = res.PlaylistTitle
		report.Dir = res.Dir
		report.Processed = res.Processed
		report.Total = res.Total
		report.Succeeded = res.Succeeded
		report.Failed = res.Failed
		report.Skipped = res.Skipped
		report.Pending = res.Pending
		reports = append(reports, report)

		totalProcessed += res.Processed
		totalSucceeded += res.Succeeded
		totalFailed += res.Failed
		totalSkipped += res.Skipped
		if !*jsonOut {
			fmt.Printf("[%d/%d] finished in %s (processed %d, failed %d)\n",
				idx+1,
				len(items),
				time.Since(start).Round(time.Millisecond),
				res.Processed,
				res.Failed,
			)
		}
	}

	result := syncResult{
		Playlists:    len(items),
		ProcessedNow: totalProcessed,
		Succeeded:    totalSucceeded,
		Failed:       totalFailed,
		Skipped:      totalSkipped,
		Failures:     failures,
		Reports:      reports,
	}
	if *jsonOut {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		fmt.Println("sync summary")
		fmt.Printf("playlists: %d\n", len(items))
		fmt.Printf("processed_now: %d\n", totalProcessed)
		fmt.Printf("succeeded/failed/skipped: %d/%d/%d\n", totalSucceeded, totalFailed, totalSkipped)
		fmt.Printf("failures: %d\n", failures)
	}

	if failures > 0 {
		return fmt.Errorf("sync finished with %d failure(s)", failures)
	}
	return nil
}

func collectSyncItems(singleURL, fetchlistPath, playlistNames string, all bool, activeOnly bool, configPath string) ([]syncPlaylistItem, error) {
	hasURLInputs := strings.TrimSpace(singleURL) != "" || strings.TrimSpace(fetchlistPath) != ""
	hasPlaylistInputs := strings.TrimSpace(playlistNames) != "" || all
	if hasURLInputs && hasPlaylistInputs {
		return nil, errors.New("sync URL mode and playlist mode are mutually exclusive")
	}
	if activeOnly && !hasPlaylistInputs {
		return nil, errors.New("--active-only requires --playlist or --all")
	}

	items := make([]syncPlaylistItem, 0)
	seen := make(map[string]bool)
	appendItem := func(s syncPlaylistItem) {
		s.PlaylistURL = strings.TrimSpace(s.PlaylistURL)
		if s.PlaylistURL == "" {
			return
		}
		key := strings.TrimSuffix(s.PlaylistURL, "/")
		if seen[key] {
			return
		}
		seen[key] = true
		items = append(items, s)
	}

	if hasPlaylistInputs {
		playlists, err := registry.ResolveSelection(configPath, playlistNames, all, activeOnly)
		if err != nil {
			return nil, err
		}
		for _, p := range playlists {
			appendItem(syncPlaylistItem{
				Name:            p.Name,
				PlaylistURL:     p.PlaylistURL,
				Languages:       p.Languages,
				OutputRoot:      p.OutputRoot,
				MaxVideos:       p.MaxVideos,
				SkipAudio:       p.SkipAudio,
				SkipTranscripts: p.SkipTranscripts,
				CookiesPath:     p.CookiesPath,
				Fragments:       p.Fragments,
				AudioQuality:    p.AudioQuality,
			})
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("no playlists selected")
		}
		return items, nil
	}

	appendItem(syncPlaylistItem{PlaylistURL: singleURL})

	if strings.TrimSpace(fetchlistPath) != "" {
		f, err := os.Open(fetchlistPath)
		if err != nil {
			return nil, fmt.Errorf("open fetchlist %s: %w", fetchlistPath, err)
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			item := syncPlaylistItem{}
			if strings.Contains(line, "|") {
				parts := strings.SplitN(line, "|", 2)
				item.Name = strings.TrimSpace(parts[0])
				item.PlaylistURL = strings.TrimSpace(parts[1])
			} else {
				item.PlaylistURL = line
			}
			appendItem(item)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read fetchlist %s: %w", fetchlistPath, err)
		}
	}

	if len(items) == 0 {
		return nil, errors.New("sync requires --playlist-url, --fetchlist, --playlist, or --all")
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

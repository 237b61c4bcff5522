package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"yt-ingest/internal/layout"
	"yt-ingest/internal/logging"
	"yt-ingest/internal/model"
	"yt-ingest/internal/store"
	"yt-ingest/internal/ytdlp"
)

const manifestSchemaVersion = 1

// TranscriptFetcher retrieves the best available transcript for a video.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) (model.TranscriptBundle, error)
}

type RunOptions struct {
	PlaylistURL       string
	OutputRoot        string
	Languages         []string
	MaxVideos         int
	SkipExisting      bool
	SkipAudio         bool
	SkipTranscripts   bool
	CookiesPath       string
	AudioQuality      string
	Fragments         int
	DownloadLimitMBps float64
	Progress          bool
	RawOutput         bool
	Transcripts       TranscriptFetcher
	Log               *logging.Logger
}

type RunResult struct {
	PlaylistID    string
	PlaylistTitle string
	Dir           string
	ManifestPath  string
	Processed     int
	Total         int
	Succeeded     int
	Failed        int
	Skipped       int
	Pending       int
}

// Run ingests one playlist sequentially, one video at a time, checkpointing
// the manifest after every video. Per-video failures are recorded on the
// record and never abort the playlist; only setup errors return non-nil.
func Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	if opts.Transcripts == nil && !opts.SkipTranscripts {
		return RunResult{}, fmt.Errorf("transcript fetcher is required unless transcripts are skipped")
	}

	playlistID, err := ExtractPlaylistID(opts.PlaylistURL)
	if err != nil {
		return RunResult{}, err
	}
	log = log.WithPlaylistID(playlistID)

	if err := checkDependencies(opts.SkipAudio); err != nil {
		return RunResult{}, err
	}

	lay, err := layout.New(opts.OutputRoot, playlistID)
	if err != nil {
		return RunResult{}, err
	}
	if err := lay.EnsureDirs(); err != nil {
		return RunResult{}, fmt.Errorf("prepare playlist directories: %w", err)
	}

	lock, err := store.AcquireIngestLock(lay.Dir())
	if err != nil {
		return RunResult{}, err
	}
	defer func() {
		_ = lock.Release()
	}()

	mf, err := loadOrInitManifest(lay, playlistID, opts.PlaylistURL)
	if err != nil {
		return RunResult{}, err
	}
	mf.IngestID = uuid.NewString()
	mf.Languages = normalizedCopy(opts.Languages)

	log.Infof("enumerating playlist entries")
	title, entries, err := enumerateEntries(CanonicalPlaylistURL(opts.PlaylistURL), opts.CookiesPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("enumerate playlist: %w", err)
	}
	if title != "" {
		mf.PlaylistTitle = title
	}
	if opts.MaxVideos > 0 && len(entries) > opts.MaxVideos {
		entries = entries[:opts.MaxVideos]
	}
	log.Infof("playlist %q lists %d entries for this run", mf.PlaylistTitle, len(entries))

	indexes, err := mergeEntries(&mf, entries)
	if err != nil {
		return RunResult{}, err
	}
	if err := resetStaleRunning(&mf); err != nil {
		return RunResult{}, err
	}
	if !opts.SkipAudio {
		if err := reconcileRecordsWithDisk(&mf, lay); err != nil {
			return RunResult{}, err
		}
	}
	if err := checkpoint(lay, &mf); err != nil {
		return RunResult{}, err
	}

	processed := 0
	for _, i := range indexes {
		if ctx.Err() != nil {
			log.Warnf("ingest interrupted: %v", ctx.Err())
			break
		}
		processVideo(ctx, lay, &mf, i, opts, log)
		processed++
		if err := checkpoint(lay, &mf); err != nil {
			return RunResult{}, err
		}
	}

	if err := checkpoint(lay, &mf); err != nil {
		return RunResult{}, err
	}
	return RunResult{
		PlaylistID:    mf.PlaylistID,
		PlaylistTitle: mf.PlaylistTitle,
		Dir:           lay.Dir(),
		ManifestPath:  lay.ManifestPath(),
		Processed:     processed,
		Total:         mf.Total,
		Succeeded:     mf.Succeeded,
		Failed:        mf.Failed,
		Skipped:       mf.Skipped,
		Pending:       mf.Pending,
	}, nil
}

// processVideo runs the pending -> running -> succeeded|failed|skipped
// pipeline for one record. Errors land on the record, never on the caller.
func processVideo(ctx context.Context, lay layout.PlaylistLayout, mf *model.Manifest, i int, opts RunOptions, log *logging.Logger) {
	rec := &mf.Videos[i]
	vlog := log.WithVideoID(rec.VideoID)

	audioPath := lay.AudioPath(rec.VideoID)
	transcriptPath := lay.TranscriptPath(rec.VideoID)
	metadataPath := lay.MetadataPath(rec.VideoID)

	if opts.SkipExisting && artifactsPresent(audioPath, transcriptPath, metadataPath, opts) {
		if err := model.TransitionRecordStatus(rec, model.StatusSkipped, "already_ingested"); err != nil {
			markFailed(rec, "internal_error", err)
			return
		}
		rec.LastError = ""
		recordArtifactPaths(rec, lay, audioPath, transcriptPath, metadataPath)
		vlog.Infof("skipping, artifacts already present")
		if !opts.Progress {
			fmt.Printf("[%d/%d] skip  %s (already ingested)\n", rec.Index, mf.Total, rec.VideoID)
		}
		return
	}

	if err := model.TransitionRecordStatus(rec, model.StatusRunning, ""); err != nil {
		markFailed(rec, "internal_error", err)
		return
	}
	rec.Attempts++
	rec.LastAttemptAt = time.Now().UTC().Format(time.RFC3339)
	model.RecomputeCounts(mf)

	progress := newLiveProgress(opts.Progress, rec.Index, mf.Total, mf.Succeeded, mf.Failed, mf.Skipped, rec.VideoID, rec.Title)
	progress.Start()
	progress.SetPhase("starting")

	logFile, err := os.Create(lay.LogPath(rec.Index, rec.VideoID))
	if err != nil {
		markFailed(rec, "filesystem_error", err)
		progress.Stop(failLine(rec, mf.Total))
		return
	}
	defer logFile.Close()

	progress.SetPhase("metadata")
	info, err := probeVideo(rec.SourceURL, opts.CookiesPath)
	if err != nil {
		markFailed(rec, classifyFetchError(err), err)
		vlog.ErrorWithErr("metadata probe failed", err)
		progress.Stop(failLine(rec, mf.Total))
		return
	}
	applyProbe(rec, info)

	if !opts.SkipAudio {
		skipDownload := opts.SkipExisting && fileExists(audioPath)
		if !skipDownload {
			progress.SetPhase("downloading")
			fmt.Fprintf(logFile, "=== audio %s ===\n", rec.VideoID)
			_, dlErr := ytdlp.DownloadAudio(ytdlp.AudioOptions{
				VideoURL:          rec.SourceURL,
				OutputDir:         lay.AudioDir(),
				AudioQuality:      opts.AudioQuality,
				Fragments:         opts.Fragments,
				CookiesPath:       opts.CookiesPath,
				DownloadLimitMBps: opts.DownloadLimitMBps,
				Stdout:            os.Stdout,
				Stderr:            os.Stderr,
				LogWriter:         logFile,
				EchoOutput:        opts.RawOutput,
				Progress:          progress.Handle,
			})
			if dlErr != nil {
				markFailed(rec, classifyFetchError(dlErr), dlErr)
				vlog.ErrorWithErr("audio download failed", dlErr)
				progress.Stop(failLine(rec, mf.Total))
				return
			}
			if !fileExists(audioPath) {
				err := fmt.Errorf("downloader reported success but %s is missing", audioPath)
				markFailed(rec, "download_error", err)
				vlog.ErrorWithErr("audio download failed", err)
				progress.Stop(failLine(rec, mf.Total))
				return
			}
		}
		rec.AudioPath = lay.Rel(audioPath)
	}

	var transcriptErr error
	if !opts.SkipTranscripts {
		if opts.SkipExisting && fileExists(transcriptPath) {
			var bundle model.TranscriptBundle
			if err := store.ReadJSON(transcriptPath, &bundle); err == nil {
				rec.TranscriptLanguage = bundle.Language
				rec.TranscriptTier = bundle.Tier
			}
			rec.TranscriptPath = lay.Rel(transcriptPath)
		} else {
			progress.SetPhase("transcript")
			bundle, err := opts.Transcripts.Fetch(ctx, rec.VideoID, opts.Languages)
			if err != nil {
				transcriptErr = err
				vlog.Warnf("transcript unavailable: %v", err)
			} else if err := store.WriteJSON(transcriptPath, bundle); err != nil {
				markFailed(rec, "filesystem_error", err)
				progress.Stop(failLine(rec, mf.Total))
				return
			} else {
				rec.TranscriptPath = lay.Rel(transcriptPath)
				rec.TranscriptLanguage = bundle.Language
				rec.TranscriptTier = bundle.Tier
			}
		}
	}

	// The metadata record is written even when no transcript tier
	// succeeded, so the dataset keeps a snapshot for every reachable video.
	progress.SetPhase("metadata write")
	meta := buildMetadata(rec, info)
	if err := store.WriteJSON(metadataPath, meta); err != nil {
		markFailed(rec, "filesystem_error", err)
		progress.Stop(failLine(rec, mf.Total))
		return
	}
	rec.MetadataPath = lay.Rel(metadataPath)

	if transcriptErr != nil {
		markFailed(rec, "transcript_unavailable", transcriptErr)
		progress.Stop(failLine(rec, mf.Total))
		return
	}

	if err := model.TransitionRecordStatus(rec, model.StatusSucceeded, ""); err != nil {
		markFailed(rec, "internal_error", err)
		progress.Stop(failLine(rec, mf.Total))
		return
	}
	rec.LastError = ""
	rec.IngestedAt = time.Now().UTC().Format(time.RFC3339)
	progress.Stop(fmt.Sprintf("[%d/%d] done  %s", rec.Index, mf.Total, rec.VideoID))
}

func checkDependencies(skipAudio bool) error {
	report := ytdlp.DependencyStatus()
	if !report.YTDLPFound {
		return fmt.Errorf("missing dependency: yt-dlp is not installed or not on PATH")
	}
	if !skipAudio && !report.FFmpegFound {
		return fmt.Errorf("missing dependency: ffmpeg is required for mp3 extraction and was not found on PATH")
	}
	return nil
}

func loadOrInitManifest(lay layout.PlaylistLayout, playlistID, sourceURL string) (model.Manifest, error) {
	var mf model.Manifest
	err := store.ReadJSON(lay.ManifestPath(), &mf)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return model.Manifest{}, fmt.Errorf("load manifest: %w", err)
		}
		mf = model.Manifest{
			SchemaVersion: manifestSchemaVersion,
			PlaylistID:    playlistID,
			PlaylistURL:   CanonicalPlaylistURL(sourceURL),
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		}
	}
	if mf.SchemaVersion == 0 {
		mf.SchemaVersion = manifestSchemaVersion
	}
	if mf.PlaylistID == "" {
		mf.PlaylistID = playlistID
	}
	if mf.PlaylistURL == "" {
		mf.PlaylistURL = CanonicalPlaylistURL(sourceURL)
	}
	return mf, nil
}

// mergeEntries folds this run's playlist entries into the manifest and returns
// the record indexes to process, in playlist order. Records from earlier runs
// that fell out of the playlist are kept but not reprocessed.
func mergeEntries(mf *model.Manifest, entries []playlistEntry) ([]int, error) {
	byID := make(map[string]int, len(mf.Videos))
	for i, rec := range mf.Videos {
		byID[rec.VideoID] = i
	}

	indexes := make([]int, 0, len(entries))
	for n, e := range entries {
		i, ok := byID[e.VideoID]
		if !ok {
			mf.Videos = append(mf.Videos, model.VideoRecord{VideoID: e.VideoID})
			i = len(mf.Videos) - 1
			byID[e.VideoID] = i
			if err := model.TransitionRecordStatus(&mf.Videos[i], model.StatusPending, ""); err != nil {
				return nil, err
			}
		}
		rec := &mf.Videos[i]
		rec.Index = n + 1
		rec.SourceURL = e.URL
		if e.Title != "" {
			rec.Title = e.Title
		}
		if e.Channel != "" {
			rec.Channel = e.Channel
		}
		if e.DurationSeconds > 0 {
			rec.DurationSeconds = e.DurationSeconds
		}
		indexes = append(indexes, i)
	}
	model.RecomputeCounts(mf)
	return indexes, nil
}

func resetStaleRunning(mf *model.Manifest) error {
	for i := range mf.Videos {
		if mf.Videos[i].Status != model.StatusRunning {
			continue
		}
		if err := model.TransitionRecordStatus(&mf.Videos[i], model.StatusPending, "interrupted_previous_run"); err != nil {
			return err
		}
		if mf.Videos[i].LastError == "" {
			mf.Videos[i].LastError = "previous run interrupted while this video was processing"
		}
	}
	model.RecomputeCounts(mf)
	return nil
}

// reconcileRecordsWithDisk demotes succeeded records whose audio file is gone,
// so a later --skip-existing run re-ingests them instead of trusting the
// manifest over the filesystem.
func reconcileRecordsWithDisk(mf *model.Manifest, lay layout.PlaylistLayout) error {
	for i := range mf.Videos {
		rec := &mf.Videos[i]
		if rec.Status != model.StatusSucceeded {
			continue
		}
		if fileExists(lay.AudioPath(rec.VideoID)) {
			continue
		}
		if err := model.TransitionRecordStatus(rec, model.StatusPending, "missing_local_audio"); err != nil {
			return err
		}
		rec.IngestedAt = ""
		rec.AudioPath = ""
		rec.LastError = "previously ingested but audio file is missing locally"
	}
	model.RecomputeCounts(mf)
	return nil
}

func checkpoint(lay layout.PlaylistLayout, mf *model.Manifest) error {
	model.RecomputeCounts(mf)
	mf.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := store.WriteJSON(lay.ManifestPath(), mf); err != nil {
		return fmt.Errorf("persist manifest: %w", err)
	}
	return nil
}

func artifactsPresent(audioPath, transcriptPath, metadataPath string, opts RunOptions) bool {
	if !opts.SkipAudio && !fileExists(audioPath) {
		return false
	}
	if !opts.SkipTranscripts && !fileExists(transcriptPath) {
		return false
	}
	return fileExists(metadataPath)
}

func recordArtifactPaths(rec *model.VideoRecord, lay layout.PlaylistLayout, audioPath, transcriptPath, metadataPath string) {
	if fileExists(audioPath) {
		rec.AudioPath = lay.Rel(audioPath)
	}
	if fileExists(transcriptPath) {
		rec.TranscriptPath = lay.Rel(transcriptPath)
	}
	if fileExists(metadataPath) {
		rec.MetadataPath = lay.Rel(metadataPath)
	}
}

func applyProbe(rec *model.VideoRecord, info videoInfo) {
	if info.Title != "" {
		rec.Title = info.Title
	}
	if info.Channel != "" {
		rec.Channel = info.Channel
	} else if info.Uploader != "" {
		rec.Channel = info.Uploader
	}
	if info.Duration != nil {
		rec.DurationSeconds = int64(*info.Duration)
	}
}

func buildMetadata(rec *model.VideoRecord, info videoInfo) model.VideoMetadata {
	channel := info.Channel
	if channel == "" {
		channel = info.Uploader
	}
	webpageURL := info.WebpageURL
	if webpageURL == "" {
		webpageURL = rec.SourceURL
	}
	var duration int64
	if info.Duration != nil {
		duration = int64(*info.Duration)
	}
	return model.VideoMetadata{
		VideoID:            rec.VideoID,
		Title:              info.Title,
		Description:        info.Description,
		Channel:            channel,
		UploaderID:         info.UploaderID,
		ChannelID:          info.ChannelID,
		DurationSeconds:    duration,
		ViewCount:          info.ViewCount,
		LikeCount:          info.LikeCount,
		WebpageURL:         webpageURL,
		Thumbnail:          info.Thumbnail,
		PlaylistIndex:      rec.Index,
		FetchedAt:          time.Now().UTC().Format(time.RFC3339),
		AudioPath:          rec.AudioPath,
		TranscriptPath:     rec.TranscriptPath,
		TranscriptLanguage: rec.TranscriptLanguage,
		TranscriptTier:     rec.TranscriptTier,
	}
}

func markFailed(rec *model.VideoRecord, reason string, err error) {
	if trErr := model.TransitionRecordStatus(rec, model.StatusFailed, reason); trErr != nil {
		rec.Status = model.StatusFailed
		rec.Reason = reason
	}
	rec.IngestedAt = ""
	rec.LastError = truncate(err.Error(), 1200)
}

func failLine(rec *model.VideoRecord, total int) string {
	return fmt.Sprintf("[%d/%d] fail  %s (%s)", rec.Index, total, rec.VideoID, rec.Reason)
}

// classifyFetchError separates videos that are gone or gated from plain
// network/downloader failures.
func classifyFetchError(err error) string {
	text := strings.ToLower(err.Error())
	hints := []string{
		"video unavailable",
		"private video",
		"this video is private",
		"has been removed",
		"members-only",
		"account associated with this video has been terminated",
		"not available in your country",
	}
	for _, h := range hints {
		if strings.Contains(text, h) {
			return "video_unavailable"
		}
	}
	return "download_error"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func normalizedCopy(languages []string) []string {
	out := make([]string, 0, len(languages))
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang != "" {
			out = append(out, lang)
		}
	}
	return out
}

package ingest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yt-ingest/internal/layout"
	"yt-ingest/internal/logging"
	"yt-ingest/internal/model"
	"yt-ingest/internal/store"
	"yt-ingest/internal/ytdlp"
)

type DownloadOptions struct {
	VideoURL          string
	OutputDir         string
	Languages         []string
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

type DownloadResult struct {
	VideoID            string `json:"video_id"`
	Title              string `json:"title,omitempty"`
	Status             string `json:"status"`
	AudioPath          string `json:"audio_path,omitempty"`
	TranscriptPath     string `json:"transcript_path,omitempty"`
	MetadataPath       string `json:"metadata_path,omitempty"`
	TranscriptLanguage string `json:"transcript_language,omitempty"`
	TranscriptTier     string `json:"transcript_tier,omitempty"`
}

// DownloadVideo ingests a single video outside any playlist, using the same
// audio/transcripts/metadata layout under the output directory. Unlike a
// playlist run there is no manifest; failures are returned directly.
func DownloadVideo(ctx context.Context, opts DownloadOptions) (DownloadResult, error) {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	if opts.Transcripts == nil && !opts.SkipTranscripts {
		return DownloadResult{}, fmt.Errorf("transcript fetcher is required unless transcripts are skipped")
	}

	videoID, err := ExtractVideoID(opts.VideoURL)
	if err != nil {
		return DownloadResult{}, err
	}
	log = log.WithVideoID(videoID)

	if err := checkDependencies(opts.SkipAudio); err != nil {
		return DownloadResult{}, err
	}

	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = "downloads"
	}
	audioPath := filepath.Join(outputDir, "audio", layout.SanitizeID(videoID)+".mp3")
	transcriptPath := filepath.Join(outputDir, "transcripts", layout.SanitizeID(videoID)+".json")
	metadataPath := filepath.Join(outputDir, "metadata", layout.SanitizeID(videoID)+".json")
	for _, dir := range []string{outputDir, filepath.Dir(audioPath), filepath.Dir(transcriptPath), filepath.Dir(metadataPath)} {
		if err := store.Mkdir(dir); err != nil {
			return DownloadResult{}, err
		}
	}

	result := DownloadResult{VideoID: videoID, Status: model.StatusSucceeded}

	if opts.SkipExisting && fileExists(metadataPath) &&
		(opts.SkipAudio || fileExists(audioPath)) &&
		(opts.SkipTranscripts || fileExists(transcriptPath)) {
		log.Infof("skipping, artifacts already present")
		result.Status = model.StatusSkipped
		result.AudioPath = existingPath(audioPath)
		result.TranscriptPath = existingPath(transcriptPath)
		result.MetadataPath = metadataPath
		return result, nil
	}

	progress := newLiveProgress(opts.Progress, 1, 1, 0, 0, 0, videoID, "")
	progress.Start()

	progress.SetPhase("metadata")
	info, err := probeVideo(watchURL(videoID), opts.CookiesPath)
	if err != nil {
		progress.Stop(fmt.Sprintf("fail  %s (%s)", videoID, classifyFetchError(err)))
		return DownloadResult{}, fmt.Errorf("probe video %s: %w", videoID, err)
	}
	result.Title = info.Title

	if !opts.SkipAudio {
		if !(opts.SkipExisting && fileExists(audioPath)) {
			progress.SetPhase("downloading")
			_, dlErr := ytdlp.DownloadAudio(ytdlp.AudioOptions{
				VideoURL:          watchURL(videoID),
				OutputDir:         filepath.Dir(audioPath),
				AudioQuality:      opts.AudioQuality,
				Fragments:         opts.Fragments,
				CookiesPath:       opts.CookiesPath,
				DownloadLimitMBps: opts.DownloadLimitMBps,
				Stdout:            os.Stdout,
				Stderr:            os.Stderr,
				EchoOutput:        opts.RawOutput,
				Progress:          progress.Handle,
			})
			if dlErr != nil {
				progress.Stop(fmt.Sprintf("fail  %s (%s)", videoID, classifyFetchError(dlErr)))
				return DownloadResult{}, fmt.Errorf("download audio for %s: %w", videoID, dlErr)
			}
			if !fileExists(audioPath) {
				progress.Stop(fmt.Sprintf("fail  %s (download_error)", videoID))
				return DownloadResult{}, fmt.Errorf("downloader reported success but %s is missing", audioPath)
			}
		}
		result.AudioPath = audioPath
	}

	if !opts.SkipTranscripts {
		if opts.SkipExisting && fileExists(transcriptPath) {
			var bundle model.TranscriptBundle
			if err := store.ReadJSON(transcriptPath, &bundle); err == nil {
				result.TranscriptLanguage = bundle.Language
				result.TranscriptTier = bundle.Tier
			}
			result.TranscriptPath = transcriptPath
		} else {
			progress.SetPhase("transcript")
			bundle, err := opts.Transcripts.Fetch(ctx, videoID, opts.Languages)
			if err != nil {
				log.Warnf("transcript unavailable: %v", err)
			} else {
				if err := store.WriteJSON(transcriptPath, bundle); err != nil {
					progress.Stop(fmt.Sprintf("fail  %s (filesystem_error)", videoID))
					return DownloadResult{}, err
				}
				result.TranscriptPath = transcriptPath
				result.TranscriptLanguage = bundle.Language
				result.TranscriptTier = bundle.Tier
			}
		}
	}

	var duration int64
	if info.Duration != nil {
		duration = int64(*info.Duration)
	}
	channel := info.Channel
	if channel == "" {
		channel = info.Uploader
	}
	webpageURL := info.WebpageURL
	if webpageURL == "" {
		webpageURL = watchURL(videoID)
	}
	meta := model.VideoMetadata{
		VideoID:            videoID,
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
		FetchedAt:          time.Now().UTC().Format(time.RFC3339),
		AudioPath:          result.AudioPath,
		TranscriptPath:     result.TranscriptPath,
		TranscriptLanguage: result.TranscriptLanguage,
		TranscriptTier:     result.TranscriptTier,
	}
	if err := store.WriteJSON(metadataPath, meta); err != nil {
		progress.Stop(fmt.Sprintf("fail  %s (filesystem_error)", videoID))
		return DownloadResult{}, err
	}
	result.MetadataPath = metadataPath

	progress.Stop(fmt.Sprintf("done  %s", videoID))
	return result, nil
}

// ExtractVideoID accepts watch/short/embed URLs or a bare video id.
func ExtractVideoID(source string) (string, error) {
	s := strings.TrimSpace(source)
	if s == "" {
		return "", fmt.Errorf("video URL is required")
	}
	if !strings.Contains(s, "://") && !strings.Contains(s, "/") {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse video URL: %w", err)
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")
	switch {
	case host == "youtu.be" && path != "":
		return strings.SplitN(path, "/", 2)[0], nil
	case strings.HasPrefix(path, "shorts/"), strings.HasPrefix(path, "embed/"), strings.HasPrefix(path, "live/"):
		parts := strings.Split(path, "/")
		if len(parts) >= 2 && parts[1] != "" {
			return parts[1], nil
		}
	}
	return "", fmt.Errorf("no video id in URL %q", source)
}

func existingPath(path string) string {
	if fileExists(path) {
		return path
	}
	return ""
}

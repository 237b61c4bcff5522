// Package ingest drives the sequential playlist pipeline: enumerate entries,
// then per video download audio, fetch a transcript, and write metadata,
// checkpointing the manifest after every video.
package ingest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"yt-ingest/internal/ytdlp"
)

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,}$`)

// ExtractPlaylistID accepts a playlist URL or a bare playlist id.
func ExtractPlaylistID(source string) (string, error) {
	s := strings.TrimSpace(source)
	if s == "" {
		return "", fmt.Errorf("playlist URL is required")
	}
	if !strings.Contains(s, "://") && playlistIDPattern.MatchString(s) {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse playlist URL: %w", err)
	}
	if id := u.Query().Get("list"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no playlist id in URL %q (expected a list= parameter)", source)
}

// CanonicalPlaylistURL normalizes a source to the plain playlist page URL.
func CanonicalPlaylistURL(source string) string {
	id, err := ExtractPlaylistID(source)
	if err != nil {
		return strings.TrimSpace(source)
	}
	return "https://www.youtube.com/playlist?list=" + id
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

type playlistEntry struct {
	VideoID         string
	Title           string
	Channel         string
	DurationSeconds int64
	URL             string
}

type flatPlaylist struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Entries []struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		URL      string   `json:"url"`
		Duration *float64 `json:"duration"`
		Channel  string   `json:"channel"`
		Uploader string   `json:"uploader"`
	} `json:"entries"`
}

// enumerateEntries lists the playlist without downloading anything. Duplicate
// video ids collapse onto the first occurrence so each video maps to exactly
// one manifest record.
func enumerateEntries(sourceURL, cookiesPath string) (string, []playlistEntry, error) {
	raw, err := ytdlp.FlatPlaylistJSON(ytdlp.FlatPlaylistOptions{
		SourceURL:   sourceURL,
		CookiesPath: cookiesPath,
	})
	if err != nil {
		return "", nil, err
	}

	var flat flatPlaylist
	if err := json.Unmarshal(raw, &flat); err != nil {
		return "", nil, fmt.Errorf("decode flat playlist JSON: %w", err)
	}

	seen := make(map[string]bool, len(flat.Entries))
	entries := make([]playlistEntry, 0, len(flat.Entries))
	for _, e := range flat.Entries {
		id := strings.TrimSpace(e.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		channel := e.Channel
		if channel == "" {
			channel = e.Uploader
		}
		entryURL := strings.TrimSpace(e.URL)
		if entryURL == "" {
			entryURL = watchURL(id)
		}
		var duration int64
		if e.Duration != nil {
			duration = int64(*e.Duration)
		}
		entries = append(entries, playlistEntry{
			VideoID:         id,
			Title:           e.Title,
			Channel:         channel,
			DurationSeconds: duration,
			URL:             entryURL,
		})
	}
	return flat.Title, entries, nil
}

// videoInfo is the subset of yt-dlp's single-video JSON persisted as the
// metadata record.
type videoInfo struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Channel       string   `json:"channel"`
	Uploader      string   `json:"uploader"`
	UploaderID    string   `json:"uploader_id"`
	ChannelID     string   `json:"channel_id"`
	Duration      *float64 `json:"duration"`
	ViewCount     int64    `json:"view_count"`
	LikeCount     int64    `json:"like_count"`
	WebpageURL    string   `json:"webpage_url"`
	Thumbnail     string   `json:"thumbnail"`
	PlaylistIndex int      `json:"playlist_index"`
}

func probeVideo(videoURL, cookiesPath string) (videoInfo, error) {
	raw, err := ytdlp.VideoInfoJSON(ytdlp.VideoInfoOptions{
		VideoURL:    videoURL,
		CookiesPath: cookiesPath,
	})
	if err != nil {
		return videoInfo{}, err
	}
	var info videoInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return videoInfo{}, fmt.Errorf("decode video info JSON: %w", err)
	}
	return info, nil
}

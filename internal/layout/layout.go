// Package layout computes the canonical on-disk layout for one ingested
// playlist:
//
//	<root>/<playlist_id>/audio/<video_id>.mp3
//	<root>/<playlist_id>/transcripts/<video_id>.json
//	<root>/<playlist_id>/metadata/<video_id>.json
//	<root>/<playlist_id>/logs/<index>_<video_id>.log
//	<root>/<playlist_id>/manifest.json
package layout

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"yt-ingest/internal/store"
)

const ManifestName = "manifest.json"

// PlaylistLayout is a pure function of output root and playlist id. It never
// deletes or overwrites; writers decide that.
type PlaylistLayout struct {
	Root       string
	PlaylistID string
}

func New(root, playlistID string) (PlaylistLayout, error) {
	r := strings.TrimSpace(root)
	if r == "" {
		r = "data"
	}
	id := SanitizeID(playlistID)
	if id == "" {
		return PlaylistLayout{}, fmt.Errorf("playlist id is required")
	}
	return PlaylistLayout{Root: r, PlaylistID: id}, nil
}

func (l PlaylistLayout) Dir() string {
	return filepath.Join(l.Root, l.PlaylistID)
}

func (l PlaylistLayout) AudioDir() string {
	return filepath.Join(l.Dir(), "audio")
}

func (l PlaylistLayout) TranscriptsDir() string {
	return filepath.Join(l.Dir(), "transcripts")
}

func (l PlaylistLayout) MetadataDir() string {
	return filepath.Join(l.Dir(), "metadata")
}

func (l PlaylistLayout) LogsDir() string {
	return filepath.Join(l.Dir(), "logs")
}

func (l PlaylistLayout) AudioPath(videoID string) string {
	return filepath.Join(l.AudioDir(), safeFileID(videoID)+".mp3")
}

func (l PlaylistLayout) TranscriptPath(videoID string) string {
	return filepath.Join(l.TranscriptsDir(), safeFileID(videoID)+".json")
}

func (l PlaylistLayout) MetadataPath(videoID string) string {
	return filepath.Join(l.MetadataDir(), safeFileID(videoID)+".json")
}

func (l PlaylistLayout) LogPath(index int, videoID string) string {
	return filepath.Join(l.LogsDir(), fmt.Sprintf("%04d_%s.log", index, safeFileID(videoID)))
}

func (l PlaylistLayout) ManifestPath() string {
	return filepath.Join(l.Dir(), ManifestName)
}

// EnsureDirs creates the playlist directory tree. Safe to call repeatedly.
func (l PlaylistLayout) EnsureDirs() error {
	for _, dir := range []string{l.Dir(), l.AudioDir(), l.TranscriptsDir(), l.MetadataDir(), l.LogsDir()} {
		if err := store.Mkdir(dir); err != nil {
			return err
		}
	}
	return nil
}

// Rel returns path relative to the playlist directory, for manifest and
// metadata records that must survive relocation of the dataset root.
func (l PlaylistLayout) Rel(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	rel, err := filepath.Rel(l.Dir(), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

var invalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeID maps an arbitrary identifier onto a filesystem-safe form.
func SanitizeID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return invalidIDChars.ReplaceAllString(s, "_")
}

func safeFileID(id string) string {
	clean := SanitizeID(id)
	if clean == "" {
		return "unknown"
	}
	return clean
}

package registry

import (
	"errors"
	"os"
	"sort"
	"strings"

	"yt-ingest/internal/ingest"
	"yt-ingest/internal/layout"
	"yt-ingest/internal/model"
	"yt-ingest/internal/store"
)

type StatusOptions struct {
	ConfigPath string
	Playlist   string
	All        bool
}

type StatusResult struct {
	ConfigPath string       `json:"config_path"`
	Rows       []StatusItem `json:"playlists"`
	Totals     StatusTotals `json:"totals"`
}

type StatusItem struct {
	Playlist      string `json:"playlist"`
	PlaylistID    string `json:"playlist_id,omitempty"`
	PlaylistURL   string `json:"playlist_url"`
	PlaylistTitle string `json:"playlist_title,omitempty"`
	Dir           string `json:"dir,omitempty"`
	State         string `json:"state"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	Total         int    `json:"total_count"`
	Succeeded     int    `json:"succeeded_count"`
	Failed        int    `json:"failed_count"`
	Skipped       int    `json:"skipped_count"`
	Pending       int    `json:"pending_count"`
	Running       int    `json:"running_count"`
}

type StatusTotals struct {
	Playlists     int `json:"playlists"`
	Healthy       int `json:"healthy"`
	Attention     int `json:"attention"`
	NeverIngested int `json:"never_ingested"`
	TotalVideos   int `json:"total_videos"`
	Succeeded     int `json:"succeeded_count"`
	Failed        int `json:"failed_count"`
	Skipped       int `json:"skipped_count"`
	Pending       int `json:"pending_count"`
	Running       int `json:"running_count"`
}

// Status builds a per-playlist rollup from the on-disk manifests.
func Status(opts StatusOptions) (StatusResult, error) {
	configPath := normalizeConfigPath(opts.ConfigPath)
	reg, _, err := EnsureRegistry(configPath)
	if err != nil {
		return StatusResult{}, err
	}

	playlists, err := ResolveSelection(configPath, opts.Playlist, opts.All, false)
	if err != nil {
		return StatusResult{}, err
	}

	rows := make([]StatusItem, 0, len(playlists))
	totals := StatusTotals{}
	for _, p := range playlists {
		row, err := buildStatusRow(p, reg.Global)
		if err != nil {
			return StatusResult{}, err
		}
		rows = append(rows, row)
		totals.Playlists++
		totals.TotalVideos += row.Total
		totals.Succeeded += row.Succeeded
		totals.Failed += row.Failed
		totals.Skipped += row.Skipped
		totals.Pending += row.Pending
		totals.Running += row.Running
		switch row.State {
		case "healthy":
			totals.Healthy++
		case "never_ingested":
			totals.NeverIngested++
		default:
			totals.Attention++
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Playlist < rows[j].Playlist
	})

	return StatusResult{ConfigPath: configPath, Rows: rows, Totals: totals}, nil
}

func buildStatusRow(p Playlist, global GlobalSettings) (StatusItem, error) {
	row := StatusItem{
		Playlist:    p.Name,
		PlaylistURL: p.PlaylistURL,
		State:       "never_ingested",
	}

	playlistID, err := ingest.ExtractPlaylistID(p.PlaylistURL)
	if err != nil {
		row.State = "bad_url"
		return row, nil
	}
	row.PlaylistID = playlistID

	eff := ResolveEffectiveSettings(p, global)
	lay, err := layout.New(eff.OutputRoot, playlistID)
	if err != nil {
		return StatusItem{}, err
	}

	var mf model.Manifest
	if err := store.ReadJSON(lay.ManifestPath(), &mf); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return row, nil
		}
		return StatusItem{}, err
	}

	row.Dir = lay.Dir()
	row.PlaylistTitle = strings.TrimSpace(mf.PlaylistTitle)
	row.UpdatedAt = strings.TrimSpace(mf.UpdatedAt)
	if row.UpdatedAt == "" {
		row.UpdatedAt = strings.TrimSpace(mf.GeneratedAt)
	}
	row.Total = mf.Total
	row.Succeeded = mf.Succeeded
	row.Failed = mf.Failed
	row.Skipped = mf.Skipped
	row.Pending = mf.Pending
	row.Running = mf.Running
	row.State = summarizeState(row)
	return row, nil
}

func summarizeState(row StatusItem) string {
	switch {
	case row.Dir == "":
		return "never_ingested"
	case row.Running > 0:
		return "in_progress"
	case row.Failed > 0:
		return "has_failures"
	case row.Pending > 0:
		return "queued"
	default:
		return "healthy"
	}
}

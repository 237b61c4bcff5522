package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"yt-ingest/internal/layout"
	"yt-ingest/internal/model"
	"yt-ingest/internal/store"
)

const testPlaylistURL = "https://www.youtube.com/playlist?list=PLtest"

func readManifest(t *testing.T, root string) model.Manifest {
	t.Helper()
	var mf model.Manifest
	if err := store.ReadJSON(filepath.Join(root, "PLtest", layout.ManifestName), &mf); err != nil {
		t.Fatal(err)
	}
	return mf
}

func recordByID(t *testing.T, mf model.Manifest, videoID string) model.VideoRecord {
	t.Helper()
	for _, rec := range mf.Videos {
		if rec.VideoID == videoID {
			return rec
		}
	}
	t.Fatalf("no record for video %s in manifest", videoID)
	return model.VideoRecord{}
}

func TestRunIngestsPlaylist(t *testing.T) {
	// vid2 appears twice; duplicates collapse onto one record.
	installFakeTools(t, flatPlaylistJSON("My Playlist", "vid1", "vid2", "vid2", "vid3"))
	root := t.TempDir()
	transcripts := &fakeTranscripts{}

	res, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Languages:   []string{"en"},
		Transcripts: transcripts,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Succeeded != 3 || res.Failed != 0 || res.Total != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.PlaylistTitle != "My Playlist" {
		t.Fatalf("playlist title = %q", res.PlaylistTitle)
	}

	mf := readManifest(t, root)
	if len(mf.Videos) != 3 {
		t.Fatalf("expected 3 records, got %d", len(mf.Videos))
	}
	for _, id := range []string{"vid1", "vid2", "vid3"} {
		rec := recordByID(t, mf, id)
		if rec.Status != model.StatusSucceeded {
			t.Fatalf("video %s status = %s (%s)", id, rec.Status, rec.LastError)
		}
		if rec.AudioPath != "audio/"+id+".mp3" {
			t.Fatalf("video %s audio path = %q", id, rec.AudioPath)
		}
		playlistDir := filepath.Join(root, "PLtest")
		for _, p := range []string{rec.AudioPath, rec.TranscriptPath, rec.MetadataPath} {
			if p == "" {
				t.Fatalf("video %s missing artifact path: %+v", id, rec)
			}
			if _, err := os.Stat(filepath.Join(playlistDir, p)); err != nil {
				t.Fatalf("video %s artifact missing on disk: %v", id, err)
			}
		}
		if rec.TranscriptTier != model.TierManual || rec.TranscriptLanguage != "en" {
			t.Fatalf("video %s transcript tagging: %+v", id, rec)
		}
	}
	if len(transcripts.calls) != 3 {
		t.Fatalf("expected 3 transcript fetches, got %v", transcripts.calls)
	}
}

func TestRunMetadataIsASCIISafe(t *testing.T) {
	installFakeTools(t, flatPlaylistJSON("Lista", "vid1"))
	root := t.TempDir()

	_, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Transcripts: &fakeTranscripts{},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// The fake probe emits a title containing a non-ASCII rune.
	data, err := os.ReadFile(filepath.Join(root, "PLtest", "metadata", "vid1.json"))
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range data {
		if b > 0x7F {
			t.Fatalf("metadata contains raw non-ASCII byte 0x%02x at offset %d", b, i)
		}
	}
	var meta model.VideoMetadata
	if err := store.ReadJSON(filepath.Join(root, "PLtest", "metadata", "vid1.json"), &meta); err != nil {
		t.Fatalf("metadata not re-parseable: %v", err)
	}
	if meta.Title != "Tïtle vid1" {
		t.Fatalf("title round-trip: %q", meta.Title)
	}
}

func TestRunIsolatesPerVideoFailure(t *testing.T) {
	installFakeTools(t, flatPlaylistJSON("P", "vid1", "failvid", "vid3"))
	root := t.TempDir()

	res, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Transcripts: &fakeTranscripts{},
	})
	if err != nil {
		t.Fatalf("run should not fail on per-video errors: %v", err)
	}
	if res.Succeeded != 2 || res.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}

	mf := readManifest(t, root)
	failed := recordByID(t, mf, "failvid")
	if failed.Status != model.StatusFailed || failed.Reason != "download_error" {
		t.Fatalf("failvid record: %+v", failed)
	}
	if failed.LastError == "" {
		t.Fatalf("expected error detail on failed record")
	}
	if rec := recordByID(t, mf, "vid3"); rec.Status != model.StatusSucceeded {
		t.Fatalf("vid3 should still succeed after failvid: %+v", rec)
	}
}

func TestRunClassifiesUnavailableVideo(t *testing.T) {
	installFakeTools(t, flatPlaylistJSON("P", "badvid"))
	root := t.TempDir()

	_, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Transcripts: &fakeTranscripts{},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	rec := recordByID(t, readManifest(t, root), "badvid")
	if rec.Status != model.StatusFailed || rec.Reason != "video_unavailable" {
		t.Fatalf("badvid record: %+v", rec)
	}
}

func TestRunTranscriptFailureStillWritesMetadata(t *testing.T) {
	installFakeTools(t, flatPlaylistJSON("P", "vid1"))
	root := t.TempDir()

	_, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Transcripts: &fakeTranscripts{err: errors.New("no transcript available in any tier")},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	mf := readManifest(t, root)
	rec := recordByID(t, mf, "vid1")
	if rec.Status != model.StatusFailed || rec.Reason != "transcript_unavailable" {
		t.Fatalf("vid1 record: %+v", rec)
	}
	if rec.MetadataPath == "" {
		t.Fatalf("metadata path should be recorded despite transcript failure")
	}
	if _, err := os.Stat(filepath.Join(root, "PLtest", "metadata", "vid1.json")); err != nil {
		t.Fatalf("metadata file missing: %v", err)
	}
	if rec.TranscriptPath != "" {
		t.Fatalf("no transcript file should be recorded: %+v", rec)
	}
}

func TestRunMaxVideosTruncatesPlaylist(t *testing.T) {
	ids := []string{"v01", "v02", "v03", "v04", "v05", "v06", "v07", "v08", "v09", "v10"}
	installFakeTools(t, flatPlaylistJSON("Big", ids...))
	root := t.TempDir()

	res, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		MaxVideos:   3,
		Transcripts: &fakeTranscripts{},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Processed != 3 {
		t.Fatalf("processed = %d, want 3", res.Processed)
	}
	mf := readManifest(t, root)
	if len(mf.Videos) != 3 {
		t.Fatalf("manifest lists %d records, want 3", len(mf.Videos))
	}
}

func TestRunSkipExistingDoesNotReinvokeDownloader(t *testing.T) {
	callsPath := installFakeTools(t, flatPlaylistJSON("P", "vid1", "vid2"))
	root := t.TempDir()
	opts := RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Transcripts: &fakeTranscripts{},
	}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstCalls := countCalls(t, callsPath)
	if firstCalls != 2 {
		t.Fatalf("first run invoked downloader %d times, want 2", firstCalls)
	}

	opts.SkipExisting = true
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if countCalls(t, callsPath) != firstCalls {
		t.Fatalf("skip-existing run re-invoked the downloader")
	}
	if res.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", res.Skipped)
	}
	rec := recordByID(t, readManifest(t, root), "vid1")
	if rec.Status != model.StatusSkipped || rec.Reason != "already_ingested" {
		t.Fatalf("vid1 record: %+v", rec)
	}
}

func TestRunReingestsWhenAudioDeleted(t *testing.T) {
	callsPath := installFakeTools(t, flatPlaylistJSON("P", "vid1"))
	root := t.TempDir()
	opts := RunOptions{
		PlaylistURL:  testPlaylistURL,
		OutputRoot:   root,
		SkipExisting: true,
		Transcripts:  &fakeTranscripts{},
	}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := os.Remove(filepath.Join(root, "PLtest", "audio", "vid1.mp3")); err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("expected re-ingest to succeed: %+v", res)
	}
	if countCalls(t, callsPath) != 2 {
		t.Fatalf("expected a second download after audio deletion")
	}
}

func TestRunSkipAudioAndTranscriptsStillWritesMetadata(t *testing.T) {
	callsPath := installFakeTools(t, flatPlaylistJSON("P", "vid1"))
	root := t.TempDir()

	res, err := Run(context.Background(), RunOptions{
		PlaylistURL:     testPlaylistURL,
		OutputRoot:      root,
		SkipAudio:       true,
		SkipTranscripts: true,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if countCalls(t, callsPath) != 0 {
		t.Fatalf("downloader should not run with --skip-audio")
	}
	if _, err := os.Stat(filepath.Join(root, "PLtest", "metadata", "vid1.json")); err != nil {
		t.Fatalf("metadata file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "PLtest", "audio", "vid1.mp3")); !os.IsNotExist(err) {
		t.Fatalf("no audio file expected, stat err = %v", err)
	}
	rec := recordByID(t, readManifest(t, root), "vid1")
	if rec.AudioPath != "" || rec.TranscriptPath != "" || rec.MetadataPath == "" {
		t.Fatalf("unexpected artifact paths: %+v", rec)
	}
}

func TestRunResetsInterruptedRecords(t *testing.T) {
	installFakeTools(t, flatPlaylistJSON("P", "vid1"))
	root := t.TempDir()

	playlistDir := filepath.Join(root, "PLtest")
	if err := store.Mkdir(playlistDir); err != nil {
		t.Fatal(err)
	}
	mf := model.Manifest{
		SchemaVersion: 1,
		PlaylistID:    "PLtest",
		PlaylistURL:   testPlaylistURL,
		GeneratedAt:   "2026-01-01T00:00:00Z",
		Videos: []model.VideoRecord{
			{VideoID: "vid1", Index: 1, SourceURL: "https://www.youtube.com/watch?v=vid1", Status: model.StatusRunning},
		},
	}
	if err := store.WriteJSON(filepath.Join(playlistDir, layout.ManifestName), mf); err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Transcripts: &fakeTranscripts{},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("interrupted record not recovered: %+v", res)
	}
	rec := recordByID(t, readManifest(t, root), "vid1")
	if rec.Status != model.StatusSucceeded {
		t.Fatalf("vid1 record: %+v", rec)
	}
}

func TestRunMarksUnknownRecordStatusAsInternalError(t *testing.T) {
	installFakeTools(t, flatPlaylistJSON("P", "vid1"))
	root := t.TempDir()

	playlistDir := filepath.Join(root, "PLtest")
	if err := store.Mkdir(playlistDir); err != nil {
		t.Fatal(err)
	}
	// A manifest written by a newer or corrupted tool may carry a status this
	// build does not know. The record must land in failed with a reason that
	// does not blame the filesystem.
	mf := model.Manifest{
		SchemaVersion: 1,
		PlaylistID:    "PLtest",
		PlaylistURL:   testPlaylistURL,
		GeneratedAt:   "2026-01-01T00:00:00Z",
		Videos: []model.VideoRecord{
			{VideoID: "vid1", Index: 1, SourceURL: "https://www.youtube.com/watch?v=vid1", Status: "archived"},
		},
	}
	if err := store.WriteJSON(filepath.Join(playlistDir, layout.ManifestName), mf); err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), RunOptions{
		PlaylistURL: testPlaylistURL,
		OutputRoot:  root,
		Transcripts: &fakeTranscripts{},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	rec := recordByID(t, readManifest(t, root), "vid1")
	if rec.Status != model.StatusFailed {
		t.Fatalf("vid1 status = %s", rec.Status)
	}
	if rec.Reason != "internal_error" {
		t.Fatalf("vid1 reason = %q, want internal_error", rec.Reason)
	}
}

func TestRunRejectsBadPlaylistURL(t *testing.T) {
	installFakeTools(t, flatPlaylistJSON("P"))
	_, err := Run(context.Background(), RunOptions{
		PlaylistURL: "https://www.youtube.com/watch?v=notaplaylist",
		OutputRoot:  t.TempDir(),
		Transcripts: &fakeTranscripts{},
	})
	if err == nil {
		t.Fatalf("expected setup error for URL without list parameter")
	}
}

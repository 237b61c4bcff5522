package model

// Transcript tiers, in fallback priority order.
const (
	TierManual     = "manual"
	TierAuto       = "auto"
	TierTranslated = "translated"
)

// Manifest is the canonical per-playlist outcome file, checkpointed to
// <root>/<playlist_id>/manifest.json after every processed video.
type Manifest struct {
	SchemaVersion int           `json:"schema_version"`
	PlaylistID    string        `json:"playlist_id"`
	PlaylistURL   string        `json:"playlist_url"`
	PlaylistTitle string        `json:"playlist_title,omitempty"`
	IngestID      string        `json:"ingest_id,omitempty"`
	GeneratedAt   string        `json:"generated_at"`
	UpdatedAt     string        `json:"updated_at,omitempty"`
	Languages     []string      `json:"languages,omitempty"`
	Total         int           `json:"total"`
	Pending       int           `json:"pending"`
	Running       int           `json:"running"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	Videos        []VideoRecord `json:"videos"`
}

// VideoRecord is one video's outcome inside a Manifest. Paths are relative to
// the playlist directory and are only recorded once the file exists on disk.
type VideoRecord struct {
	VideoID            string `json:"video_id"`
	Index              int    `json:"index"`
	Title              string `json:"title,omitempty"`
	Channel            string `json:"channel,omitempty"`
	DurationSeconds    int64  `json:"duration_seconds,omitempty"`
	SourceURL          string `json:"source_url"`
	Status             string `json:"status"`
	Reason             string `json:"reason,omitempty"`
	LastError          string `json:"last_error,omitempty"`
	Attempts           int    `json:"attempts,omitempty"`
	LastAttemptAt      string `json:"last_attempt_at,omitempty"`
	IngestedAt         string `json:"ingested_at,omitempty"`
	AudioPath          string `json:"audio_path,omitempty"`
	TranscriptPath     string `json:"transcript_path,omitempty"`
	MetadataPath       string `json:"metadata_path,omitempty"`
	TranscriptLanguage string `json:"transcript_language,omitempty"`
	TranscriptTier     string `json:"transcript_tier,omitempty"`
}

// Segment is a single timed transcript line.
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// TranscriptBundle is the persisted per-video transcript record. It is written
// once by the transcript fetcher and never mutated afterwards.
type TranscriptBundle struct {
	VideoID   string    `json:"video_id"`
	Language  string    `json:"language"`
	Tier      string    `json:"tier"`
	FetchedAt string    `json:"fetched_at"`
	Segments  []Segment `json:"segments"`
}

// VideoMetadata is the per-video metadata record written to
// metadata/<video_id>.json.
type VideoMetadata struct {
	VideoID            string `json:"video_id"`
	Title              string `json:"title,omitempty"`
	Description        string `json:"description,omitempty"`
	Channel            string `json:"channel,omitempty"`
	UploaderID         string `json:"uploader_id,omitempty"`
	ChannelID          string `json:"channel_id,omitempty"`
	DurationSeconds    int64  `json:"duration_seconds,omitempty"`
	ViewCount          int64  `json:"view_count,omitempty"`
	LikeCount          int64  `json:"like_count,omitempty"`
	WebpageURL         string `json:"webpage_url"`
	Thumbnail          string `json:"thumbnail,omitempty"`
	PlaylistIndex      int    `json:"playlist_index,omitempty"`
	FetchedAt          string `json:"fetched_at"`
	AudioPath          string `json:"audio_path,omitempty"`
	TranscriptPath     string `json:"transcript_path,omitempty"`
	TranscriptLanguage string `json:"transcript_language,omitempty"`
	TranscriptTier     string `json:"transcript_tier,omitempty"`
}

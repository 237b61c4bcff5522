// Package transcript retrieves YouTube caption tracks over the Innertube
// /player endpoint and timedtext caption URLs, and applies the tiered
// manual -> auto-generated -> translated fallback.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"yt-ingest/internal/model"
)

const (
	playerEndpoint   = "https://www.youtube.com/youtubei/v1/player"
	androidVersion   = "20.10.38"
	androidUserAgent = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"

	maxPlayerBody    = 3 * 1024 * 1024
	maxTimedTextBody = 512 * 1024
)

// ErrTranscriptsDisabled reports that the video exposes no caption data at
// all (disabled captions, unavailable video).
var ErrTranscriptsDisabled = errors.New("transcripts are not available for this video")

// Track is one caption track advertised by the player response.
type Track struct {
	BaseURL      string
	LanguageCode string
	Name         string
	Kind         string // "asr" marks auto-generated tracks
	Translatable bool
}

// IsGenerated reports whether the track is auto-generated rather than
// manually authored.
func (t Track) IsGenerated() bool {
	return t.Kind == "asr"
}

type Client struct {
	httpClient *http.Client
	playerURL  string
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		playerURL:  playerEndpoint,
	}
}

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL        string `json:"baseUrl"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"`
	IsTranslatable bool   `json:"isTranslatable"`
	Name           struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

// ListTracks fetches the caption track list for a video via the ANDROID
// Innertube /player endpoint.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	reqBody, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: playerContext{
			Client: playerClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.playerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("innertube player: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube player: HTTP %d: %s", resp.StatusCode, snippet)
	}

	var player playerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPlayerBody)).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrTranscriptsDisabled, player.PlayabilityStatus.Reason)
		}
		return nil, ErrTranscriptsDisabled
	}

	raw := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(raw) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		if strings.TrimSpace(t.BaseURL) == "" {
			continue
		}
		tracks = append(tracks, Track{
			BaseURL:      t.BaseURL,
			LanguageCode: t.LanguageCode,
			Name:         t.Name.SimpleText,
			Kind:         t.Kind,
			Translatable: t.IsTranslatable,
		})
	}
	if len(tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}
	return tracks, nil
}

type timedText struct {
	Lines []timedLine `xml:"text"`
}

type timedLine struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",chardata"`
}

// fetchSegments downloads and parses one caption track. A non-empty
// targetLang requests server-side translation via the timedtext tlang param.
func (c *Client) fetchSegments(ctx context.Context, track Track, targetLang string) ([]model.Segment, error) {
	captionURL := track.BaseURL
	if strings.TrimSpace(targetLang) != "" {
		translated, err := withTranslationParam(captionURL, targetLang)
		if err != nil {
			return nil, err
		}
		captionURL = translated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", androidUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBody))
	if err != nil {
		return nil, err
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]model.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := cleanCaptionText(line.Text)
		if text == "" {
			continue
		}
		segments = append(segments, model.Segment{
			Start:    line.Start,
			Duration: line.Dur,
			Text:     text,
		})
	}
	if len(segments) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return segments, nil
}

func withTranslationParam(rawURL, targetLang string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse caption URL: %w", err)
	}
	q := u.Query()
	q.Set("tlang", targetLang)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var captionMarkup = regexp.MustCompile(`<[^>]*>`)
var captionSpaces = regexp.MustCompile(`\s+`)

func cleanCaptionText(raw string) string {
	text := html.UnescapeString(raw)
	text = captionMarkup.ReplaceAllString(text, " ")
	text = captionSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

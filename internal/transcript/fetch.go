package transcript

import (
	"context"
	"errors"
	"time"

	"yt-ingest/internal/model"
)

// ErrNoTranscript reports that every tier was attempted and none produced a
// usable transcript.
var ErrNoTranscript = errors.New("no transcript available in any tier")

// DefaultLanguages pads the caller's preference list so that common English
// variants are still tried when the caller asks for a language the video
// lacks.
var DefaultLanguages = []string{"en", "en-US", "en-GB"}

// Fetch retrieves the best available transcript for a video. Tiers are
// attempted strictly in order: manually-created tracks in requested-language
// order, then auto-generated tracks in the same order, then server-side
// translation of any translatable track into the first requested language.
// The first tier that yields segments wins.
func (c *Client) Fetch(ctx context.Context, videoID string, languages []string) (model.TranscriptBundle, error) {
	tracks, err := c.ListTracks(ctx, videoID)
	if err != nil {
		return model.TranscriptBundle{}, err
	}

	langs := normalizeLanguages(languages)

	attempts := []func(context.Context, []Track, []string) (model.TranscriptBundle, bool){
		c.tryManual,
		c.tryGenerated,
		c.tryTranslated,
	}
	for _, attempt := range attempts {
		bundle, ok := attempt(ctx, tracks, langs)
		if ok {
			bundle.VideoID = videoID
			bundle.FetchedAt = time.Now().UTC().Format(time.RFC3339)
			return bundle, nil
		}
	}
	return model.TranscriptBundle{}, ErrNoTranscript
}

func (c *Client) tryManual(ctx context.Context, tracks []Track, langs []string) (model.TranscriptBundle, bool) {
	for _, lang := range langs {
		for _, track := range tracks {
			if track.IsGenerated() || track.LanguageCode != lang {
				continue
			}
			segments, err := c.fetchSegments(ctx, track, "")
			if err != nil {
				continue
			}
			return model.TranscriptBundle{
				Language: track.LanguageCode,
				Tier:     model.TierManual,
				Segments: segments,
			}, true
		}
	}
	return model.TranscriptBundle{}, false
}

func (c *Client) tryGenerated(ctx context.Context, tracks []Track, langs []string) (model.TranscriptBundle, bool) {
	for _, lang := range langs {
		for _, track := range tracks {
			if !track.IsGenerated() || track.LanguageCode != lang {
				continue
			}
			segments, err := c.fetchSegments(ctx, track, "")
			if err != nil {
				continue
			}
			return model.TranscriptBundle{
				Language: track.LanguageCode,
				Tier:     model.TierAuto,
				Segments: segments,
			}, true
		}
	}
	return model.TranscriptBundle{}, false
}

// tryTranslated asks YouTube to translate any translatable track into the
// first requested language. Manual tracks are preferred as translation
// sources over auto-generated ones.
func (c *Client) tryTranslated(ctx context.Context, tracks []Track, langs []string) (model.TranscriptBundle, bool) {
	if len(langs) == 0 {
		return model.TranscriptBundle{}, false
	}
	target := langs[0]

	sources := make([]Track, 0, len(tracks))
	for _, track := range tracks {
		if track.Translatable && !track.IsGenerated() {
			sources = append(sources, track)
		}
	}
	for _, track := range tracks {
		if track.Translatable && track.IsGenerated() {
			sources = append(sources, track)
		}
	}

	for _, track := range sources {
		segments, err := c.fetchSegments(ctx, track, target)
		if err != nil {
			continue
		}
		return model.TranscriptBundle{
			Language: target,
			Tier:     model.TierTranslated,
			Segments: segments,
		}, true
	}
	return model.TranscriptBundle{}, false
}

// normalizeLanguages dedupes the requested list and appends the default
// English fallbacks so a preference list never ends up empty.
func normalizeLanguages(languages []string) []string {
	seen := make(map[string]bool, len(languages)+len(DefaultLanguages))
	out := make([]string, 0, len(languages)+len(DefaultLanguages))
	for _, lang := range languages {
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	for _, lang := range DefaultLanguages {
		if seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}

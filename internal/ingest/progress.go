package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"yt-ingest/internal/ytdlp"
)

var (
	rePct   = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)%`)
	reSpeed = regexp.MustCompile(`\bat\s+([^\s]+)`) // yt-dlp [download] ... at X
	reETA   = regexp.MustCompile(`\bETA\s+([0-9:]+)`)
	reOf    = regexp.MustCompile(`\bof\s+([^\s]+)`)
)

type liveProgress struct {
	enabled bool

	index     int
	total     int
	succeeded int
	failed    int
	skipped   int
	videoID   string
	title     string

	mu    sync.Mutex
	phase string
	pct   string
	speed string
	eta   string
	size  string

	stop chan struct{}
}

func newLiveProgress(enabled bool, index, total, succeeded, failed, skipped int, videoID, title string) *liveProgress {
	return &liveProgress{
		enabled:   enabled,
		index:     index,
		total:     total,
		succeeded: succeeded,
		failed:    failed,
		skipped:   skipped,
		videoID:   videoID,
		title:     title,
		phase:     "starting",
		stop:      make(chan struct{}),
	}
}

func (p *liveProgress) Start() {
	if !p.enabled {
		return
	}
	go func() {
		t := time.NewTicker(700 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-t.C:
				fmt.Printf("\r\033[2K%s", p.render())
			}
		}
	}()
}

func (p *liveProgress) Stop(final string) {
	if !p.enabled {
		fmt.Println(final)
		return
	}
	close(p.stop)
	fmt.Printf("\r\033[2K%s\n", final)
}

func (p *liveProgress) SetPhase(phase string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	p.phase = phase
	// Stale percentages from the audio phase would mislabel the
	// transcript phase.
	p.pct = ""
	p.speed = ""
	p.eta = ""
	p.mu.Unlock()
}

// Handle consumes yt-dlp/ffmpeg output lines and extracts download state.
func (p *liveProgress) Handle(stream ytdlp.OutputStream, line string) {
	if !p.enabled {
		return
	}
	l := strings.TrimSpace(line)
	if l == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.HasPrefix(l, "[youtube]") {
		p.phase = "metadata"
	}
	if strings.HasPrefix(l, "[ExtractAudio]") {
		p.phase = "extracting audio"
	}
	if strings.HasPrefix(l, "[download]") {
		p.phase = "downloading"
		if m := rePct.FindStringSubmatch(l); len(m) > 1 {
			p.pct = m[1] + "%"
		}
		if m := reSpeed.FindStringSubmatch(l); len(m) > 1 {
			p.speed = m[1]
		}
		if m := reETA.FindStringSubmatch(l); len(m) > 1 {
			p.eta = m[1]
		}
		if m := reOf.FindStringSubmatch(l); len(m) > 1 {
			p.size = m[1]
		}
	}
}

func (p *liveProgress) render() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := p.title
	if r := []rune(title); len(r) > 52 {
		title = string(r[:52]) + "..."
	}

	parts := []string{fmt.Sprintf("[%d/%d] %s", p.index, p.total, p.videoID), p.phase}
	if p.succeeded > 0 {
		parts = append(parts, fmt.Sprintf("ok:%d", p.succeeded))
	}
	if p.failed > 0 || p.skipped > 0 {
		parts = append(parts, fmt.Sprintf("fail:%d skip:%d", p.failed, p.skipped))
	}
	if p.pct != "" {
		parts = append(parts, p.pct)
	}
	if p.speed != "" {
		parts = append(parts, p.speed)
	}
	if p.eta != "" {
		parts = append(parts, "ETA "+p.eta)
	}
	if p.size != "" {
		parts = append(parts, p.size)
	}
	parts = append(parts, "| "+title)
	return strings.Join(parts, "  ")
}

// Package ytdlp wraps the yt-dlp binary for playlist listing, per-video
// metadata probes, and MP3 audio extraction. ffmpeg is required by yt-dlp for
// the mp3 transcode step.
package ytdlp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

type OutputStream string

const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// DefaultAudioQuality matches yt-dlp's --audio-quality for mp3 extraction.
const DefaultAudioQuality = "192K"

type FlatPlaylistOptions struct {
	SourceURL   string
	CookiesPath string
}

type VideoInfoOptions struct {
	VideoURL    string
	CookiesPath string
}

type AudioOptions struct {
	VideoURL          string
	OutputDir         string
	AudioQuality      string
	Fragments         int
	CookiesPath       string
	DownloadLimitMBps float64
	Stdout            io.Writer
	Stderr            io.Writer
	LogWriter         io.Writer
	EchoOutput        bool
	Progress          func(stream OutputStream, line string)
}

type AudioResult struct {
	Command []string
}

type DependencyReport struct {
	YTDLPFound  bool   `json:"yt_dlp_found"`
	YTDLPPath   string `json:"yt_dlp_path,omitempty"`
	FFmpegFound bool   `json:"ffmpeg_found"`
	FFmpegPath  string `json:"ffmpeg_path,omitempty"`
}

func DependencyStatus() DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath("yt-dlp"); err == nil {
		report.YTDLPFound = true
		report.YTDLPPath = path
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	return report
}

func CheckDependencies() error {
	report := DependencyStatus()
	if !report.YTDLPFound {
		return fmt.Errorf("missing dependency: yt-dlp is not installed or not on PATH")
	}
	if !report.FFmpegFound {
		return fmt.Errorf("missing dependency: ffmpeg is required for mp3 extraction and was not found on PATH")
	}
	return nil
}

// FlatPlaylistJSON returns yt-dlp's raw flat-playlist JSON for a source URL.
func FlatPlaylistJSON(opts FlatPlaylistOptions) ([]byte, error) {
	if strings.TrimSpace(opts.SourceURL) == "" {
		return nil, fmt.Errorf("source URL is required")
	}

	args := []string{"--flat-playlist", "-J"}
	args, err := appendCookiesArgs(args, opts.CookiesPath)
	if err != nil {
		return nil, err
	}
	args = append(args, opts.SourceURL)
	return captureJSON(args)
}

// VideoInfoJSON returns yt-dlp's full metadata JSON for a single video,
// without downloading anything.
func VideoInfoJSON(opts VideoInfoOptions) ([]byte, error) {
	if strings.TrimSpace(opts.VideoURL) == "" {
		return nil, fmt.Errorf("video URL is required")
	}

	args := []string{"--no-playlist", "--skip-download", "-J"}
	args, err := appendCookiesArgs(args, opts.CookiesPath)
	if err != nil {
		return nil, err
	}
	args = append(args, opts.VideoURL)
	return captureJSON(args)
}

// DownloadAudio fetches one video and transcodes it to <output_dir>/<id>.mp3.
func DownloadAudio(opts AudioOptions) (AudioResult, error) {
	if strings.TrimSpace(opts.VideoURL) == "" {
		return AudioResult{}, fmt.Errorf("video URL is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return AudioResult{}, fmt.Errorf("output directory is required")
	}
	fragments := opts.Fragments
	if fragments <= 0 {
		fragments = 4
	}
	quality := strings.TrimSpace(opts.AudioQuality)
	if quality == "" {
		quality = DefaultAudioQuality
	}

	args := []string{
		"--no-playlist",
		"--newline",
		"-N", fmt.Sprintf("%d", fragments),
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", quality,
		"-P", opts.OutputDir,
		"-o", "%(id)s.%(ext)s",
	}
	var err error
	args, err = appendCookiesArgs(args, opts.CookiesPath)
	if err != nil {
		return AudioResult{}, err
	}
	if opts.DownloadLimitMBps > 0 {
		args = append(args, "--limit-rate", formatRateLimitMBps(opts.DownloadLimitMBps))
	}
	args = append(args, opts.VideoURL)

	if err := runCommand(args, opts); err != nil {
		return AudioResult{Command: append([]string{"yt-dlp"}, args...)}, err
	}
	return AudioResult{Command: append([]string{"yt-dlp"}, args...)}, nil
}

func appendCookiesArgs(args []string, cookiesPath string) ([]string, error) {
	if strings.TrimSpace(cookiesPath) == "" {
		return args, nil
	}
	resolved, err := resolveCookiesPath(cookiesPath)
	if err != nil {
		return nil, err
	}
	return append(args, "--cookies", resolved), nil
}

func captureJSON(args []string) ([]byte, error) {
	cmd := exec.Command("yt-dlp", args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("yt-dlp returned empty output")
	}
	return stdout.Bytes(), nil
}

func runCommand(args []string, opts AudioOptions) error {
	cmd := exec.Command("yt-dlp", args...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("setup stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("setup stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start yt-dlp: %w", err)
	}

	var outBuf strings.Builder
	var errBuf strings.Builder
	var mu sync.Mutex
	var wg sync.WaitGroup

	read := func(stream OutputStream, r io.Reader, echoW io.Writer) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			appendLimited(&outBuf, &errBuf, stream, line)
			if opts.LogWriter != nil {
				_, _ = io.WriteString(opts.LogWriter, line+"\n")
			}
			mu.Unlock()

			if opts.EchoOutput && echoW != nil {
				_, _ = io.WriteString(echoW, line+"\n")
			}
			if opts.Progress != nil {
				opts.Progress(stream, line)
			}
		}
	}

	wg.Add(2)
	go read(StreamStdout, stdoutPipe, opts.Stdout)
	go read(StreamStderr, stderrPipe, opts.Stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Errorf("yt-dlp failed: %w\n%s\n%s", err, strings.TrimSpace(errBuf.String()), strings.TrimSpace(outBuf.String()))
	}
	return nil
}

// splitByNewlineOrCR treats both \n and \r as line boundaries so yt-dlp's
// carriage-return progress updates arrive as individual lines.
func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func appendLimited(outBuf, errBuf *strings.Builder, stream OutputStream, line string) {
	const maxKeep = 8192
	b := outBuf
	if stream == StreamStderr {
		b = errBuf
	}
	if b.Len() >= maxKeep {
		return
	}
	toWrite := line + "\n"
	remain := maxKeep - b.Len()
	if len(toWrite) > remain {
		toWrite = toWrite[:remain]
	}
	b.WriteString(toWrite)
}

func formatRateLimitMBps(v float64) string {
	return fmt.Sprintf("%gM", v)
}

func resolveCookiesPath(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve cookies path %s: %w", p, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("cookies file %s: %w", abs, err)
	}
	return abs, nil
}

package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ExtractTimeout bounds a single frame extraction; a stuck ffmpeg process
// must not hold a worker or a request forever.
const ExtractTimeout = 30 * time.Second

// FrameExtractor produces a single representative frame from a video file.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, sourcePath string) (image.Image, error)
}

// FFmpegExtractor extracts the midpoint frame of a video by shelling out to
// ffprobe and ffmpeg.
type FFmpegExtractor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegExtractor returns an extractor using ffmpeg and ffprobe from PATH.
func NewFFmpegExtractor() *FFmpegExtractor {
	return &FFmpegExtractor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
	}
}

// CheckFFmpeg verifies that ffmpeg and ffprobe are available on PATH.
func CheckFFmpeg() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found in PATH: %w", tool, err)
		}
	}
	return nil
}

// ExtractFrame decodes one frame from the middle of the video. Videos with
// no parseable positive duration are rejected rather than guessed at.
func (e *FFmpegExtractor) ExtractFrame(ctx context.Context, sourcePath string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, ExtractTimeout)
	defer cancel()

	duration, err := e.probeDuration(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	// Seek to the midpoint, backed off slightly from the end so the seek
	// always lands on a decodable frame.
	seek := duration / 2
	if seek > duration-0.1 {
		seek = duration - 0.1
	}
	if seek < 0 {
		seek = 0
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-ss", strconv.FormatFloat(seek, 'f', 3, 64),
		"-i", sourcePath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("ffmpeg timed out extracting frame from %s", sourcePath)
		}
		return nil, fmt.Errorf("ffmpeg failed for %s: %w (%s)", sourcePath, err, truncate(stderr.String(), 200))
	}

	frame, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame from %s: %w", sourcePath, err)
	}
	return frame, nil
}

// probeDuration returns the container duration in seconds.
func (e *FFmpegExtractor) probeDuration(ctx context.Context, sourcePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		sourcePath,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", sourcePath, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration for %s: %w", sourcePath, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("video %s reports non-positive duration %f", sourcePath, duration)
	}
	return duration, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"clipcap/internal/caption"
	"clipcap/pkg/logger"

	"go.uber.org/zap"
)

// Tools wraps the ffmpeg/ffprobe binaries used for the external media
// stages. Every invocation is scoped to the caller's context, so cancelling
// a job kills its processes.
type Tools struct {
	ffmpegBinary  string
	ffprobeBinary string
}

func NewTools(ffmpegBinary, ffprobeBinary string) *Tools {
	return &Tools{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
	}
}

// ExtractAudio decodes the video's audio track to mono 16kHz 16-bit PCM,
// the input format the ASR stage expects.
func (t *Tools) ExtractAudio(ctx context.Context, videoPath, wavPath string) error {
	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		wavPath,
	}

	if err := t.run(ctx, t.ffmpegBinary, args); err != nil {
		return fmt.Errorf("%w: audio extraction: %v", caption.ErrExternalStageFailed, err)
	}
	if _, err := os.Stat(wavPath); err != nil {
		return fmt.Errorf("%w: audio extraction produced no output: %v", caption.ErrExternalStageFailed, err)
	}

	logger.Info("Audio extracted", zap.String("wav", wavPath))
	return nil
}

// ProbeDuration returns the clip duration in seconds.
func (t *Tools) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.ffprobeBinary,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v", caption.ErrExternalStageFailed, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe returned unparseable duration %q", caption.ErrExternalStageFailed, strings.TrimSpace(string(out)))
	}

	return duration, nil
}

// BurnSubtitles renders the ASS subtitle file into the video with encoder
// settings tuned for short-form social clips.
func (t *Tools) BurnSubtitles(ctx context.Context, videoPath, assPath, outputPath string) error {
	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("subtitles=%s", assPath),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-pix_fmt", "yuv420p",
		"-y",
		outputPath,
	}

	if err := t.run(ctx, t.ffmpegBinary, args); err != nil {
		return fmt.Errorf("%w: subtitle burn-in: %v", caption.ErrExternalStageFailed, err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("%w: burn-in produced no output: %v", caption.ErrExternalStageFailed, err)
	}

	logger.Info("Subtitles burned into video", zap.String("output", outputPath))
	return nil
}

func (t *Tools) run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Running external process",
		zap.String("binary", binary),
		zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %v (stderr: %s)", binary, err, tail(stderr.String(), 500))
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[len(s)-n:])
}

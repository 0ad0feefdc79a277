package services

import (
	"context"
	"fmt"
	"os"

	"csvmp3/internal/shared"
)

// FfmpegConverter transcodes raw audio to MP3 with libmp3lame.
type FfmpegConverter struct {
	binPath string
	runner  commandRunner
}

// NewFfmpegConverter creates a converter using the given ffmpeg binary.
func NewFfmpegConverter(binPath string) *FfmpegConverter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FfmpegConverter{binPath: binPath, runner: &execRunner{}}
}

// Convert implements [Converter]. Output is CBR-adjacent VBR (V4) stereo at
// 44.1 kHz, which keeps files small without audible loss for streamed sources.
func (c *FfmpegConverter) Convert(ctx context.Context, inPath, outPath string) error {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", inPath,
		"-vn",
		"-codec:a", "libmp3lame",
		"-q:a", "4",
		"-ar", "44100",
		"-ac", "2",
		outPath,
	}

	result, err := c.runner.Run(ctx, c.binPath, args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", shared.ErrConvertFailed, firstLine(result.Stderr))
	}

	// ffmpeg can exit 0 and still leave a truncated or empty file behind.
	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("%w: output missing: %v", shared.ErrConvertFailed, err)
	}
	if info.Size() == 0 {
		os.Remove(outPath)
		return fmt.Errorf("%w: output empty", shared.ErrConvertFailed)
	}

	return nil
}

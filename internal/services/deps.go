package services

import (
	"fmt"
	"os/exec"

	"csvmp3/internal/shared"
)

// DependencyReport records which external tools were found on the system.
type DependencyReport struct {
	YtdlpFound  bool   `json:"yt_dlp_found"`
	YtdlpPath   string `json:"yt_dlp_path,omitempty"`
	FfmpegFound bool   `json:"ffmpeg_found"`
	FfmpegPath  string `json:"ffmpeg_path,omitempty"`
}

// DependencyStatus probes for yt-dlp and ffmpeg. Configured paths take
// precedence over PATH lookup; an empty configured path falls back to the
// conventional binary name.
func DependencyStatus(ytdlpPath, ffmpegPath string) DependencyReport {
	report := DependencyReport{}
	if path, err := lookupTool(ytdlpPath, "yt-dlp"); err == nil {
		report.YtdlpFound = true
		report.YtdlpPath = path
	}
	if path, err := lookupTool(ffmpegPath, "ffmpeg"); err == nil {
		report.FfmpegFound = true
		report.FfmpegPath = path
	}
	return report
}

// CheckDependencies fails when either external tool is missing.
func CheckDependencies(ytdlpPath, ffmpegPath string) error {
	report := DependencyStatus(ytdlpPath, ffmpegPath)
	if !report.YtdlpFound {
		return fmt.Errorf("%w: yt-dlp is not installed or not on PATH", shared.ErrToolMissing)
	}
	if !report.FfmpegFound {
		return fmt.Errorf("%w: ffmpeg is not installed or not on PATH", shared.ErrToolMissing)
	}
	return nil
}

func lookupTool(configured, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}
	return exec.LookPath(name)
}

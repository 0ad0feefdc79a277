package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"csvmp3/internal/services"
	"csvmp3/internal/shared"
)

// Doctor reports whether the external tools the pipeline needs are available.
func (r *Runner) Doctor(ctx context.Context, cmd *cli.Command) error {
	report := services.DependencyStatus(r.config.Tools.YtdlpPath, r.config.Tools.FfmpegPath)

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	status := func(found bool, path string) string {
		if found {
			return fmt.Sprintf("ok (%s)", path)
		}
		return "missing"
	}

	r.writePlainln("yt-dlp: %s", status(report.YtdlpFound, report.YtdlpPath))
	r.writePlainln("ffmpeg: %s", status(report.FfmpegFound, report.FfmpegPath))

	if !report.YtdlpFound || !report.FfmpegFound {
		return fmt.Errorf("%w: install the missing tools or set their paths in config.toml", shared.ErrToolMissing)
	}

	return nil
}

func doctorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check that yt-dlp and ffmpeg are installed",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: r.Doctor,
	}
}

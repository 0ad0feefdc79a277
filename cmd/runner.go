package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"csvmp3/internal/repositories"
	"csvmp3/internal/services"
	"csvmp3/internal/shared"
	"csvmp3/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	resolver  services.Resolver
	converter services.Converter
	embedder  services.Embedder
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Resolver  services.Resolver
	Converter services.Converter
	Embedder  services.Embedder
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
// Capabilities left nil are built from the configuration's tool paths.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Resolver == nil {
		opts.Resolver = services.NewYtdlpResolver(
			opts.Config.Tools.YtdlpPath,
			opts.Config.Download.SearchResults,
			opts.Config.Download.DurationTolerance,
		)
	}
	if opts.Converter == nil {
		opts.Converter = services.NewFfmpegConverter(opts.Config.Tools.FfmpegPath)
	}
	if opts.Embedder == nil {
		opts.Embedder = services.NewID3Embedder()
	}

	return &Runner{
		config:    opts.Config,
		resolver:  opts.Resolver,
		converter: opts.Converter,
		embedder:  opts.Embedder,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

// SetLogger swaps the runner's logger, used by the TUI to redirect logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		downloadCommand, parseCommand, archiveCommand, setupCommand, doctorCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openArchive opens the configured archive database and wraps it in a
// tasks.TrackArchiver. Callers own the returned db handle.
func (r *Runner) openArchive() (*sql.DB, tasks.TrackArchiver, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewDownloadRepository(db)
	return db, repositories.NewArchiveAdapter(repo), nil
}

// newEngine assembles a download engine from the runner's capabilities.
func (r *Runner) newEngine(archive tasks.TrackArchiver) *tasks.DownloadEngine {
	return tasks.NewDownloadEngine(r.resolver, r.converter, r.embedder, archive)
}

// runOpts maps configuration to engine options, letting flags override.
func (r *Runner) runOpts(outputDir string, workers int, embed, skipArchived bool) tasks.RunOpts {
	opts := tasks.RunOpts{
		OutputDir:      r.config.Output.Directory,
		Workers:        r.config.Download.Workers,
		RateLimit:      r.config.Download.SearchRateLimit,
		EmbedMetadata:  r.config.Output.EmbedMetadata,
		SkipArchived:   r.config.Download.SkipArchived,
		ResolveTimeout: time.Duration(r.config.Download.ResolveTimeoutSec) * time.Second,
		ConvertTimeout: time.Duration(r.config.Download.ConvertTimeoutSec) * time.Second,
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	if workers > 0 {
		opts.Workers = workers
	}
	if embed {
		opts.EmbedMetadata = true
	}
	if !skipArchived {
		opts.SkipArchived = false
	}
	return opts
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

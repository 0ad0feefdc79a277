package shared

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Output   OutputConfig   `toml:"output"`
	Download DownloadConfig `toml:"download"`
	Tools    ToolsConfig    `toml:"tools"`
	Database DatabaseConfig `toml:"database"`
}

// OutputConfig controls where finished MP3 files land and how they are tagged.
type OutputConfig struct {
	Directory     string `toml:"directory"`
	EmbedMetadata bool   `toml:"embed_metadata"`
}

// DownloadConfig tunes the worker pool and the external download step.
type DownloadConfig struct {
	Workers           int     `toml:"workers"`
	SearchRateLimit   float64 `toml:"search_rate_limit"`
	SearchResults     int     `toml:"search_results"`
	DurationTolerance float64 `toml:"duration_tolerance"`
	ResolveTimeoutSec int     `toml:"resolve_timeout_sec"`
	ConvertTimeoutSec int     `toml:"convert_timeout_sec"`
	SkipArchived      bool    `toml:"skip_archived"`
}

// ToolsConfig points at the external binaries; empty values fall back to PATH lookup.
type ToolsConfig struct {
	YtdlpPath  string `toml:"ytdlp_path"`
	FfmpegPath string `toml:"ffmpeg_path"`
}

// DatabaseConfig contains download archive database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks configuration values that would make a run impossible.
func (c *Config) Validate() error {
	if c.Download.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Download.Workers)
	}
	if c.Download.DurationTolerance < 0 || c.Download.DurationTolerance >= 1 {
		return fmt.Errorf("%w: duration_tolerance must be in [0, 1), got %v", ErrInvalidConfig, c.Download.DurationTolerance)
	}
	return nil
}

// WorkerCeiling is the largest useful worker count on this machine.
//
// The external downloader and converter are process-per-job, so worker
// counts past this only add contention.
func WorkerCeiling() int {
	return runtime.NumCPU() * 2
}

package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Output.Directory == "" {
		t.Error("expected a default output directory")
	}
	if config.Download.Workers <= 0 {
		t.Errorf("Workers = %d, want > 0", config.Download.Workers)
	}
	if config.Download.SearchRateLimit <= 0 {
		t.Errorf("SearchRateLimit = %v, want > 0", config.Download.SearchRateLimit)
	}
	if config.Download.DurationTolerance <= 0 || config.Download.DurationTolerance >= 1 {
		t.Errorf("DurationTolerance = %v, want in (0, 1)", config.Download.DurationTolerance)
	}
	if config.Database.Path == "" {
		t.Error("expected a default database path")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[output]
directory = "/music"
embed_metadata = true

[download]
workers = 8
search_rate_limit = 1.5

[tools]
ytdlp_path = "/opt/yt-dlp"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Output.Directory != "/music" {
		t.Errorf("Directory = %q", config.Output.Directory)
	}
	if !config.Output.EmbedMetadata {
		t.Error("EmbedMetadata should be true")
	}
	if config.Download.Workers != 8 {
		t.Errorf("Workers = %d", config.Download.Workers)
	}
	if config.Tools.YtdlpPath != "/opt/yt-dlp" {
		t.Errorf("YtdlpPath = %q", config.Tools.YtdlpPath)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() error = %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("created config does not load: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("created config should validate, got %v", err)
	}

	// Refuses to clobber an existing file.
	err = CreateConfigFile(path)
	if err == nil {
		t.Fatal("expected error creating over an existing file")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error message: %v", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("error message wraps a nil error: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tc := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative workers", func(c *Config) { c.Download.Workers = -1 }, true},
		{"tolerance too high", func(c *Config) { c.Download.DurationTolerance = 1.5 }, true},
		{"negative tolerance", func(c *Config) { c.Download.DurationTolerance = -0.1 }, true},
		{"zero workers allowed", func(c *Config) { c.Download.Workers = 0 }, false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWorkerCeiling(t *testing.T) {
	if WorkerCeiling() < 2 {
		t.Errorf("WorkerCeiling() = %d, want >= 2", WorkerCeiling())
	}
}

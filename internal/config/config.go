// Package config holds the subcut configuration file and the encode
// quality profiles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the optional subcut.toml file. Flags override file values;
// every field has a usable default so the file can be absent entirely.
type Config struct {
	Workdir      string `toml:"workdir"`
	Profile      string `toml:"profile"`
	Font         string `toml:"font"`
	FontSize     int    `toml:"font_size"`
	Provider     string `toml:"provider"`
	APIKeyEnv    string `toml:"api_key_env"`
	ChunkMinutes int    `toml:"chunk_minutes"`
	Concurrency  int    `toml:"concurrency"`
	MaxUploadMiB int    `toml:"max_upload_mib"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workdir:      "workdir",
		Profile:      DefaultProfile,
		Font:         "Arial",
		FontSize:     24,
		Provider:     "openai",
		APIKeyEnv:    "OPENAI_API_KEY",
		ChunkMinutes: 5,
		Concurrency:  3,
		MaxUploadMiB: 10,
	}
}

// Load reads path and merges it over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// zero values from a sparse file fall back to defaults
	def := Default()
	if cfg.Workdir == "" {
		cfg.Workdir = def.Workdir
	}
	if cfg.Profile == "" {
		cfg.Profile = def.Profile
	}
	if cfg.Font == "" {
		cfg.Font = def.Font
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.Provider == "" {
		cfg.Provider = def.Provider
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = def.APIKeyEnv
	}
	if cfg.ChunkMinutes <= 0 {
		cfg.ChunkMinutes = def.ChunkMinutes
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.MaxUploadMiB <= 0 {
		cfg.MaxUploadMiB = def.MaxUploadMiB
	}

	return cfg, nil
}

// DefaultPath returns the conventional config location next to the
// working directory, overridable with SUBCUT_CONFIG.
func DefaultPath() string {
	if p := os.Getenv("SUBCUT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(".", "subcut.toml")
}

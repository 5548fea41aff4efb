// Package config loads the CLI configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Store backend selectors.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config is the persistent CLI configuration, kept in
// ~/.fotofair/config.yaml next to the session file.
type Config struct {
	// ServerURL is the base URL of the marketplace API.
	ServerURL string `yaml:"server_url"`

	// Store selects the session storage backend: "file" or "redis".
	Store string `yaml:"store"`

	// RedisAddr and RedisPrefix configure the redis backend.
	RedisAddr   string `yaml:"redis_addr,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`

	// InstallationID identifies this installation to the API. Minted
	// once on first run.
	InstallationID string `yaml:"installation_id"`

	baseDir string
}

// Load reads the configuration, creating a default one on first run.
// If baseDir is empty, uses ~/.fotofair/
func Load(baseDir string) (*Config, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".fotofair")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(baseDir, configFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := defaultConfig(baseDir)
		if err := cfg.save(); err != nil {
			return nil, err
		}

		log.Debug().Str("path", path).Msg("created default config")

		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.baseDir = baseDir

	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultConfig(baseDir).ServerURL
	}
	if cfg.Store == "" {
		cfg.Store = StoreFile
	}
	if cfg.Store != StoreFile && cfg.Store != StoreRedis {
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	// Older config files predate installation IDs; mint one now.
	if cfg.InstallationID == "" {
		cfg.InstallationID = uuid.NewString()
		if err := cfg.save(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// BaseDir returns the directory the config was loaded from.
func (c *Config) BaseDir() string {
	return c.baseDir
}

func defaultConfig(baseDir string) *Config {
	return &Config{
		ServerURL:      "https://api.fotofair.com.br",
		Store:          StoreFile,
		InstallationID: uuid.NewString(),
		baseDir:        baseDir,
	}
}

// save writes the config file atomically.
func (c *Config) save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(c.baseDir, configFileName)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

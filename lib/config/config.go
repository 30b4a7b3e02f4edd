// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Vellum components.
//
// Configuration is loaded from a single YAML file specified by:
//   - VELLUM_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
//
// The desktop shell keeps its own user-editable settings file
// (settings.json, JSON with comments). The Go core never writes that
// file, but it can overlay the handful of settings it cares about —
// the active vault root and excluded folders — on top of the service
// config. See LoadSettings and ApplySettings.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the Vellum core.
type Config struct {
	// Vault configures the active note vault.
	Vault VaultConfig `yaml:"vault"`

	// Store configures the conversation database.
	Store StoreConfig `yaml:"store"`

	// Cache configures the vault snapshot cache.
	Cache CacheConfig `yaml:"cache"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`

	// Settings is the path to the desktop shell's settings.json. When
	// set, commands overlay it via ApplySettings after loading this
	// file. Optional.
	Settings string `yaml:"settings"`
}

// VaultConfig configures the active note vault.
type VaultConfig struct {
	// Root is the vault directory containing markdown notes.
	// Required (directly or via the settings overlay).
	Root string `yaml:"root"`

	// Exclude lists directory names skipped while scanning, matched
	// against each path segment. Defaults cover the usual tool
	// droppings (.obsidian, .trash, .git).
	Exclude []string `yaml:"exclude"`
}

// StoreConfig configures the conversation database.
type StoreConfig struct {
	// Path is the SQLite database file holding conversations and
	// messages.
	Path string `yaml:"path"`

	// PoolSize is the number of pooled connections. Zero means the
	// pool default.
	PoolSize int `yaml:"pool_size"`
}

// CacheConfig configures the vault snapshot cache.
type CacheConfig struct {
	// Path is the CBOR snapshot file of the last vault scan.
	Path string `yaml:"path"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name to a slog.Level. Unknown
// or empty names map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the default configuration. These defaults exist to
// give every field a sensible zero-value base before the config file
// is merged — the vault root always has to come from the file or the
// settings overlay.
func Default() *Config {
	homeDirectory, _ := os.UserHomeDir()
	dataRoot := filepath.Join(homeDirectory, ".local", "share", "vellum")

	return &Config{
		Vault: VaultConfig{
			Exclude: []string{".obsidian", ".trash", ".git"},
		},
		Store: StoreConfig{
			Path: filepath.Join(dataRoot, "chats.db"),
		},
		Cache: CacheConfig{
			Path: filepath.Join(dataRoot, "vault-index.cbor"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the VELLUM_CONFIG environment variable.
// Fails when the variable is not set; there is no fallback discovery.
func Load() (*Config, error) {
	configPath := os.Getenv("VELLUM_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("VELLUM_CONFIG environment variable not set; " +
			"set it to the path of your vellum.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging the
// file over Default() and expanding ${HOME}-style path variables.
func LoadFile(path string) (*Config, error) {
	configuration := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	configuration.expandVariables()
	return configuration, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in all
// path fields.
func (c *Config) expandVariables() {
	variables := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Vault.Root = expandVars(c.Vault.Root, variables)
	c.Store.Path = expandVars(c.Store.Path, variables)
	c.Cache.Path = expandVars(c.Cache.Path, variables)
	c.Settings = expandVars(c.Settings, variables)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, variables map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := variables[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Call after any
// settings overlay has been applied — the vault root may legitimately
// arrive from settings.json rather than the config file.
func (c *Config) Validate() error {
	var errs []error

	if c.Vault.Root == "" {
		errs = append(errs, fmt.Errorf("vault.root is required (config file or settings overlay)"))
	}
	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}
	if c.Cache.Path == "" {
		errs = append(errs, fmt.Errorf("cache.path is required"))
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsureDataDirs creates the directories holding the store and cache
// files if they don't exist. The vault root is never created — a
// missing vault is the user's to resolve, not ours to invent.
func (c *Config) EnsureDataDirs() error {
	for _, path := range []string{c.Store.Path, c.Cache.Path} {
		if path == "" {
			continue
		}
		directory := filepath.Dir(path)
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	return nil
}

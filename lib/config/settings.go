// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Settings is the slice of the desktop shell's settings.json that the
// Go core consumes. The file is user-edited and allows comments and
// trailing commas (JSONC), so it is translated to strict JSON before
// decoding. Fields the shell owns but the core ignores (theme, key
// bindings, window state) are simply not declared here.
type Settings struct {
	// VaultRoot is the active vault directory.
	VaultRoot string `json:"vaultRoot"`

	// RecentVaults lists previously opened vault directories, most
	// recent first.
	RecentVaults []string `json:"recentVaults"`

	// ExcludeFolders lists directory names to skip while scanning,
	// replacing the configured defaults when non-empty.
	ExcludeFolders []string `json:"excludeFolders"`
}

// LoadSettings reads a settings.json file (JSONC tolerated).
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(jsonc.ToJSON(data), &settings); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	return &settings, nil
}

// ApplySettings overlays user settings onto the configuration. Only
// non-empty settings override; the config file remains the base.
func (c *Config) ApplySettings(settings *Settings) {
	if settings == nil {
		return
	}
	if settings.VaultRoot != "" {
		c.Vault.Root = settings.VaultRoot
	}
	if len(settings.ExcludeFolders) > 0 {
		c.Vault.Exclude = settings.ExcludeFolders
	}
}

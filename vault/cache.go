// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vellum-notes/vellum/lib/codec"
)

// Snapshot is the persisted result of one vault scan. The signature
// lets a later session decide whether the snapshot still describes
// the vault without re-reading any file content.
type Snapshot struct {
	// Signature is the listing signature at scan time, see Signature.
	Signature string `json:"signature"`

	// ScannedAt is when the scan completed, epoch milliseconds.
	ScannedAt int64 `json:"scannedAt"`

	// Notes is the scan result in walk order.
	Notes []Note `json:"notes"`
}

// NewSnapshot captures a scan result.
func NewSnapshot(notes []Note, scannedAt time.Time) *Snapshot {
	return &Snapshot{
		Signature: Signature(Entries(notes)),
		ScannedAt: scannedAt.UnixMilli(),
		Notes:     notes,
	}
}

// Entries returns the listing the snapshot's signature was computed
// from.
func (s *Snapshot) Entries() []FileEntry {
	return Entries(s.Notes)
}

// Stale reports whether the snapshot no longer describes the given
// listing. Any added, removed, renamed, or touched file flips it.
func (s *Snapshot) Stale(listing []FileEntry) bool {
	return s.Signature != Signature(listing)
}

// Cache persists the latest Snapshot as a single CBOR file.
type Cache struct {
	path   string
	logger *slog.Logger
}

// NewCache returns a cache backed by the given file path. A nil
// logger discards debug output.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{path: path, logger: logger}
}

// Load reads the cached snapshot. A missing cache file is a miss, not
// an error: both return values are nil. A corrupt file is an error;
// callers recover by rescanning and saving over it.
func (c *Cache) Load() (*Snapshot, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading vault snapshot %s: %w", c.path, err)
	}
	var snapshot Snapshot
	if err := codec.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding vault snapshot %s: %w", c.path, err)
	}
	return &snapshot, nil
}

// Save writes the snapshot atomically: encode, write a temporary file
// alongside the target, rename over it. Readers never observe a
// partial snapshot.
func (c *Cache) Save(snapshot *Snapshot) error {
	data, err := codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding vault snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	temporary := c.path + ".tmp"
	if err := os.WriteFile(temporary, data, 0o644); err != nil {
		return fmt.Errorf("writing vault snapshot: %w", err)
	}
	if err := os.Rename(temporary, c.path); err != nil {
		os.Remove(temporary)
		return fmt.Errorf("replacing vault snapshot: %w", err)
	}
	c.logger.Debug("vault snapshot saved", "path", c.path, "notes", len(snapshot.Notes))
	return nil
}

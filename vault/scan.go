// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExcludes are the directory names a scan skips when the
// caller does not supply its own list: editor and sync droppings that
// hold markdown nobody wants resolved.
var DefaultExcludes = []string{".obsidian", ".trash", ".git"}

// Note is one markdown file found by a scan: its listing entry plus
// the metadata the resolver, search index, and suggestion ranking
// work from. The field tags serve both the JSON shape handed to the
// shell and the CBOR snapshot cache.
type Note struct {
	FileEntry

	// Title is the frontmatter title, falling back to the filename
	// without its extension.
	Title string `json:"title"`

	// Aliases are alternative names from frontmatter, if any.
	Aliases []string `json:"aliases,omitempty"`

	// Tags are frontmatter tags, if any.
	Tags []string `json:"tags,omitempty"`

	// ContentHash is the keyed BLAKE3 hash of the file content at
	// scan time, hex encoded.
	ContentHash string `json:"contentHash"`
}

// Entries projects the listing out of a scan result.
func Entries(notes []Note) []FileEntry {
	entries := make([]FileEntry, len(notes))
	for i, note := range notes {
		entries[i] = note.FileEntry
	}
	return entries
}

// ScanConfig configures a Scanner.
type ScanConfig struct {
	// Root is the vault directory to walk. Required.
	Root string

	// Exclude lists directory names skipped at any depth. Nil means
	// DefaultExcludes; an empty non-nil slice excludes nothing.
	Exclude []string

	// Logger receives warnings about skipped files. Nil discards
	// them.
	Logger *slog.Logger
}

// Scanner walks a vault directory and produces Notes. Safe for
// concurrent use; each Scan call is independent.
type Scanner struct {
	root    string
	exclude map[string]bool
	logger  *slog.Logger
}

// NewScanner validates the configuration and returns a Scanner.
func NewScanner(cfg ScanConfig) (*Scanner, error) {
	if cfg.Root == "" {
		return nil, errors.New("vault: scan root is required")
	}
	names := cfg.Exclude
	if names == nil {
		names = DefaultExcludes
	}
	exclude := make(map[string]bool, len(names))
	for _, name := range names {
		exclude[name] = true
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{root: cfg.Root, exclude: exclude, logger: logger}, nil
}

// Scan walks the vault root and returns a Note for every markdown
// file. Walk order is lexical within each directory, so repeated
// scans of an unchanged vault produce identical listings. Unreadable
// files are logged and skipped rather than failing the whole scan; an
// unreadable root is an error.
func (s *Scanner) Scan(ctx context.Context) ([]Note, error) {
	var notes []Note
	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			s.logger.Warn("skipping unreadable vault entry", "path", path, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != s.root && s.exclude[entry.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			return nil
		}
		note, err := s.readNote(path, entry)
		if err != nil {
			s.logger.Warn("skipping unreadable note", "path", path, "error", err)
			return nil
		}
		notes = append(notes, note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning vault %s: %w", s.root, err)
	}
	return notes, nil
}

func (s *Scanner) readNote(path string, entry fs.DirEntry) (Note, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Note{}, err
	}
	info, err := entry.Info()
	if err != nil {
		return Note{}, err
	}
	relative, err := filepath.Rel(s.root, path)
	if err != nil {
		return Note{}, err
	}

	metadata := parseFrontmatter(content)
	title := string(metadata.Title)
	if title == "" {
		title = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
	}
	return Note{
		FileEntry: FileEntry{
			RelativePath: filepath.ToSlash(relative),
			Path:         path,
			UpdatedAt:    info.ModTime().UnixMilli(),
		},
		Title:       title,
		Aliases:     metadata.Aliases,
		Tags:        metadata.Tags,
		ContentHash: ContentHash(content),
	}, nil
}

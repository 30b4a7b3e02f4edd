// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"github.com/vellum-notes/vellum/lib/rawjson"
)

// FileEntry is one file in the vault listing. The listing is the
// authoritative inventory of files under the active vault root,
// produced by the scanner or received from the desktop shell.
type FileEntry struct {
	// RelativePath is the path under the vault root, always
	// forward-slash separated. This is the form references resolve
	// to and the form stored in signatures.
	RelativePath string `json:"relativePath"`

	// Path is the absolute filesystem path.
	Path string `json:"path"`

	// UpdatedAt is the file modification time in epoch
	// milliseconds, 0 when unknown.
	UpdatedAt int64 `json:"updatedAt"`
}

// NormalizeListing maps a raw listing to FileEntry values. Unlike the
// chat parsers it never drops entries: the listing is authoritative,
// so an entry with missing fields is kept with zero values and still
// participates in signatures. Raw nil and non-object elements
// contribute zero entries.
func NormalizeListing(raw []any) []FileEntry {
	entries := make([]FileEntry, len(raw))
	for i, candidate := range raw {
		entries[i] = NormalizeEntry(candidate)
	}
	return entries
}

// NormalizeEntry maps one raw listing element to a FileEntry. Both the
// camelCase keys the desktop shell emits and the snake_case keys the
// storage boundary emits are accepted.
func NormalizeEntry(candidate any) FileEntry {
	object, ok := rawjson.Object(candidate)
	if !ok {
		return FileEntry{}
	}
	var entry FileEntry
	if relative, ok := rawjson.Text(object, "relativePath"); ok {
		entry.RelativePath = relative
	} else if relative, ok := rawjson.Text(object, "relative_path"); ok {
		entry.RelativePath = relative
	}
	entry.Path, _ = rawjson.Text(object, "path")
	if updated, ok := rawjson.Number(object, "updatedAt"); ok {
		entry.UpdatedAt = int64(updated)
	} else if updated, ok := rawjson.Number(object, "updated_at"); ok {
		entry.UpdatedAt = int64(updated)
	}
	return entry
}

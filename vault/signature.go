// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"slices"
	"strconv"
	"strings"
)

// Signature fingerprints a listing for change detection. Each entry
// contributes "relativePath|path|updatedAt"; the lines are sorted
// lexicographically and joined with newlines, so two listings with the
// same entries in different orders produce the same signature and any
// added, removed, renamed, or touched file changes it.
//
// The signature is an equality token, not a cryptographic digest:
// callers compare it against a stored signature to decide whether
// listing-derived state must be recomputed.
func Signature(entries []FileEntry) string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.RelativePath + "|" + entry.Path + "|" + strconv.FormatInt(entry.UpdatedAt, 10)
	}
	slices.Sort(lines)
	return strings.Join(lines, "\n")
}

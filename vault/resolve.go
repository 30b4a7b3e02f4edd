// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"regexp"
	"slices"
	"strings"
)

// urlSchemePattern recognizes absolute URLs ("https://...", including
// custom schemes). URL-shaped requests are never vault references.
var urlSchemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Resolve maps a note reference string to the relative path of the
// best-matching file in the listing, or ok=false when nothing
// matches. The reference may use backslashes, omit the ".md"
// extension, omit leading folders, carry a trailing #fragment, or
// differ from the real name by slugification (case, spaces vs.
// hyphens vs. underscores).
//
// Matching tries five tiers in strict precedence order and stops at
// the first hit:
//
//  1. Exact: case-insensitive equality of the full relative path.
//  2. Suffix: the entry ends with "/" + the request — the request
//     omitted leading folder segments.
//  3. Basename: final path segments are equal case-insensitively —
//     the request named the file without its folders.
//  4. Loose path: segment-by-segment equality of loose canonical
//     forms (see looseSegment).
//  5. Loose basename: loose equality of final segments only, the
//     most permissive tier.
//
// Within a tier the first file in listing order satisfying the
// predicate wins. Listing order is caller-determined and stable; no
// secondary sort is applied, so precedence across tiers plus listing
// order within a tier is the complete tie-break policy.
func Resolve(requested string, files []FileEntry) (string, bool) {
	want, ok := normalizeRequest(requested)
	if !ok {
		return "", false
	}
	for _, matches := range []func(entry, want string) bool{
		matchExact,
		matchSuffix,
		matchBasename,
		matchLoosePath,
		matchLooseBasename,
	} {
		for _, file := range files {
			if matches(file.RelativePath, want) {
				return file.RelativePath, true
			}
		}
	}
	return "", false
}

// normalizeRequest canonicalizes a requested reference before
// matching: backslashes become forward slashes, a #fragment suffix is
// stripped, surrounding whitespace and leading slashes are trimmed,
// and a ".md" extension is appended when not already present
// (case-insensitive). Returns ok=false for empty requests and URLs.
func normalizeRequest(requested string) (string, bool) {
	trimmed := strings.TrimSpace(requested)
	if trimmed == "" || urlSchemePattern.MatchString(trimmed) {
		return "", false
	}
	normalized := strings.ReplaceAll(trimmed, `\`, "/")
	normalized, _, _ = strings.Cut(normalized, "#")
	normalized = strings.TrimSpace(normalized)
	normalized = strings.TrimLeft(normalized, "/")
	if normalized == "" {
		return "", false
	}
	if !strings.HasSuffix(strings.ToLower(normalized), ".md") {
		normalized += ".md"
	}
	return normalized, true
}

func matchExact(entry, want string) bool {
	return strings.EqualFold(entry, want)
}

func matchSuffix(entry, want string) bool {
	return strings.HasSuffix(strings.ToLower(entry), "/"+strings.ToLower(want))
}

func matchBasename(entry, want string) bool {
	return strings.EqualFold(basename(entry), basename(want))
}

func matchLoosePath(entry, want string) bool {
	return slices.Equal(loosePath(entry), loosePath(want))
}

func matchLooseBasename(entry, want string) bool {
	return looseSegment(basename(entry)) == looseSegment(basename(want))
}

// basename returns the final path segment.
func basename(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

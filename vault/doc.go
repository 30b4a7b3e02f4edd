// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault models the markdown file vault: the listing of files
// under the active vault root, the resolver that maps reference
// strings to actual files, and the scanning, caching, and search
// machinery built on top of the listing.
//
// # Resolution
//
// [Resolve] maps a note reference as it appears in agent output or
// chat sources (mixed separators, missing extension, title-like slugs,
// trailing #fragments) to the relative path of an existing vault file.
// Matching runs through five tiers of decreasing strictness: exact,
// suffix, basename, loose path, loose basename. Tier precedence is a
// contract: within a tier the first file in listing order wins, and no
// score comparison happens across tiers. "No match" is a normal
// outcome, not an error.
//
// [Signature] fingerprints a listing for change detection: identical
// contents produce identical signatures regardless of listing order,
// so callers can cheaply decide whether listing-derived state (the
// snapshot cache, the search index) must be recomputed.
//
// Both are pure functions over a caller-supplied snapshot. The
// resolver never caches and never mutates the listing; staleness
// detection and refresh are the caller's job.
//
// # Scanning and caching
//
// [Scanner] walks the vault root and produces [Note] values: the
// [FileEntry] plus frontmatter metadata (title, aliases, tags) and a
// keyed BLAKE3 content hash. [Cache] persists the last scan as a CBOR
// [Snapshot] so application startup can serve a listing before the
// first walk finishes.
//
// # Search and suggestions
//
// [SearchIndex] ranks notes for a query with BM25 over weighted note
// fields. [Suggest] returns fuzzy "did you mean" candidates for
// references that failed to resolve.
package vault

// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat normalizes chat records arriving from the storage
// boundary into the domain model the rest of the application consumes.
//
// Records come in as map[string]any payloads whose shapes drift:
// sub-lists ("sources", "tool_calls", "timeline") arrive either as
// native arrays or as JSON-encoded strings, timestamps arrive as ISO
// strings, space-separated datetimes, or epoch milliseconds, booleans
// arrive as SQLite 0/1 integers, and any field may simply be missing.
// Normalization is total: malformed input never produces an error. A
// field that cannot be interpreted degrades to its default, a
// sub-record missing a mandatory field is dropped on its own, and a
// sub-list with no valid entries is reported as absent (nil) rather
// than empty, so callers render "nothing here" instead of failing the
// whole record.
//
// # Normalizer
//
// Create a [Normalizer] with [NewNormalizer], passing the clock that
// supplies defaults for missing timestamps. [Normalizer.Conversation]
// and [Normalizer.Message] map raw records to [Conversation] and
// [Message] values. Both are pure transforms over their input: no
// caching, no I/O, no retained references, safe to call concurrently.
//
// # List parsers
//
// [ParseStringList], [ParseToolCalls], and [ParseTimelineSteps] are
// the clock-free leaf parsers, exported separately because the storage
// and diagnostic layers invoke them directly on individual columns.
//
// # Dependencies
//
// This package depends only on [rawjson] for field access and [clock]
// for timestamp defaulting. It has no dependency on storage, the
// vault, or any I/O package.
package chat

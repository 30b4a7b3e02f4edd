// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Package store is the persistence boundary for conversations and
// messages.
//
// The store produces exactly the raw record shapes the chat
// normalizers consume: map[string]any rows where the tool_calls,
// timeline, and sources sub-fields are stringified JSON, NULL columns
// are omitted, and every value is whatever SQLite handed back. The
// stored shape is deliberately looser than the domain model; [chat]
// owns the tightening. Writers marshal normalized entities back into
// that contract, so a put/load round trip exercises the same decode
// path as records written by earlier versions of the desktop shell.
//
// The package also implements the single-file conversation archive
// (export/import with optional compression and passphrase
// encryption); see Export and Import.
package store

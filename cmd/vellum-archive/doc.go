// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Vellum-archive exports conversations to a portable archive file and
// imports them back. Archives are JSONL payloads wrapped in a small
// binary header, optionally compressed (zstd by default) and sealed
// with an age scrypt passphrase.
//
//	vellum-archive export --compression zstd backup.vla
//	vellum-archive export --encrypt --conversation conv-1 one.vla
//	vellum-archive import backup.vla
//
// Imported records pass through the same normalization as records
// read from the database, so archives from older versions or other
// machines degrade gracefully instead of corrupting the store.
//
// The passphrase for --encrypt and for encrypted imports comes from
// the VELLUM_ARCHIVE_PASSPHRASE environment variable when set, or an
// interactive terminal prompt otherwise.
package main

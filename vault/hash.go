// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// noteContentKey is the 32-byte key for BLAKE3 keyed hashing of note
// content. The byte values are the ASCII encoding of the domain name,
// zero-padded to 32 bytes: readable in hex dumps, opaque to BLAKE3.
// Changing the key invalidates every stored content hash.
var noteContentKey = [32]byte{
	'v', 'e', 'l', 'l', 'u', 'm', '.', 'n', 'o', 't', 'e', '.',
	'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ContentHash computes the keyed BLAKE3 hash of note content, hex
// encoded. Stored on [Note] and compared across scans to detect edits
// that do not move the file's modification time (sync tools, restores).
func ContentHash(content []byte) string {
	// NewKeyed requires exactly 32 bytes, which the fixed-size key
	// guarantees; the error path is unreachable.
	hasher, err := blake3.NewKeyed(noteContentKey[:])
	if err != nil {
		panic("vault: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

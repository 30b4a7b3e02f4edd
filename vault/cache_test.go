// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func snapshotNotes() []Note {
	return []Note{
		{
			FileEntry: FileEntry{RelativePath: "Projects/Plan.md", Path: "/vault/Projects/Plan.md", UpdatedAt: 1700000000000},
			Title:     "Plan",
			Aliases:   []string{"the-plan"},
			Tags:      []string{"planning"},
		},
		{
			FileEntry: FileEntry{RelativePath: "inbox.md", Path: "/vault/inbox.md", UpdatedAt: 1700000001000},
			Title:     "inbox",
		},
	}
}

// --- Snapshot ---

func TestSnapshot_Stale(t *testing.T) {
	t.Parallel()

	notes := snapshotNotes()
	snapshot := NewSnapshot(notes, time.UnixMilli(1700000002000))

	if snapshot.Stale(Entries(notes)) {
		t.Error("snapshot stale against its own listing")
	}

	touched := Entries(notes)
	touched[0].UpdatedAt++
	if !snapshot.Stale(touched) {
		t.Error("touched file not detected")
	}

	renamed := Entries(notes)
	renamed[1].RelativePath = "outbox.md"
	if !snapshot.Stale(renamed) {
		t.Error("renamed file not detected")
	}

	if !snapshot.Stale(Entries(notes)[:1]) {
		t.Error("removed file not detected")
	}
}

// --- Cache ---

func TestCache_MissThenRoundTrip(t *testing.T) {
	t.Parallel()

	cache := NewCache(filepath.Join(t.TempDir(), "state", "vault.cbor"), nil)

	loaded, err := cache.Load()
	if err != nil {
		t.Fatalf("Load on empty cache: %v", err)
	}
	if loaded != nil {
		t.Fatalf("Load on empty cache = %+v, want nil", loaded)
	}

	snapshot := NewSnapshot(snapshotNotes(), time.UnixMilli(1700000002000))
	if err := cache.Save(snapshot); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err = cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, snapshot) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, snapshot)
	}
}

func TestCache_SaveReplacesExisting(t *testing.T) {
	t.Parallel()

	cache := NewCache(filepath.Join(t.TempDir(), "vault.cbor"), nil)

	first := NewSnapshot(snapshotNotes(), time.UnixMilli(1700000002000))
	if err := cache.Save(first); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second := NewSnapshot(snapshotNotes()[:1], time.UnixMilli(1700000003000))
	if err := cache.Save(second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Signature != second.Signature || len(loaded.Notes) != 1 {
		t.Errorf("loaded %+v, want second snapshot", loaded)
	}
}

func TestCache_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vault.cbor")
	if err := os.WriteFile(path, []byte("not cbor at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCache(path, nil).Load(); err == nil {
		t.Error("Load of a corrupt snapshot succeeded")
	}
}

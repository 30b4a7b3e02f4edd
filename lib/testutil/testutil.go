// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Vellum packages.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// TempVault creates a temporary vault directory populated with the
// given markdown files. Keys are slash-separated relative paths,
// values are file contents. Parent directories are created as needed.
// The directory is removed when the test completes.
//
//	root := testutil.TempVault(t, map[string]string{
//		"Projects/Roadmap 2024.md": "# Roadmap",
//		"inbox.md":                 "",
//	})
func TempVault(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for relativePath, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(relativePath)), content)
	}
	return root
}

// WriteFile writes content to path, creating parent directories as
// needed. Fails the test on any error.
func WriteFile(t *testing.T, path string, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer. Use this instead of time.Now()
// when tests need distinguishable identifiers for conversations,
// messages, or runs.
//
//	id := testutil.UniqueID("conv") // "conv-1", "conv-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

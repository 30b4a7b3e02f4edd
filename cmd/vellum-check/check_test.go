// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vellum-notes/vellum/chat"
	"github.com/vellum-notes/vellum/lib/clock"
	"github.com/vellum-notes/vellum/lib/config"
	"github.com/vellum-notes/vellum/lib/testutil"
	"github.com/vellum-notes/vellum/store"
	"github.com/vellum-notes/vellum/vault"
)

func newTestChecker() *checker {
	return &checker{
		report:     &report{},
		normalizer: chat.NewNormalizer(clock.Fake(probeEpoch)),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// assertFindings checks that each expected substring matches exactly
// one finding and that no unexpected findings exist.
func assertFindings(t *testing.T, name string, findings []finding, want []string) {
	t.Helper()

	if len(findings) != len(want) {
		t.Errorf("%s: got %d findings %q, want %d", name, len(findings), findings, len(want))
		return
	}
	for _, substring := range want {
		matched := false
		for _, f := range findings {
			if strings.Contains(f.String(), substring) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("%s: no finding contains %q in %q", name, substring, findings)
		}
	}
}

func TestCheckConversation(t *testing.T) {
	for _, test := range []struct {
		name   string
		record map[string]any
		want   []string
	}{
		{
			name: "clean",
			record: map[string]any{
				"id":            "conv-1",
				"title":         "Roadmap planning",
				"created_at":    "2024-03-01T09:00:00.000Z",
				"updated_at":    "2024-03-02T10:30:00.000Z",
				"message_count": int64(3),
			},
		},
		{
			name: "blank id",
			record: map[string]any{
				"id":         "   ",
				"title":      "Named",
				"created_at": "2024-03-01T09:00:00.000Z",
				"updated_at": "2024-03-01T09:00:00.000Z",
			},
			want: []string{"id missing or blank"},
		},
		{
			name: "missing title",
			record: map[string]any{
				"id":         "conv-2",
				"created_at": "2024-03-01T09:00:00.000Z",
				"updated_at": "2024-03-01T09:00:00.000Z",
			},
			want: []string{"title missing"},
		},
		{
			name: "missing instants",
			record: map[string]any{
				"id":    "conv-3",
				"title": "Named",
			},
			want: []string{"created_at missing", "updated_at missing"},
		},
		{
			name: "negative message count",
			record: map[string]any{
				"id":            "conv-4",
				"title":         "Named",
				"created_at":    "2024-03-01T09:00:00.000Z",
				"updated_at":    "2024-03-01T09:00:00.000Z",
				"message_count": int64(-2),
			},
			want: []string{"message_count -2 is negative"},
		},
		{
			name: "non-numeric message count",
			record: map[string]any{
				"id":            "conv-5",
				"title":         "Named",
				"created_at":    "2024-03-01T09:00:00.000Z",
				"updated_at":    "2024-03-01T09:00:00.000Z",
				"message_count": "many",
			},
			want: []string{"message_count many is not numeric"},
		},
	} {
		c := newTestChecker()
		c.checkConversation("conversation "+test.name, test.record)
		assertFindings(t, test.name, c.report.findings, test.want)
	}
}

func TestCheckMessage(t *testing.T) {
	for _, test := range []struct {
		name   string
		record map[string]any
		want   []string
	}{
		{
			name: "clean",
			record: map[string]any{
				"id":        "msg-1",
				"role":      "assistant",
				"content":   "All set.",
				"timestamp": int64(1709290800000),
			},
		},
		{
			name: "missing role",
			record: map[string]any{
				"id":        "msg-2",
				"timestamp": int64(1709290800000),
			},
			want: []string{"role missing"},
		},
		{
			name: "unknown role",
			record: map[string]any{
				"id":        "msg-3",
				"role":      "system",
				"timestamp": int64(1709290800000),
			},
			want: []string{`role "system" coerced to "user"`},
		},
		{
			name: "missing timestamp",
			record: map[string]any{
				"id":   "msg-4",
				"role": "user",
			},
			want: []string{"timestamp missing"},
		},
		{
			name: "unparseable timestamp",
			record: map[string]any{
				"id":        "msg-5",
				"role":      "user",
				"timestamp": "soon",
			},
			want: []string{"timestamp soon unparseable"},
		},
		{
			name: "dropped tool calls",
			record: map[string]any{
				"id":         "msg-6",
				"role":       "assistant",
				"timestamp":  int64(1709290800000),
				"tool_calls": `[{"tool":"read_note","args":"{}"},{"id":"call-2"}]`,
			},
			want: []string{"1 of 2 tool_calls entries dropped"},
		},
		{
			name: "timeline not a list",
			record: map[string]any{
				"id":        "msg-7",
				"role":      "assistant",
				"timestamp": int64(1709290800000),
				"timeline":  "5",
			},
			want: []string{"timeline is not a list"},
		},
		{
			name: "dropped sources",
			record: map[string]any{
				"id":        "msg-8",
				"role":      "assistant",
				"timestamp": int64(1709290800000),
				"sources":   []any{"Projects/Roadmap 2024.md", "", float64(42)},
			},
			want: []string{"2 of 3 sources entries dropped"},
		},
	} {
		c := newTestChecker()
		c.checkMessage("message "+test.name, test.record)
		assertFindings(t, test.name, c.report.findings, test.want)
	}
}

func TestRecordSubject(t *testing.T) {
	record := map[string]any{"id": "conv-9"}
	if got := recordSubject("conversation", record, 3); got != "conversation conv-9" {
		t.Errorf("recordSubject = %q, want %q", got, "conversation conv-9")
	}
	if got := recordSubject("message", map[string]any{}, 7); got != "message #7" {
		t.Errorf("recordSubject = %q, want %q", got, "message #7")
	}
}

// checkTestConfig assembles a config over temporary store, cache, and
// vault locations.
func checkTestConfig(t *testing.T, vaultFiles map[string]string) *config.Config {
	t.Helper()

	dataDirectory := t.TempDir()
	return &config.Config{
		Vault: config.VaultConfig{Root: testutil.TempVault(t, vaultFiles)},
		Store: config.StoreConfig{Path: filepath.Join(dataDirectory, "chats.db")},
		Cache: config.CacheConfig{Path: filepath.Join(dataDirectory, "vault-index.cbor")},
	}
}

// seedStore fills the configured store with one conversation and one
// message carrying the given content.
func seedStore(t *testing.T, cfg *config.Config, content string) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(store.Config{Path: cfg.Store.Path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	conversation := chat.Conversation{
		ID:        "conv-1",
		Title:     "Roadmap planning",
		CreatedAt: "2024-03-01T09:00:00.000Z",
		UpdatedAt: "2024-03-01T09:00:00.000Z",
	}
	if err := s.PutConversation(ctx, conversation); err != nil {
		t.Fatalf("PutConversation: %v", err)
	}
	if err := s.PutMessage(ctx, conversation.ID, chat.Message{
		ID:        "msg-1",
		Role:      chat.RoleAssistant,
		Content:   content,
		Timestamp: 1709290800000,
	}); err != nil {
		t.Fatalf("PutMessage: %v", err)
	}
}

// saveSnapshot scans the configured vault and persists the result, so
// the cache matches the listing runCheck will see.
func saveSnapshot(t *testing.T, cfg *config.Config) {
	t.Helper()

	scanner, err := vault.NewScanner(vault.ScanConfig{
		Root:    cfg.Vault.Root,
		Exclude: cfg.Vault.Exclude,
	})
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	notes, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := vault.NewCache(cfg.Cache.Path, nil).Save(vault.NewSnapshot(notes, time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestRunCheck_Clean(t *testing.T) {
	cfg := checkTestConfig(t, map[string]string{
		"Projects/Roadmap 2024.md": "# Roadmap",
		"inbox.md":                 "",
	})
	seedStore(t, cfg, "See [[Roadmap 2024]] for the plan.")
	saveSnapshot(t, cfg)

	got, err := runCheck(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), 3)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	if len(got.findings) != 0 {
		t.Errorf("got findings %q, want none", got.findings)
	}
	if got.conversations != 1 || got.messages != 1 || got.notes != 2 || got.references != 1 {
		t.Errorf("counts = %d conversations, %d messages, %d notes, %d references; want 1, 1, 2, 1",
			got.conversations, got.messages, got.notes, got.references)
	}
}

func TestRunCheck_UnresolvedReference(t *testing.T) {
	cfg := checkTestConfig(t, map[string]string{
		"Projects/Roadmap 2024.md": "# Roadmap",
	})
	seedStore(t, cfg, "The [[Roadmap]] needs an update.")
	saveSnapshot(t, cfg)

	got, err := runCheck(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), 3)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	assertFindings(t, "unresolved", got.findings,
		[]string{`reference "Roadmap" unresolved (closest: Projects/Roadmap 2024.md)`})
}

func TestRunCheck_MissingSnapshot(t *testing.T) {
	cfg := checkTestConfig(t, map[string]string{"inbox.md": ""})
	seedStore(t, cfg, "No references here.")

	got, err := runCheck(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), 3)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	assertFindings(t, "missing snapshot", got.findings, []string{"no snapshot at"})
}

func TestRunCheck_StaleSnapshot(t *testing.T) {
	cfg := checkTestConfig(t, map[string]string{"inbox.md": ""})
	saveSnapshot(t, cfg)

	// A note created after the snapshot changes the listing signature.
	testutil.WriteFile(t, filepath.Join(cfg.Vault.Root, "new-note.md"), "# New")

	got, err := runCheck(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), 3)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	assertFindings(t, "stale snapshot", got.findings, []string{"stale"})
}

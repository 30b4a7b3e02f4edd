// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vellum-notes/vellum/chat"
	"github.com/vellum-notes/vellum/lib/clock"
	"github.com/vellum-notes/vellum/lib/config"
	"github.com/vellum-notes/vellum/lib/rawjson"
	"github.com/vellum-notes/vellum/store"
	"github.com/vellum-notes/vellum/vault"
)

// probeEpoch is a sentinel instant no real record carries. The checker
// normalizes with a clock pinned here, so a normalized timestamp equal
// to probeEpoch.UnixMilli() reveals that the raw value was missing or
// unparseable and the normalizer substituted the current instant.
var probeEpoch = time.UnixMilli(-1)

// finding is one reportable defect.
type finding struct {
	subject string
	detail  string
}

func (f finding) String() string {
	return f.subject + ": " + f.detail
}

// report accumulates counts and findings across all checks.
type report struct {
	conversations int
	messages      int
	notes         int
	references    int
	findings      []finding
}

func (r *report) add(subject, format string, args ...any) {
	r.findings = append(r.findings, finding{
		subject: subject,
		detail:  fmt.Sprintf(format, args...),
	})
}

func (r *report) print(w io.Writer) {
	for _, f := range r.findings {
		fmt.Fprintln(w, f)
	}
	if len(r.findings) > 0 {
		fmt.Fprintln(w)
	}
	noun := "findings"
	if len(r.findings) == 1 {
		noun = "finding"
	}
	fmt.Fprintf(w, "checked %d conversations, %d messages, %d notes, %d references: %d %s\n",
		r.conversations, r.messages, r.notes, r.references, len(r.findings), noun)
}

// reference is a note reference awaiting resolution, remembered with
// the message it came from.
type reference struct {
	subject string
	ref     string
}

type checker struct {
	report     *report
	normalizer *chat.Normalizer
	logger     *slog.Logger
	references []reference
}

// runCheck executes every audit and assembles the report.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger, suggestionLimit int) (*report, error) {
	if err := cfg.EnsureDataDirs(); err != nil {
		return nil, err
	}

	s, err := store.Open(store.Config{
		Path:     cfg.Store.Path,
		PoolSize: cfg.Store.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	c := &checker{
		report:     &report{},
		normalizer: chat.NewNormalizer(clock.Fake(probeEpoch)),
		logger:     logger,
	}
	if err := c.checkStore(ctx, s); err != nil {
		return nil, err
	}
	if err := c.checkVault(ctx, cfg, suggestionLimit); err != nil {
		return nil, err
	}
	return c.report, nil
}

// checkStore re-normalizes every stored record and collects the note
// references in message content for later resolution.
func (c *checker) checkStore(ctx context.Context, s *store.Store) error {
	records, err := s.ConversationRecords(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		c.report.conversations++
		c.checkConversation(recordSubject("conversation", record, c.report.conversations), record)

		id, ok := rawjson.TrimmedText(record, "id")
		if !ok {
			continue
		}
		messages, err := s.MessageRecords(ctx, id)
		if err != nil {
			return err
		}
		for _, message := range messages {
			c.report.messages++
			subject := recordSubject("message", message, c.report.messages)
			c.checkMessage(subject, message)
			c.collectReferences(subject, message)
		}
	}
	c.logger.Debug("store checked",
		"conversations", c.report.conversations,
		"messages", c.report.messages,
		"references", len(c.references),
	)
	return nil
}

// recordSubject names a record for findings: by id when it has one,
// by ordinal when it does not.
func recordSubject(kind string, record map[string]any, ordinal int) string {
	if id, ok := rawjson.TrimmedText(record, "id"); ok {
		return kind + " " + id
	}
	return fmt.Sprintf("%s #%d", kind, ordinal)
}

func (c *checker) checkConversation(subject string, record map[string]any) {
	if _, ok := rawjson.TrimmedText(record, "id"); !ok {
		c.report.add(subject, "id missing or blank")
	}
	if _, ok := rawjson.TrimmedText(record, "title"); !ok {
		c.report.add(subject, "title missing, defaults to %q", chat.DefaultTitle)
	}
	for _, column := range []string{"created_at", "updated_at"} {
		if _, ok := rawjson.TrimmedText(record, column); !ok {
			c.report.add(subject, "%s missing, defaults to the current instant", column)
		}
	}
	if value, exists := record["message_count"]; exists {
		count, ok := rawjson.Int(record, "message_count")
		switch {
		case !ok:
			c.report.add(subject, "message_count %v is not numeric, defaults to 0", value)
		case count < 0:
			c.report.add(subject, "message_count %d is negative, defaults to 0", count)
		}
	}
}

func (c *checker) checkMessage(subject string, record map[string]any) {
	if _, ok := rawjson.TrimmedText(record, "id"); !ok {
		c.report.add(subject, "id missing or blank")
	}
	if role, ok := rawjson.Text(record, "role"); !ok {
		c.report.add(subject, "role missing, defaults to %q", chat.RoleUser)
	} else if !chat.IsValidRole(role) {
		c.report.add(subject, "role %q coerced to %q", role, chat.RoleUser)
	}
	if value, exists := record["timestamp"]; !exists {
		c.report.add(subject, "timestamp missing, defaults to the current instant")
	} else if c.normalizer.Timestamp(value) == probeEpoch.UnixMilli() {
		c.report.add(subject, "timestamp %v unparseable, defaults to the current instant", value)
	}
	c.checkList(subject, "sources", record["sources"], len(chat.ParseStringList(record["sources"])))
	c.checkList(subject, "tool_calls", record["tool_calls"], len(chat.ParseToolCalls(record["tool_calls"])))
	c.checkList(subject, "timeline", record["timeline"], len(chat.ParseTimelineSteps(record["timeline"])))
}

// checkList reports entries the parsers dropped from a raw sub-list.
func (c *checker) checkList(subject, field string, value any, kept int) {
	if value == nil {
		return
	}
	list, ok := rawjson.List(value)
	if !ok {
		c.report.add(subject, "%s is not a list, dropped entirely", field)
		return
	}
	if dropped := len(list) - kept; dropped > 0 {
		c.report.add(subject, "%d of %d %s entries dropped", dropped, len(list), field)
	}
}

// collectReferences extracts note references from message content.
// They are resolved by checkVault once the listing exists.
func (c *checker) collectReferences(subject string, record map[string]any) {
	content, ok := rawjson.Text(record, "content")
	if !ok || content == "" {
		return
	}
	for _, ref := range vault.ExtractNoteRefs([]byte(content)) {
		c.references = append(c.references, reference{subject: subject, ref: ref})
	}
}

// checkVault scans the vault, compares the snapshot cache against the
// live listing, and resolves the collected references.
func (c *checker) checkVault(ctx context.Context, cfg *config.Config, suggestionLimit int) error {
	scanner, err := vault.NewScanner(vault.ScanConfig{
		Root:    cfg.Vault.Root,
		Exclude: cfg.Vault.Exclude,
		Logger:  c.logger,
	})
	if err != nil {
		return err
	}
	notes, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}
	c.report.notes = len(notes)
	entries := vault.Entries(notes)
	c.logger.Debug("vault scanned", "root", cfg.Vault.Root, "notes", len(notes))

	c.checkCache(cfg.Cache.Path, entries)

	for _, pending := range c.references {
		c.report.references++
		if _, ok := vault.Resolve(pending.ref, entries); ok {
			continue
		}
		c.report.add(pending.subject, "reference %q unresolved%s",
			pending.ref, suggestionHint(notes, pending.ref, suggestionLimit))
	}
	return nil
}

// checkCache compares the cached snapshot with the live listing. A
// missing snapshot is reported too: it means no scan has ever been
// persisted for this vault.
func (c *checker) checkCache(path string, entries []vault.FileEntry) {
	snapshot, err := vault.NewCache(path, c.logger).Load()
	if err != nil {
		c.report.add("vault cache", "unreadable: %v", err)
		return
	}
	if snapshot == nil {
		c.report.add("vault cache", "no snapshot at %s", path)
		return
	}
	if snapshot.Stale(entries) {
		c.report.add("vault cache", "stale: the vault changed since the snapshot was written")
	}
}

// suggestionHint formats the closest fuzzy matches for an unresolved
// reference, empty when there are none.
func suggestionHint(notes []vault.Note, ref string, limit int) string {
	if limit <= 0 {
		return ""
	}
	suggestions := vault.Suggest(notes, ref, limit)
	if len(suggestions) == 0 {
		return ""
	}
	paths := make([]string, len(suggestions))
	for i, suggestion := range suggestions {
		paths[i] = suggestion.RelativePath
	}
	return " (closest: " + strings.Join(paths, ", ") + ")"
}

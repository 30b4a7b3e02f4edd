// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"strings"
	"time"

	"github.com/vellum-notes/vellum/lib/clock"
	"github.com/vellum-notes/vellum/lib/rawjson"
)

// isoLayout renders an instant the way the desktop shell writes them:
// UTC with millisecond precision. The trailing Z is a literal, so
// instants must be converted to UTC before formatting.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Normalizer maps raw chat records to domain values. All methods are
// pure transforms and safe for concurrent use; the only state is the
// clock supplying defaults for missing timestamps.
type Normalizer struct {
	clock clock.Clock
}

// NewNormalizer returns a Normalizer using the given clock for
// timestamp defaulting. A nil clock means wall-clock time.
func NewNormalizer(clk clock.Clock) *Normalizer {
	if clk == nil {
		clk = clock.Real()
	}
	return &Normalizer{clock: clk}
}

// Conversation maps a raw conversation record to the domain shape.
// Total: every field degrades to its documented default when the raw
// value is missing or malformed.
func (n *Normalizer) Conversation(raw map[string]any) Conversation {
	conversation := Conversation{
		Archived: rawjson.Bool(raw, "archived"),
		Pinned:   rawjson.Bool(raw, "pinned"),
	}
	conversation.ID, _ = rawjson.Text(raw, "id")
	if title, ok := rawjson.TrimmedText(raw, "title"); ok {
		conversation.Title = title
	} else {
		conversation.Title = DefaultTitle
	}
	now := n.clock.Now().UTC().Format(isoLayout)
	if createdAt, ok := rawjson.TrimmedText(raw, "created_at"); ok {
		conversation.CreatedAt = createdAt
	} else {
		conversation.CreatedAt = now
	}
	if updatedAt, ok := rawjson.TrimmedText(raw, "updated_at"); ok {
		conversation.UpdatedAt = updatedAt
	} else {
		conversation.UpdatedAt = now
	}
	if count, ok := rawjson.Int(raw, "message_count"); ok && count > 0 {
		conversation.MessageCount = count
	}
	if order, ok := rawjson.Number(raw, "sort_order"); ok {
		conversation.SortOrder = &order
	}
	if folder, ok := rawjson.TrimmedText(raw, "folder_id"); ok {
		conversation.FolderID = folder
	}
	return conversation
}

// Message maps a raw message record to the domain shape, composing the
// timestamp normalizer and the three list parsers. Total.
func (n *Normalizer) Message(raw map[string]any) Message {
	message := Message{
		Role:          RoleUser,
		Timestamp:     n.Timestamp(raw["timestamp"]),
		Sources:       ParseStringList(raw["sources"]),
		ToolCalls:     ParseToolCalls(raw["tool_calls"]),
		TimelineSteps: ParseTimelineSteps(raw["timeline"]),
	}
	message.ID, _ = rawjson.Text(raw, "id")
	message.Content, _ = rawjson.Text(raw, "content")
	if role, ok := rawjson.Text(raw, "role"); ok && IsValidRole(role) {
		message.Role = role
	}
	if summary, ok := rawjson.TrimmedText(raw, "thinking_summary"); ok {
		message.ThinkingSummary = summary
	}
	message.RunID = resolveRunID(raw, message.TimelineSteps, message.ToolCalls)
	return message
}

// resolveRunID resolves a message's run identity: an explicit run_id
// on the raw record wins, then the first timeline step carrying one,
// then the first tool call. Empty when nothing carries a run.
func resolveRunID(raw map[string]any, steps []TimelineStep, calls []ToolCallEvent) string {
	if runID, ok := rawjson.TrimmedText(raw, "run_id"); ok {
		return runID
	}
	for _, step := range steps {
		if step.RunID != "" {
			return step.RunID
		}
	}
	for _, call := range calls {
		if call.RunID != "" {
			return call.RunID
		}
	}
	return ""
}

// Timestamp resolves a heterogeneous raw timestamp to epoch
// milliseconds. Strings are parsed as RFC 3339; strings that fail are
// retried with the space-separated "YYYY-MM-DD HH:MM:SS" form treated
// as UTC. Numeric values pass through as milliseconds. Anything else,
// including absence, resolves to the current instant. Total.
func (n *Normalizer) Timestamp(value any) int64 {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			break
		}
		if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
			return t.UnixMilli()
		}
		// Space-separated datetimes are stored without a zone;
		// they were recorded in UTC.
		retry := strings.Replace(trimmed, " ", "T", 1) + "Z"
		if t, err := time.Parse(time.RFC3339Nano, retry); err == nil {
			return t.UnixMilli()
		}
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return n.clock.Now().UnixMilli()
}

// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"strings"

	"github.com/vellum-notes/vellum/lib/rawjson"
)

// ParseStringList interprets a raw value as an ordered list of
// reference strings. The value may be a native list or a JSON-encoded
// string of one. String elements are trimmed; object elements
// contribute their "path" field, falling back to "url"; blank and
// unrecognized elements are filtered out. Returns nil when the value
// cannot be interpreted as a list or when no entries survive.
func ParseStringList(value any) []string {
	list, ok := rawjson.List(value)
	if !ok {
		return nil
	}
	var entries []string
	for _, candidate := range list {
		var entry string
		switch v := candidate.(type) {
		case string:
			entry = strings.TrimSpace(v)
		case map[string]any:
			if path, ok := rawjson.TrimmedText(v, "path"); ok {
				entry = path
			} else if url, ok := rawjson.TrimmedText(v, "url"); ok {
				entry = url
			}
		}
		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ParseToolCalls interprets a raw value as a message's tool invocation
// log, a native list or a JSON-encoded string of one. Candidates that
// are not objects or that lack a tool name are dropped. Returns nil
// when the value cannot be interpreted as a list or when no valid
// entries remain; callers treat "no tool calls" and "malformed tool
// calls" identically.
func ParseToolCalls(value any) []ToolCallEvent {
	list, ok := rawjson.List(value)
	if !ok {
		return nil
	}
	var events []ToolCallEvent
	for _, candidate := range list {
		if event, ok := parseToolCall(candidate); ok {
			events = append(events, event)
		}
	}
	return events
}

func parseToolCall(candidate any) (ToolCallEvent, bool) {
	object, ok := candidate.(map[string]any)
	if !ok {
		return ToolCallEvent{}, false
	}
	tool, _ := rawjson.Text(object, "tool")
	if tool == "" {
		return ToolCallEvent{}, false
	}
	event := ToolCallEvent{
		Tool: tool,
		Args: rawjson.Stringify(object["args"]),
	}
	if id, ok := rawjson.TrimmedText(object, "id"); ok {
		event.ID = id
	}
	if runID, ok := rawjson.TrimmedText(object, "runId"); ok {
		event.RunID = runID
	}
	if iteration, ok := rawjson.Int(object, "iteration"); ok {
		event.Iteration = &iteration
	}
	return event, true
}

// ParseTimelineSteps interprets a raw value as a message's execution
// timeline, a native list or a JSON-encoded string of one. Validation
// is stricter than for tool calls: a candidate missing any of id, ts,
// or phase is dropped in full. Returns nil when the value cannot be
// interpreted as a list or when no valid steps remain.
func ParseTimelineSteps(value any) []TimelineStep {
	list, ok := rawjson.List(value)
	if !ok {
		return nil
	}
	var steps []TimelineStep
	for _, candidate := range list {
		if step, ok := parseTimelineStep(candidate); ok {
			steps = append(steps, step)
		}
	}
	return steps
}

func parseTimelineStep(candidate any) (TimelineStep, bool) {
	object, ok := candidate.(map[string]any)
	if !ok {
		return TimelineStep{}, false
	}
	id, _ := rawjson.Text(object, "id")
	ts, _ := rawjson.Text(object, "ts")
	phase, _ := rawjson.Text(object, "phase")
	if id == "" || ts == "" || phase == "" {
		return TimelineStep{}, false
	}
	step := TimelineStep{ID: id, TS: ts, Phase: phase}
	if runID, ok := rawjson.TrimmedText(object, "runId"); ok {
		step.RunID = runID
	}
	if iteration, ok := rawjson.Int(object, "iteration"); ok {
		step.Iteration = iteration
	}
	if tool, ok := rawjson.Text(object, "tool"); ok && tool != "" {
		step.Tool = tool
	}
	if preview, ok := rawjson.Object(object["argsPreview"]); ok {
		step.ArgsPreview = previewStrings(preview)
	}
	if result, ok := rawjson.Text(object, "resultPreview"); ok {
		step.ResultPreview = result
	}
	step.FileChanges = parseFileChanges(object["fileChanges"])
	return step, true
}

// previewStrings flattens an argument-preview object to string values.
// String values pass through unchanged so previews stay readable;
// nested values are JSON-encoded.
func previewStrings(object map[string]any) map[string]string {
	preview := make(map[string]string, len(object))
	for key, value := range object {
		if s, ok := value.(string); ok {
			preview[key] = s
			continue
		}
		preview[key] = rawjson.Stringify(value)
	}
	return preview
}

func parseFileChanges(value any) []FileChange {
	list, ok := rawjson.List(value)
	if !ok {
		return nil
	}
	var changes []FileChange
	for _, candidate := range list {
		object, ok := candidate.(map[string]any)
		if !ok {
			continue
		}
		path, _ := rawjson.Text(object, "path")
		if path == "" {
			continue
		}
		action, _ := rawjson.Text(object, "action")
		if action != ActionCreate && action != ActionEdit {
			continue
		}
		change := FileChange{Path: path, Action: action}
		if size, ok := rawjson.Number(object, "bytes"); ok {
			bytes := int64(size)
			change.Bytes = &bytes
		}
		if hash, ok := rawjson.Text(object, "hashAfter"); ok {
			change.HashAfter = hash
		}
		changes = append(changes, change)
	}
	return changes
}

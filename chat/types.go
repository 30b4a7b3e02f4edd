// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package chat

// DefaultTitle is substituted for a conversation title that is missing
// or blank after trimming. The UI never shows an unnamed conversation.
const DefaultTitle = "Untitled chat"

// Message roles. Any raw role outside this set normalizes to RoleUser.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// validRoles is the set of recognized message roles.
var validRoles = map[string]bool{
	RoleUser:      true,
	RoleAssistant: true,
	RoleTool:      true,
}

// IsValidRole reports whether the given string is a recognized message
// role.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// File-change actions. A file change whose raw action is anything else
// is dropped during parsing.
const (
	ActionCreate = "create"
	ActionEdit   = "edit"
)

// Conversation is a normalized conversation record. Value object:
// produced whole by [Normalizer.Conversation], never partially
// mutated. Re-normalizing a fresh raw record is the only update path.
type Conversation struct {
	// ID is the conversation identifier assigned by the store.
	ID string `json:"id"`

	// Title is the display title. Never empty: blank raw titles
	// normalize to DefaultTitle.
	Title string `json:"title"`

	// CreatedAt is an ISO 8601 instant. Filled with the current
	// instant when the raw record carries none.
	CreatedAt string `json:"createdAt"`

	// UpdatedAt is an ISO 8601 instant of the last modification,
	// conceptually >= CreatedAt. Filled like CreatedAt.
	UpdatedAt string `json:"updatedAt"`

	// MessageCount is the number of messages in the conversation.
	// Never negative; non-numeric raw values normalize to 0.
	MessageCount int `json:"messageCount"`

	// Archived hides the conversation from the default sidebar list.
	Archived bool `json:"archived"`

	// Pinned keeps the conversation at the top of the sidebar.
	Pinned bool `json:"pinned"`

	// SortOrder is a manual ordering key within the sidebar. Nil
	// when the raw record carries no numeric sort_order; the UI
	// falls back to recency ordering.
	SortOrder *float64 `json:"sortOrder,omitempty"`

	// FolderID references the owning folder, empty for top-level
	// conversations.
	FolderID string `json:"folderId,omitempty"`
}

// Message is a normalized chat message. The optional sub-lists are nil
// when absent or when no valid entries survived parsing; callers treat
// both the same way.
type Message struct {
	// ID is the message identifier assigned by the store.
	ID string `json:"id"`

	// Role is RoleUser, RoleAssistant, or RoleTool. Unrecognized
	// raw roles normalize to RoleUser.
	Role string `json:"role"`

	// Content is the message body, markdown for assistant messages.
	Content string `json:"content"`

	// Timestamp is the message instant in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// RunID correlates the message to a single agent execution.
	// When the raw record carries none, it is back-filled from the
	// first timeline step carrying one, then from the first tool
	// call, so run identity stays consistent across a message's
	// sub-records once resolved.
	RunID string `json:"runId,omitempty"`

	// ThinkingSummary is the agent's condensed reasoning for this
	// message, kept only when non-empty after trimming.
	ThinkingSummary string `json:"thinkingSummary,omitempty"`

	// Sources lists reference strings (note paths or URLs) the
	// agent cited.
	Sources []string `json:"sources,omitempty"`

	// ToolCalls is the tool invocation log for the run.
	ToolCalls []ToolCallEvent `json:"toolCalls,omitempty"`

	// TimelineSteps is the execution timeline for the run.
	TimelineSteps []TimelineStep `json:"timelineSteps,omitempty"`
}

// ToolCallEvent is one entry in a message's tool invocation log. The
// content of Args is opaque to this layer; only its shape is handled.
type ToolCallEvent struct {
	// RunID of the execution that issued the call, when recorded.
	RunID string `json:"runId,omitempty"`

	// ID identifies the call within the run, when recorded.
	ID string `json:"id,omitempty"`

	// Iteration is the agent loop iteration that issued the call.
	// Nil when the raw record carries no numeric iteration.
	Iteration *int `json:"iteration,omitempty"`

	// Tool is the tool name. Always non-empty: a raw entry without
	// one is dropped during parsing.
	Tool string `json:"tool"`

	// Args is the invocation argument payload as a string. Raw
	// string values pass through; native values are JSON-encoded;
	// absent values become "{}".
	Args string `json:"args"`
}

// TimelineStep is one entry in a message's execution timeline. ID, TS,
// and Phase are always non-empty: a raw step missing any of them is
// dropped in full rather than admitted with defaults, because a
// partial timeline entry is not trustworthy enough to display.
type TimelineStep struct {
	// RunID of the execution the step belongs to, when recorded.
	RunID string `json:"runId,omitempty"`

	// ID identifies the step within the run.
	ID string `json:"id"`

	// TS is the step's timestamp string as recorded by the agent.
	// Kept verbatim; the timeline view formats it.
	TS string `json:"ts"`

	// Phase names the execution phase ("planning", "tool",
	// "responding", ...). Opaque here.
	Phase string `json:"phase"`

	// Iteration is the agent loop iteration, 0 when not recorded.
	Iteration int `json:"iteration"`

	// Tool is the tool in flight during this step, if any.
	Tool string `json:"tool,omitempty"`

	// ArgsPreview is a truncated key/value preview of the tool
	// arguments. Values that arrived as strings pass through;
	// anything else is JSON-encoded.
	ArgsPreview map[string]string `json:"argsPreview,omitempty"`

	// ResultPreview is a truncated preview of the tool result.
	ResultPreview string `json:"resultPreview,omitempty"`

	// FileChanges lists vault files the step created or edited.
	FileChanges []FileChange `json:"fileChanges,omitempty"`
}

// FileChange records one file the agent touched during a timeline
// step.
type FileChange struct {
	// Path of the file, relative to the vault root.
	Path string `json:"path"`

	// Action is ActionCreate or ActionEdit. A raw entry with any
	// other action is dropped during parsing.
	Action string `json:"action"`

	// Bytes is the file size after the change, nil when not
	// recorded.
	Bytes *int64 `json:"bytes,omitempty"`

	// HashAfter is the content hash after the change, when
	// recorded.
	HashAfter string `json:"hashAfter,omitempty"`
}

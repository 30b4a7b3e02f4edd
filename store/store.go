// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/vellum-notes/vellum/chat"
	"github.com/vellum-notes/vellum/lib/clock"
	"github.com/vellum-notes/vellum/lib/sqlitepool"
)

// schema creates the conversation and message tables. Sub-structured
// message fields (sources, tool_calls, timeline) are TEXT columns
// holding stringified JSON: that is the raw contract the normalizers
// decode, shared with what the desktop shell has written historically.
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	created_at    TEXT,
	updated_at    TEXT,
	message_count INTEGER,
	archived      INTEGER,
	pinned        INTEGER,
	sort_order    REAL,
	folder_id     TEXT
);

CREATE TABLE IF NOT EXISTS messages (
	id               TEXT PRIMARY KEY,
	conversation_id  TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role             TEXT NOT NULL,
	content          TEXT,
	timestamp        INTEGER,
	run_id           TEXT,
	thinking_summary TEXT,
	sources          TEXT,
	tool_calls       TEXT,
	timeline         TEXT
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, timestamp);
`

// Store is the SQLite-backed persistence boundary. Safe for concurrent
// use; writes serialize on SQLite's single-writer lock.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Config holds the parameters for opening a store.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist. Required.
	Path string

	// PoolSize is the connection pool size. Zero means the pool
	// default.
	PoolSize int

	// Clock provides the current time for archive headers and import
	// normalization. Nil means the real clock.
	Clock clock.Clock

	// Logger receives operational messages. Nil means discard.
	Logger *slog.Logger
}

// Open creates the store, applying the schema to every connection.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: Path is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Store{pool: pool, clock: clk, logger: logger}, nil
}

// Close closes the underlying connection pool. Blocks until all
// borrowed connections are returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

// PutConversation inserts or replaces a conversation row.
func (s *Store) PutConversation(ctx context.Context, conversation chat.Conversation) error {
	if conversation.ID == "" {
		return fmt.Errorf("store: put conversation: id is required")
	}

	var sortOrder any
	if conversation.SortOrder != nil {
		sortOrder = *conversation.SortOrder
	}
	var folderID any
	if conversation.FolderID != "" {
		folderID = conversation.FolderID
	}

	// ON CONFLICT DO UPDATE rather than INSERT OR REPLACE: REPLACE
	// deletes the existing row, and with foreign keys on that cascade
	// would wipe the conversation's messages.
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO conversations
			(id, title, created_at, updated_at, message_count, archived, pinned, sort_order, folder_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				message_count = excluded.message_count,
				archived = excluded.archived,
				pinned = excluded.pinned,
				sort_order = excluded.sort_order,
				folder_id = excluded.folder_id`, &sqlitex.ExecOptions{
			Args: []any{
				conversation.ID,
				conversation.Title,
				conversation.CreatedAt,
				conversation.UpdatedAt,
				conversation.MessageCount,
				boolColumn(conversation.Archived),
				boolColumn(conversation.Pinned),
				sortOrder,
				folderID,
			},
		})
	})
	if err != nil {
		return fmt.Errorf("store: put conversation %q: %w", conversation.ID, err)
	}
	return nil
}

// PutMessage inserts or replaces a message row under a conversation.
// The conversation must already exist; the foreign key rejects
// orphaned messages. Sub-lists are written as stringified JSON, the
// same encoding the parsers accept back.
func (s *Store) PutMessage(ctx context.Context, conversationID string, message chat.Message) error {
	if message.ID == "" {
		return fmt.Errorf("store: put message: id is required")
	}
	if conversationID == "" {
		return fmt.Errorf("store: put message %q: conversation id is required", message.ID)
	}

	sources, err := stringifyColumn(message.Sources)
	if err != nil {
		return fmt.Errorf("store: put message %q: marshal sources: %w", message.ID, err)
	}
	toolCalls, err := stringifyColumn(message.ToolCalls)
	if err != nil {
		return fmt.Errorf("store: put message %q: marshal tool calls: %w", message.ID, err)
	}
	timeline, err := stringifyColumn(message.TimelineSteps)
	if err != nil {
		return fmt.Errorf("store: put message %q: marshal timeline: %w", message.ID, err)
	}

	var runID any
	if message.RunID != "" {
		runID = message.RunID
	}
	var thinkingSummary any
	if message.ThinkingSummary != "" {
		thinkingSummary = message.ThinkingSummary
	}

	err = s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `INSERT INTO messages
			(id, conversation_id, role, content, timestamp, run_id, thinking_summary, sources, tool_calls, timeline)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				conversation_id = excluded.conversation_id,
				role = excluded.role,
				content = excluded.content,
				timestamp = excluded.timestamp,
				run_id = excluded.run_id,
				thinking_summary = excluded.thinking_summary,
				sources = excluded.sources,
				tool_calls = excluded.tool_calls,
				timeline = excluded.timeline`, &sqlitex.ExecOptions{
			Args: []any{
				message.ID,
				conversationID,
				message.Role,
				message.Content,
				message.Timestamp,
				runID,
				thinkingSummary,
				sources,
				toolCalls,
				timeline,
			},
		})
	})
	if err != nil {
		return fmt.Errorf("store: put message %q: %w", message.ID, err)
	}
	return nil
}

// DeleteConversation removes a conversation and, via the cascading
// foreign key, all of its messages. Deleting a conversation that does
// not exist is a no-op.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "DELETE FROM conversations WHERE id = ?",
			&sqlitex.ExecOptions{Args: []any{id}})
	})
	if err != nil {
		return fmt.Errorf("store: delete conversation %q: %w", id, err)
	}
	return nil
}

// ConversationRecords returns every conversation as a raw record in id
// order. NULL columns are omitted from the maps, matching the optional
// fields the normalizer treats as absent.
func (s *Store) ConversationRecords(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT * FROM conversations ORDER BY id",
			&sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					records = append(records, rowRecord(stmt))
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("store: conversation records: %w", err)
	}
	return records, nil
}

// MessageRecords returns the raw message records of one conversation
// in timestamp order (id as tie-break).
func (s *Store) MessageRecords(ctx context.Context, conversationID string) ([]map[string]any, error) {
	var records []map[string]any
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT * FROM messages WHERE conversation_id = ? ORDER BY timestamp, id",
			&sqlitex.ExecOptions{
				Args: []any{conversationID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					records = append(records, rowRecord(stmt))
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("store: message records for %q: %w", conversationID, err)
	}
	return records, nil
}

// conversationRecord returns one conversation's raw record, or an
// error when the id is unknown.
func (s *Store) conversationRecord(ctx context.Context, id string) (map[string]any, error) {
	var record map[string]any
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT * FROM conversations WHERE id = ?",
			&sqlitex.ExecOptions{
				Args: []any{id},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					record = rowRecord(stmt)
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("store: conversation record %q: %w", id, err)
	}
	if record == nil {
		return nil, fmt.Errorf("store: conversation %q not found", id)
	}
	return record, nil
}

// rowRecord converts the current result row into a raw record. Column
// names come straight from the query; NULL columns are left out so the
// normalizers see them as absent rather than as typed zero values.
func rowRecord(stmt *sqlite.Stmt) map[string]any {
	record := make(map[string]any, stmt.ColumnCount())
	for i := 0; i < stmt.ColumnCount(); i++ {
		name := stmt.ColumnName(i)
		switch stmt.ColumnType(i) {
		case sqlite.TypeInteger:
			record[name] = stmt.ColumnInt64(i)
		case sqlite.TypeFloat:
			record[name] = stmt.ColumnFloat(i)
		case sqlite.TypeText:
			record[name] = stmt.ColumnText(i)
		case sqlite.TypeBlob:
			blob := make([]byte, stmt.ColumnLen(i))
			stmt.ColumnBytes(i, blob)
			record[name] = blob
		case sqlite.TypeNull:
			// Omitted.
		}
	}
	return record
}

// stringifyColumn marshals an optional sub-list to its stringified
// JSON column value, nil (NULL) when the list is absent.
func stringifyColumn(value any) (any, error) {
	switch v := value.(type) {
	case []string:
		if v == nil {
			return nil, nil
		}
	case []chat.ToolCallEvent:
		if v == nil {
			return nil, nil
		}
	case []chat.TimelineStep:
		if v == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// boolColumn stores booleans as 0/1 integers, the shell's historical
// encoding.
func boolColumn(value bool) int {
	if value {
		return 1
	}
	return 0
}

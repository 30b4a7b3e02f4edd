// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/vellum-notes/vellum/chat"
	"github.com/vellum-notes/vellum/lib/rawjson"
)

// Archive container layout:
//
//	[Magic: 4 bytes "VELA"] [Version: 1 byte] [Compression: 1 byte]
//	[Encrypted: 1 byte (0/1)] [UncompressedSize: 8 bytes big-endian]
//	[Body: payload, compressed per tag, age-encrypted when flagged]
//
// The payload is JSONL: one archive header record, then every
// conversation record, then every message record. Records are the raw
// store shapes, so an import replays them through the normalizers
// exactly as if they had been read from the database.
const (
	archiveMagic   = "VELA"
	archiveVersion = 1

	archiveHeaderSize = 4 + 1 + 1 + 1 + 8
)

// maxArchivePayload caps the allocation a corrupt or hostile size
// field can request during import.
const maxArchivePayload = 1 << 31

// ExportOptions configures Export.
type ExportOptions struct {
	// ConversationIDs selects the conversations to export. Empty
	// means all.
	ConversationIDs []string

	// Compression is the payload compression. CompressionNone is the
	// zero value; the archive CLI defaults to zstd.
	Compression Compression

	// Passphrase encrypts the archive with an age scrypt recipient
	// when non-empty.
	Passphrase string
}

// ImportOptions configures Import.
type ImportOptions struct {
	// Passphrase decrypts an encrypted archive. Importing an
	// encrypted archive without it is an error.
	Passphrase string
}

// ImportStats reports what an import did.
type ImportStats struct {
	// Conversations and Messages count the records persisted.
	Conversations int
	Messages      int

	// Skipped counts records the normalizers could not admit (no id,
	// unknown kind, message without a conversation).
	Skipped int
}

// archiveHeader is the first JSONL record of the payload.
type archiveHeader struct {
	Kind          string `json:"kind"`
	Version       int    `json:"version"`
	ExportedAt    int64  `json:"exportedAt"`
	Conversations int    `json:"conversations"`
}

const archiveHeaderKind = "vellum.archive"

// archiveLine is every subsequent JSONL record.
type archiveLine struct {
	Kind   string         `json:"kind"`
	Record map[string]any `json:"record"`
}

// Export writes the selected conversations and their messages as a
// single archive to destination.
func (s *Store) Export(ctx context.Context, destination io.Writer, opts ExportOptions) error {
	conversations, err := s.exportConversations(ctx, opts.ConversationIDs)
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	messageCount := 0

	header := archiveHeader{
		Kind:          archiveHeaderKind,
		Version:       archiveVersion,
		ExportedAt:    s.clock.Now().UnixMilli(),
		Conversations: len(conversations),
	}
	if err := writeArchiveLine(&payload, header); err != nil {
		return err
	}
	for _, record := range conversations {
		if err := writeArchiveLine(&payload, archiveLine{Kind: "conversation", Record: record}); err != nil {
			return err
		}
	}
	// Messages follow all conversations so that an import never sees
	// a message before its conversation row exists.
	for _, record := range conversations {
		id, _ := rawjson.Text(record, "id")
		messages, err := s.MessageRecords(ctx, id)
		if err != nil {
			return err
		}
		for _, message := range messages {
			if err := writeArchiveLine(&payload, archiveLine{Kind: "message", Record: message}); err != nil {
				return err
			}
			messageCount++
		}
	}

	compressed, tag, err := compressPayload(payload.Bytes(), opts.Compression)
	if err != nil {
		return fmt.Errorf("store: export: %w", err)
	}

	encrypted := opts.Passphrase != ""
	fileHeader := make([]byte, archiveHeaderSize)
	copy(fileHeader, archiveMagic)
	fileHeader[4] = archiveVersion
	fileHeader[5] = byte(tag)
	if encrypted {
		fileHeader[6] = 1
	}
	binary.BigEndian.PutUint64(fileHeader[7:], uint64(payload.Len()))
	if _, err := destination.Write(fileHeader); err != nil {
		return fmt.Errorf("store: export: writing header: %w", err)
	}

	body := destination
	var closeBody func() error
	if encrypted {
		recipient, err := age.NewScryptRecipient(opts.Passphrase)
		if err != nil {
			return fmt.Errorf("store: export: %w", err)
		}
		encryptedWriter, err := age.Encrypt(destination, recipient)
		if err != nil {
			return fmt.Errorf("store: export: %w", err)
		}
		body = encryptedWriter
		closeBody = encryptedWriter.Close
	}
	if _, err := body.Write(compressed); err != nil {
		return fmt.Errorf("store: export: writing payload: %w", err)
	}
	if closeBody != nil {
		if err := closeBody(); err != nil {
			return fmt.Errorf("store: export: sealing archive: %w", err)
		}
	}

	s.logger.Info("conversation archive exported",
		"conversations", len(conversations),
		"messages", messageCount,
		"compression", tag.String(),
		"encrypted", encrypted,
	)
	return nil
}

// exportConversations resolves the selection to raw records. Naming a
// conversation that does not exist is an error rather than a silent
// partial archive.
func (s *Store) exportConversations(ctx context.Context, ids []string) ([]map[string]any, error) {
	if len(ids) == 0 {
		return s.ConversationRecords(ctx)
	}
	records := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		record, err := s.conversationRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func writeArchiveLine(payload *bytes.Buffer, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("store: export: marshal archive record: %w", err)
	}
	payload.Write(data)
	payload.WriteByte('\n')
	return nil
}

// EncryptedArchive reports whether data begins with a Vellum archive
// header carrying the encryption flag. Callers use it to decide
// whether a passphrase is needed before starting an Import; it
// validates nothing else.
func EncryptedArchive(data []byte) bool {
	return len(data) >= archiveHeaderSize &&
		string(data[:4]) == archiveMagic &&
		data[6] == 1
}

// Import reads an archive and re-persists its records. Every record
// flows through the chat normalizers first, so a hand-edited or
// older-version archive degrades the same way malformed database rows
// do instead of corrupting the store.
func (s *Store) Import(ctx context.Context, source io.Reader, opts ImportOptions) (ImportStats, error) {
	var stats ImportStats

	fileHeader := make([]byte, archiveHeaderSize)
	if _, err := io.ReadFull(source, fileHeader); err != nil {
		return stats, fmt.Errorf("store: import: reading header: %w", err)
	}
	if string(fileHeader[:4]) != archiveMagic {
		return stats, fmt.Errorf("store: import: not a vellum archive")
	}
	if fileHeader[4] != archiveVersion {
		return stats, fmt.Errorf("store: import: archive version %d is not supported (expected %d)",
			fileHeader[4], archiveVersion)
	}
	tag := Compression(fileHeader[5])
	encrypted := fileHeader[6] == 1
	uncompressedSize := binary.BigEndian.Uint64(fileHeader[7:])
	if uncompressedSize > maxArchivePayload {
		return stats, fmt.Errorf("store: import: payload size %d exceeds limit", uncompressedSize)
	}

	body, err := io.ReadAll(source)
	if err != nil {
		return stats, fmt.Errorf("store: import: reading payload: %w", err)
	}
	if encrypted {
		if opts.Passphrase == "" {
			return stats, fmt.Errorf("store: import: archive is encrypted and no passphrase was given")
		}
		identity, err := age.NewScryptIdentity(opts.Passphrase)
		if err != nil {
			return stats, fmt.Errorf("store: import: %w", err)
		}
		decrypted, err := age.Decrypt(bytes.NewReader(body), identity)
		if err != nil {
			return stats, fmt.Errorf("store: import: decrypting archive: %w", err)
		}
		if body, err = io.ReadAll(decrypted); err != nil {
			return stats, fmt.Errorf("store: import: decrypting archive: %w", err)
		}
	}

	payload, err := decompressBlock(body, tag, int(uncompressedSize))
	if err != nil {
		return stats, fmt.Errorf("store: import: %w", err)
	}

	lines := bytes.Split(payload, []byte("\n"))
	if len(lines) == 0 {
		return stats, fmt.Errorf("store: import: empty archive payload")
	}
	var header archiveHeader
	if err := json.Unmarshal(lines[0], &header); err != nil {
		return stats, fmt.Errorf("store: import: decoding archive header: %w", err)
	}
	if header.Kind != archiveHeaderKind {
		return stats, fmt.Errorf("store: import: unexpected payload header kind %q", header.Kind)
	}

	normalizer := chat.NewNormalizer(s.clock)
	for _, line := range lines[1:] {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var record archiveLine
		if err := json.Unmarshal(line, &record); err != nil {
			return stats, fmt.Errorf("store: import: decoding archive record: %w", err)
		}

		switch record.Kind {
		case "conversation":
			conversation := normalizer.Conversation(record.Record)
			if conversation.ID == "" {
				s.logger.Warn("skipping archived conversation without id")
				stats.Skipped++
				continue
			}
			if err := s.PutConversation(ctx, conversation); err != nil {
				return stats, err
			}
			stats.Conversations++

		case "message":
			conversationID, _ := rawjson.TrimmedText(record.Record, "conversation_id")
			message := normalizer.Message(record.Record)
			if conversationID == "" || message.ID == "" {
				s.logger.Warn("skipping archived message without id or conversation",
					"message_id", message.ID)
				stats.Skipped++
				continue
			}
			if err := s.PutMessage(ctx, conversationID, message); err != nil {
				return stats, err
			}
			stats.Messages++

		default:
			s.logger.Warn("skipping archive record of unknown kind", "kind", record.Kind)
			stats.Skipped++
		}
	}

	s.logger.Info("conversation archive imported",
		"conversations", stats.Conversations,
		"messages", stats.Messages,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// noteMetadata is the subset of YAML frontmatter the vault reads.
// Every field is tolerant: metadata that cannot be interpreted is
// absent, never an error, because user-authored frontmatter drifts at
// least as much as stored records do.
type noteMetadata struct {
	Title   flexString   `yaml:"title"`
	Aliases scalarOrList `yaml:"aliases"`
	Tags    scalarOrList `yaml:"tags"`
}

// parseFrontmatter extracts note metadata from a leading YAML
// frontmatter block ("---" fence on the first line, closed by a "---"
// line). Files without a block, with an unclosed block, or with
// unparseable YAML yield zero metadata.
func parseFrontmatter(content []byte) noteMetadata {
	var metadata noteMetadata
	block, ok := frontmatterBlock(content)
	if !ok {
		return metadata
	}
	if err := yaml.Unmarshal(block, &metadata); err != nil {
		return noteMetadata{}
	}
	return metadata
}

// frontmatterBlock returns the YAML between the opening and closing
// "---" fences. Handles CRLF line endings and a UTF-8 BOM.
func frontmatterBlock(content []byte) ([]byte, bool) {
	text := strings.TrimPrefix(string(content), "\ufeff")
	lines := strings.Split(text, "\n")
	if strings.TrimRight(lines[0], "\r") != "---" {
		return nil, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "---" {
			return []byte(strings.Join(lines[1:i], "\n")), true
		}
	}
	return nil, false
}

// flexString accepts any YAML scalar where a string is expected,
// keeping its raw text ("title: 2024" is a fine note title).
type flexString string

func (f *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*f = flexString(strings.TrimSpace(node.Value))
	}
	return nil
}

// scalarOrList accepts both "tags: project" and "tags: [a, b]" forms.
// Non-scalar list items are dropped, blanks are filtered, and any
// other shape is absent.
type scalarOrList []string

func (s *scalarOrList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if value := strings.TrimSpace(node.Value); value != "" {
			*s = scalarOrList{value}
		}
	case yaml.SequenceNode:
		var values []string
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				continue
			}
			if value := strings.TrimSpace(item.Value); value != "" {
				values = append(values, value)
			}
		}
		*s = values
	}
	return nil
}

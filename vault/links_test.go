// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"slices"
	"testing"
)

func TestExtractNoteRefs_Wikilinks(t *testing.T) {
	t.Parallel()

	markdown := []byte(`See [[Projects/Roadmap 2024]] and [[Meeting Notes|the notes]].
Also [[Archive/Old#section]] for history.`)

	want := []string{
		"Projects/Roadmap 2024",
		"Meeting Notes",
		"Archive/Old#section",
	}
	if got := ExtractNoteRefs(markdown); !slices.Equal(got, want) {
		t.Errorf("ExtractNoteRefs = %v, want %v", got, want)
	}
}

func TestExtractNoteRefs_MarkdownLinks(t *testing.T) {
	t.Parallel()

	markdown := []byte(`Start with [the plan](Projects/Plan.md), then read
[the docs](https://example.com/docs) and [notes](daily/today.md).`)

	want := []string{"Projects/Plan.md", "daily/today.md"}
	if got := ExtractNoteRefs(markdown); !slices.Equal(got, want) {
		t.Errorf("ExtractNoteRefs = %v, want %v", got, want)
	}
}

func TestExtractNoteRefs_WikilinksBeforeMarkdownLinks(t *testing.T) {
	t.Parallel()

	// Wikilink targets come first even when a markdown link appears
	// earlier in the document.
	markdown := []byte(`[first](alpha.md) then [[Beta]].`)

	want := []string{"Beta", "alpha.md"}
	if got := ExtractNoteRefs(markdown); !slices.Equal(got, want) {
		t.Errorf("ExtractNoteRefs = %v, want %v", got, want)
	}
}

func TestExtractNoteRefs_Deduplicates(t *testing.T) {
	t.Parallel()

	markdown := []byte(`[[Plan]] and [[Plan]] and [also the plan](Plan).`)

	if got := ExtractNoteRefs(markdown); !slices.Equal(got, []string{"Plan"}) {
		t.Errorf("ExtractNoteRefs = %v, want [Plan]", got)
	}
}

func TestExtractNoteRefs_ExcludesURLs(t *testing.T) {
	t.Parallel()

	markdown := []byte(`[[https://example.com/page]] and
[site](http://example.com) and [app](obsidian://open?vault=x) and
<https://example.com/auto>.`)

	if got := ExtractNoteRefs(markdown); got != nil {
		t.Errorf("ExtractNoteRefs = %v, want nil", got)
	}
}

func TestExtractNoteRefs_NoLinks(t *testing.T) {
	t.Parallel()

	for _, markdown := range []string{
		"",
		"# Heading\n\nplain prose with no links",
		"[[]] has an empty target",
		"broken [link(syntax.md)",
	} {
		if got := ExtractNoteRefs([]byte(markdown)); got != nil {
			t.Errorf("ExtractNoteRefs(%q) = %v, want nil", markdown, got)
		}
	}
}

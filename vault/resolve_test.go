// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"testing"
)

func listing(relativePaths ...string) []FileEntry {
	entries := make([]FileEntry, len(relativePaths))
	for i, relative := range relativePaths {
		entries[i] = FileEntry{RelativePath: relative, Path: "/vault/" + relative}
	}
	return entries
}

func TestResolve_ExactTier(t *testing.T) {
	t.Parallel()
	files := listing("Projects/Roadmap 2024.md", "Inbox.md")

	for _, test := range []struct {
		name      string
		requested string
	}{
		{"verbatim", "Projects/Roadmap 2024.md"},
		{"case insensitive", "projects/roadmap 2024.MD"},
		{"missing extension", "Projects/Roadmap 2024"},
		{"backslash separators", `Projects\Roadmap 2024.md`},
		{"leading slash", "/Projects/Roadmap 2024.md"},
		{"fragment stripped", "Projects/Roadmap 2024.md#goals"},
		{"fragment without extension", "Projects/Roadmap 2024#goals"},
		{"surrounding whitespace", "  Projects/Roadmap 2024.md  "},
	} {
		got, ok := Resolve(test.requested, files)
		if !ok || got != "Projects/Roadmap 2024.md" {
			t.Errorf("%s: Resolve(%q) = %q, %v; want Projects/Roadmap 2024.md", test.name, test.requested, got, ok)
		}
	}
}

func TestResolve_SuffixTier(t *testing.T) {
	t.Parallel()
	files := listing("Plan.md", "Notes/Sub/Plan.md")

	// "Sub/Plan.md" is a suffix of the second entry. The basename tier
	// would also accept the first entry, but suffix is the stronger
	// tier and is exhausted first across the whole listing.
	got, ok := Resolve("Sub/Plan.md", files)
	if !ok || got != "Notes/Sub/Plan.md" {
		t.Errorf("Resolve(Sub/Plan.md) = %q, %v; want Notes/Sub/Plan.md via suffix tier", got, ok)
	}
}

func TestResolve_BasenameTier(t *testing.T) {
	t.Parallel()
	files := listing("Archive/2023/Summary.md")

	// The folder part of the request is wrong, so neither exact nor
	// suffix applies; the shared basename still finds the file.
	got, ok := Resolve("Old/Summary.md", files)
	if !ok || got != "Archive/2023/Summary.md" {
		t.Errorf("Resolve(Old/Summary.md) = %q, %v; want Archive/2023/Summary.md", got, ok)
	}
}

func TestResolve_ReferenceDrift(t *testing.T) {
	t.Parallel()
	files := listing("Projects/Roadmap 2024.md")

	// The forms a note reference drifts into between the agent's
	// output and the real file name. All of them must land on the same
	// file, whichever tier picks them up.
	for _, test := range []struct {
		name      string
		requested string
	}{
		{"title-like reference", "Roadmap 2024"},
		{"hyphenated slug", "roadmap-2024.md"},
		{"underscored slug", "Roadmap_2024"},
		{"slugged folder and name", "projects/roadmap-2024"},
	} {
		got, ok := Resolve(test.requested, files)
		if !ok || got != "Projects/Roadmap 2024.md" {
			t.Errorf("%s: Resolve(%q) = %q, %v; want Projects/Roadmap 2024.md", test.name, test.requested, got, ok)
		}
	}
}

func TestResolve_TierPrecedence(t *testing.T) {
	t.Parallel()

	// The first listing entry matches only loosely; the second matches
	// exactly. Exact wins even though the loose candidate comes first
	// in listing order: order breaks ties within a tier, never across
	// tiers.
	files := listing("roadmap-2024.md", "Projects/Roadmap 2024.md")
	got, ok := Resolve("Projects/Roadmap 2024.md", files)
	if !ok || got != "Projects/Roadmap 2024.md" {
		t.Errorf("Resolve = %q, %v; want exact match to beat earlier loose match", got, ok)
	}
}

func TestResolve_ListingOrderBreaksTies(t *testing.T) {
	t.Parallel()

	// Two files share the basename. Listing order decides — not
	// alphabetical order, not recency. This is deliberately the whole
	// tie-break policy; these assertions exist to catch any silent
	// change of it.
	forward := listing("Projects/Roadmap 2024.md", "Archive/Roadmap 2024.md")
	got, ok := Resolve("Roadmap 2024.md", forward)
	if !ok || got != "Projects/Roadmap 2024.md" {
		t.Errorf("Resolve = %q, %v; want first entry in listing order", got, ok)
	}

	reversed := listing("Archive/Roadmap 2024.md", "Projects/Roadmap 2024.md")
	got, ok = Resolve("Roadmap 2024.md", reversed)
	if !ok || got != "Archive/Roadmap 2024.md" {
		t.Errorf("Resolve = %q, %v; want first entry in reversed listing order", got, ok)
	}
}

func TestResolve_URLsRejected(t *testing.T) {
	t.Parallel()

	// The listing even contains a file that would match the URL's
	// basename loosely; URL-shaped requests must never reach matching.
	files := listing("x.md", "example.com/x.md")

	for _, requested := range []string{
		"https://example.com/x",
		"http://example.com/x.md",
		"obsidian://open?vault=main&file=x",
		"file:///etc/hosts",
	} {
		if got, ok := Resolve(requested, files); ok {
			t.Errorf("Resolve(%q) = %q, want no match for URLs", requested, got)
		}
	}
}

func TestResolve_EmptyAndDegenerate(t *testing.T) {
	t.Parallel()
	files := listing("Inbox.md")

	for _, requested := range []string{"", "   ", "#fragment-only", "///", `\\`} {
		if got, ok := Resolve(requested, files); ok {
			t.Errorf("Resolve(%q) = %q, want no match", requested, got)
		}
	}
}

func TestResolve_NoMatch(t *testing.T) {
	t.Parallel()
	files := listing("Inbox.md", "Projects/Roadmap 2024.md")

	if got, ok := Resolve("Shopping List", files); ok {
		t.Errorf("Resolve(Shopping List) = %q, want no match", got)
	}
	if _, ok := Resolve("Inbox", nil); ok {
		t.Error("Resolve against empty listing reported a match")
	}
}

func TestNormalizeRequest(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		name      string
		requested string
		want      string
		ok        bool
	}{
		{"plain name", "Inbox", "Inbox.md", true},
		{"extension preserved", "Inbox.md", "Inbox.md", true},
		{"uppercase extension preserved", "INBOX.MD", "INBOX.MD", true},
		{"backslashes", `Projects\Sub\Note`, "Projects/Sub/Note.md", true},
		{"fragment stripped at first hash", "Note#a#b", "Note.md", true},
		{"space before fragment", "Note #heading", "Note.md", true},
		{"leading slashes trimmed", "//Note.md", "Note.md", true},
		{"other extension gets md appended", "data.json", "data.json.md", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"fragment only", "#heading", "", false},
		{"url", "https://example.com/a.md", "", false},
	} {
		got, ok := normalizeRequest(test.requested)
		if got != test.want || ok != test.ok {
			t.Errorf("%s: normalizeRequest(%q) = %q, %v; want %q, %v",
				test.name, test.requested, got, ok, test.want, test.ok)
		}
	}
}

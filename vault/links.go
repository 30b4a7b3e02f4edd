// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// wikilinkPattern matches [[target]] and [[target|alias]] references.
var wikilinkPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

var linkMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ExtractNoteRefs returns the note references in a markdown document:
// wikilink targets in document order, then standard link destinations
// in document order, de-duplicated. Display aliases ([[target|alias]])
// are dropped, #fragments are kept for Resolve to strip, and anything
// with a URL scheme is excluded since it never names a vault note.
func ExtractNoteRefs(markdown []byte) []string {
	var refs []string
	seen := make(map[string]bool)
	keep := func(ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" || seen[ref] || urlSchemePattern.MatchString(ref) {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	for _, match := range wikilinkPattern.FindAllSubmatch(markdown, -1) {
		target, _, _ := strings.Cut(string(match[1]), "|")
		keep(target)
	}

	document := linkMarkdown.Parser().Parse(text.NewReader(markdown))
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := node.(*ast.Link); ok {
			keep(string(link.Destination))
		}
		return ast.WalkContinue, nil
	})
	return refs
}

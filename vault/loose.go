// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-+`)
)

// looseSegment reduces one path segment to its canonical loose form,
// so that slugification variants of the same name compare equal:
// "Roadmap 2024.md", "roadmap-2024" and "Roadmap_2024" all reduce to
// "roadmap-2024". The reduction lowercases, collapses whitespace runs
// to single hyphens, treats underscores as hyphens, collapses repeated
// hyphens, trims leading and trailing hyphens, and finally removes a
// ".md" extension.
func looseSegment(segment string) string {
	s := strings.ToLower(segment)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.TrimSuffix(s, ".md")
	return s
}

// loosePath splits a path on "/" and reduces each segment with
// looseSegment. Two paths are loosely equal when their reduced
// segment lists are equal.
func loosePath(path string) []string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = looseSegment(segment)
	}
	return segments
}

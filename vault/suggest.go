// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Suggestion is one fuzzy candidate for an unresolved reference.
type Suggestion struct {
	RelativePath string `json:"relativePath"`
	Title        string `json:"title"`
	Score        int    `json:"score"`
}

// Suggest returns up to limit notes fuzzily matching the query, best
// first, for "did you mean" output when a reference fails to resolve.
// Both the relative path and the title are matched and the better
// score counts. Matching is case-insensitive. A limit of zero or less
// means no limit.
func Suggest(notes []Note, query string, limit int) []Suggestion {
	// fzf expects a pre-lowercased pattern for case-insensitive runs.
	pattern := []rune(strings.ToLower(strings.TrimSpace(query)))
	if len(pattern) == 0 {
		return nil
	}
	slab := util.MakeSlab(100*1024, 2048)
	var suggestions []Suggestion
	for _, note := range notes {
		score, matched := fuzzyScore(note.RelativePath, pattern, slab)
		if titleScore, ok := fuzzyScore(note.Title, pattern, slab); ok && (!matched || titleScore > score) {
			score, matched = titleScore, true
		}
		if !matched {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			RelativePath: note.RelativePath,
			Title:        note.Title,
			Score:        score,
		})
	}
	sort.SliceStable(suggestions, func(a, b int) bool {
		return suggestions[a].Score > suggestions[b].Score
	})
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

func fuzzyScore(candidate string, pattern []rune, slab *util.Slab) (int, bool) {
	chars := util.ToChars([]byte(candidate))
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
	if result.Score <= 0 {
		return 0, false
	}
	return result.Score, true
}

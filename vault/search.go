// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Okapi BM25 parameters, standard values.
const (
	searchK1      = 1.2
	searchB       = 0.75
	searchEpsilon = 0.25
)

// Field weights for note indexing. The title dominates, aliases and
// tags matter, path segments break ties.
const (
	weightTitle   = 3
	weightAliases = 2
	weightTags    = 2
	weightPath    = 1
)

var searchTokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// SearchHit is one ranked result.
type SearchHit struct {
	RelativePath string  `json:"relativePath"`
	Title        string  `json:"title"`
	Score        float64 `json:"score"`
}

// SearchIndex ranks notes against free-text queries with Okapi BM25.
// Immutable once built, safe for concurrent reads. Rebuild it when
// the listing signature changes.
type SearchIndex struct {
	notes           []Note
	termFrequencies []map[string]int
	lengths         []int
	averageLength   float64
	idf             map[string]float64
}

// NewSearchIndex builds an index over a scan result. Each note is
// indexed as a weighted bag of tokens drawn from its title, aliases,
// tags, and path segments.
func NewSearchIndex(notes []Note) *SearchIndex {
	index := &SearchIndex{
		notes:           notes,
		termFrequencies: make([]map[string]int, len(notes)),
		lengths:         make([]int, len(notes)),
		idf:             make(map[string]float64),
	}

	documentFrequency := make(map[string]int)
	var totalLength int
	for i, note := range notes {
		tokens := noteTokens(note)
		index.lengths[i] = len(tokens)
		totalLength += len(tokens)

		frequency := make(map[string]int, len(tokens))
		for _, token := range tokens {
			if frequency[token] == 0 {
				documentFrequency[token]++
			}
			frequency[token]++
		}
		index.termFrequencies[i] = frequency
	}
	if len(notes) > 0 {
		index.averageLength = float64(totalLength) / float64(len(notes))
	}

	noteCount := float64(len(notes))
	for term, frequency := range documentFrequency {
		idf := math.Log(1 + (noteCount-float64(frequency)+0.5)/(float64(frequency)+0.5))
		if idf < 0 {
			// Terms in nearly every note keep a small positive
			// contribution instead of flipping negative.
			idf = searchEpsilon
		}
		index.idf[term] = idf
	}
	return index
}

// Search returns up to limit notes scoring above zero for the query,
// best first. Equal scores keep listing order, consistent with how
// the resolver breaks ties. A limit of zero or less means no limit.
func (index *SearchIndex) Search(query string, limit int) []SearchHit {
	queryTokens := searchTokens(query)
	if len(queryTokens) == 0 {
		return nil
	}
	var hits []SearchHit
	for i, note := range index.notes {
		score := index.score(i, queryTokens)
		if score > 0 {
			hits = append(hits, SearchHit{
				RelativePath: note.RelativePath,
				Title:        note.Title,
				Score:        score,
			})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func (index *SearchIndex) score(noteIndex int, queryTokens []string) float64 {
	frequencies := index.termFrequencies[noteIndex]
	length := float64(index.lengths[noteIndex])
	var score float64
	for _, token := range queryTokens {
		frequency := float64(frequencies[token])
		if frequency == 0 {
			continue
		}
		numerator := frequency * (searchK1 + 1)
		denominator := frequency + searchK1*(1-searchB+searchB*length/index.averageLength)
		score += index.idf[token] * numerator / denominator
	}
	return score
}

// noteTokens builds the weighted token sequence for one note by
// repeating each field's tokens by its weight. Composite weighting is
// a simple stand-in for per-field BM25 that holds up at vault scale.
func noteTokens(note Note) []string {
	var tokens []string
	weighted := func(text string, weight int) {
		fieldTokens := searchTokens(text)
		for i := 0; i < weight; i++ {
			tokens = append(tokens, fieldTokens...)
		}
	}
	weighted(note.Title, weightTitle)
	weighted(strings.Join(note.Aliases, " "), weightAliases)
	weighted(strings.Join(note.Tags, " "), weightTags)
	weighted(strings.TrimSuffix(note.RelativePath, ".md"), weightPath)
	return tokens
}

// searchTokens lowercases the text and splits it into alphanumeric
// runs, dropping single-character noise.
func searchTokens(text string) []string {
	matches := searchTokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := matches[:0]
	for _, match := range matches {
		if len(match) >= 2 {
			tokens = append(tokens, match)
		}
	}
	return tokens
}

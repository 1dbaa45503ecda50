// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package abstract rebuilds plain-text abstracts from the sparse word-position
// encoding OpenAlex uses to ship them.
package abstract

import (
	"sort"
	"strings"

	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

// FromWork returns the abstract of w as plain text. ok is false when the work
// carries neither a plain-text abstract nor an inverted index.
func FromWork(w types.Work) (text string, ok bool) {
	return Reconstruct(w.Abstract, w.AbstractInvertedIndex)
}

// Reconstruct returns plain unchanged when it is non-nil. Otherwise it inverts
// invertedIndex to a position→word map and joins the words with single spaces
// in ascending position order.
//
// Positions are expected to be dense from 0. Gaps are not filled: a sparse
// index yields the present words back to back. When two words claim the
// same position the lexicographically greatest one is kept.
func Reconstruct(plain *string, invertedIndex map[string][]int) (string, bool) {
	if plain != nil {
		return *plain, true
	}
	if len(invertedIndex) == 0 {
		return "", false
	}

	// Visit words in sorted order so collisions resolve the same way on
	// every run regardless of map iteration order.
	words := make([]string, 0, len(invertedIndex))
	for word := range invertedIndex {
		words = append(words, word)
	}
	sort.Strings(words)

	byPos := make(map[int]string)
	for _, word := range words {
		for _, pos := range invertedIndex[word] {
			byPos[pos] = word
		}
	}
	if len(byPos) == 0 {
		return "", false
	}

	positions := make([]int, 0, len(byPos))
	for pos := range byPos {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = byPos[pos]
	}
	return strings.Join(out, " "), true
}

// Invert builds a dense inverted index from text by splitting at whitespace.
// It is the inverse of Reconstruct up to whitespace collapsing.
func Invert(text string) map[string][]int {
	idx := make(map[string][]int)
	for pos, word := range strings.Fields(text) {
		idx[word] = append(idx[word], pos)
	}
	return idx
}

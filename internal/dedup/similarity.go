// Package dedup finds and removes duplicate flashcards. Exact duplicates
// are matched by normalized content hash; near-duplicates by edit-distance
// similarity over normalized front and back text.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/pkg/utils"
)

// Normalize canonicalizes card text for comparison: HTML stripped,
// punctuation removed, whitespace collapsed, lowercased.
func Normalize(s string) string {
	s = utils.StripHTML(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return utils.CollapseSpaces(b.String())
}

// ContentHash fingerprints a card by its normalized front and back. Equal
// hashes mean exact duplicates.
func ContentHash(front, back string) string {
	sum := sha256.Sum256([]byte(Normalize(front) + "|" + Normalize(back)))
	return hex.EncodeToString(sum[:])
}

// Ratio returns a similarity in [0,1] from the Levenshtein distance between
// two strings: 1 means identical, 0 means nothing in common. Comparing
// against an empty string yields 0.
func Ratio(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	maxLen := len(runesA)
	if len(runesB) > maxLen {
		maxLen = len(runesB)
	}
	return 1 - float64(levenshtein(runesA, runesB))/float64(maxLen)
}

// levenshtein computes edit distance with the two-row dynamic programming
// formulation.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minOf(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

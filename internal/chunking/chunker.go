package chunking

import (
	"regexp"
	"strings"
)

// sentenceEnd matches a sentence terminator followed by whitespace. The
// terminator stays with the sentence it ends.
var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// Chunker packs sentences into size-bounded chunks with sentence-level
// overlap between consecutive chunks.
type Chunker struct {
	// Size is the target maximum chunk length in characters.
	Size int
	// Overlap is the maximum number of characters carried over from the
	// tail of one chunk into the start of the next.
	Overlap int
}

// NewChunker returns a chunker with the given size and overlap. Zero or
// negative values fall back to 1000/200.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 200
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split breaks text into chunks no longer than Size characters, never
// splitting inside a sentence. A sentence longer than Size becomes its own
// chunk, kept intact. Consecutive chunks overlap by up to the last two
// sentences of the previous chunk, capped at Overlap characters.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.Size {
		return []string{text}
	}

	sentences := SplitSentences(text)

	var chunks []string
	var current []string
	currentLen := 0

	for _, s := range sentences {
		sLen := len(s)
		if currentLen > 0 && currentLen+1+sLen > c.Size {
			chunks = append(chunks, strings.Join(current, " "))
			current = c.overlapTail(current)
			currentLen = joinedLen(current)
		}
		current = append(current, s)
		if currentLen == 0 {
			currentLen = sLen
		} else {
			currentLen += 1 + sLen
		}
		// An oversized sentence is emitted on the next iteration as its
		// own chunk; nothing else fits beside it.
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// overlapTail returns up to the last two sentences of the finished chunk,
// dropping sentences from the front while they exceed the Overlap budget.
func (c *Chunker) overlapTail(sentences []string) []string {
	tail := sentences
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	for len(tail) > 0 && joinedLen(tail) > c.Overlap {
		tail = tail[1:]
	}
	out := make([]string, len(tail))
	copy(out, tail)
	return out
}

func joinedLen(sentences []string) int {
	n := 0
	for i, s := range sentences {
		if i > 0 {
			n++
		}
		n += len(s)
	}
	return n
}

// SplitSentences divides text on sentence terminators, keeping each
// terminator with its sentence. Text without terminators is returned whole.
func SplitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		// loc[0]..loc[1] covers the terminator plus trailing whitespace;
		// the sentence ends after the terminator characters.
		end := loc[1]
		for end > loc[0] && isSpaceByte(text[end-1]) {
			end--
		}
		s := strings.TrimSpace(text[last:end])
		if s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

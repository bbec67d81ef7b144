package ingest

import (
	"regexp"
	"strings"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// sentenceEnd matches a sentence terminator followed by whitespace. The
// negative heuristic for abbreviations is intentionally simple; transcript
// text rarely contains them.
var sentenceEnd = regexp.MustCompile(`([.!?]+)\s+`)

// Chunker splits text into overlapping chunks on sentence boundaries so no
// chunk cuts a sentence in half.
type Chunker struct {
	maxChars     int
	overlapChars int
}

func NewChunker(maxChars, overlapChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}
	if overlapChars < 0 || overlapChars >= maxChars {
		overlapChars = DefaultChunkOverlap
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars}
}

// Chunk splits text into chunks of at most maxChars characters. Consecutive
// chunks share trailing sentences up to overlapChars so context survives the
// boundary. A single sentence longer than maxChars becomes its own chunk.
func (c *Chunker) Chunk(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Seed the next chunk with trailing sentences within the overlap
		// budget.
		var carry []string
		carryLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			n := len(current[i])
			if carryLen+n > c.overlapChars {
				break
			}
			carry = append([]string{current[i]}, carry...)
			carryLen += n + 1
		}
		current = carry
		currentLen = carryLen
	}

	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence)+1 > c.maxChars {
			flush()
			// Overlap carry alone may already exceed the budget for a long
			// sentence; drop it rather than emit an oversized chunk.
			if currentLen+len(sentence)+1 > c.maxChars {
				current = nil
				currentLen = 0
			}
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences normalizes whitespace and splits on sentence terminators,
// keeping the terminator with its sentence.
func splitSentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringSubmatchIndex(normalized, -1) {
		// loc[3] is the end of the terminator group; the whitespace after it
		// is consumed.
		sentence := strings.TrimSpace(normalized[last:loc[3]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(normalized[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

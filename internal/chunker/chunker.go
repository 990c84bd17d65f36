// Package chunker splits long text into bounded segments on natural
// boundaries. It is a pure function library with no dependencies; chunks
// exist only for the duration of an embedding run.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

// Sizing heuristics for EstimateOptimalSize.
const (
	// BaseChunkSize is the default target chunk size in characters.
	BaseChunkSize = 8000

	// TechnicalChunkSize is used for long-sentence (technical) text.
	TechnicalChunkSize = 10000

	// ConversationalChunkSize is used for short-sentence text.
	ConversationalChunkSize = 6000

	// MaxChunkSize caps the estimate regardless of heuristics.
	MaxChunkSize = 12000

	// longParagraphThreshold marks a paragraph as long.
	longParagraphThreshold = 1000

	// longParagraphBonus is added when long paragraphs are present.
	longParagraphBonus = 2000
)

// boundaryRatio is the fraction of the window a natural boundary must
// recover for it to be accepted over a hard cut.
const boundaryRatio = 0.8

// Split divides text into chunks of at most maxChars characters, cutting
// on sentence terminators, newlines or spaces where one falls late enough
// in the window. Chunks are trimmed of surrounding whitespace; chunks that
// trim to nothing are dropped. Empty input yields nil. The result is
// deterministic for identical input.
func Split(text string, maxChars int) []string {
	detailed := SplitDetailed(text, maxChars)
	if detailed == nil {
		return nil
	}
	chunks := make([]string, len(detailed))
	for i, c := range detailed {
		chunks[i] = c.Content
	}
	return chunks
}

// SplitDetailed runs the same algorithm as Split but also reports each
// chunk's zero-based index and its raw (pre-trim) start and end offsets
// into the original text.
func SplitDetailed(text string, maxChars int) []domain.Chunk {
	if text == "" || maxChars <= 0 {
		return nil
	}

	var chunks []domain.Chunk
	index := 0

	for cursor := 0; cursor < len(text); {
		end := cursor + maxChars
		if end >= len(text) {
			end = len(text)
		} else if b := naturalBoundary(text, cursor, end, maxChars); b > 0 {
			end = b
		} else {
			end = runeSafeCut(text, cursor, end)
		}

		content := strings.TrimSpace(text[cursor:end])
		if content != "" {
			chunks = append(chunks, domain.Chunk{
				Content: content,
				Index:   index,
				Start:   cursor,
				End:     end,
			})
			index++
		}

		cursor = end
	}

	return chunks
}

// naturalBoundary searches backward from the naive cut for the last
// sentence terminator, newline or space. The boundary is only accepted
// when it recovers at least boundaryRatio of the window; otherwise 0 is
// returned and the caller hard-cuts at maxChars.
func naturalBoundary(text string, cursor, cut, maxChars int) int {
	minAccept := cursor + int(float64(maxChars)*boundaryRatio)

	for i := cut - 1; i > minAccept; i-- {
		switch text[i] {
		case '.':
			// Cut after the terminator so it stays with its sentence.
			return i + 1
		case '\n', ' ':
			return i + 1
		}
	}
	return 0
}

// runeSafeCut backs a hard cut off to the nearest rune start so a
// multi-byte rune is never split. When backing off would empty the
// chunk, the cut moves forward past the rune instead.
func runeSafeCut(text string, cursor, cut int) int {
	for cut > cursor && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == cursor {
		cut++
		for cut < len(text) && !utf8.RuneStart(text[cut]) {
			cut++
		}
	}
	return cut
}

// EstimateOptimalSize picks a chunk size for the given text. Technical
// text (long average sentences) gets larger chunks, conversational text
// smaller ones, and the presence of very long paragraphs nudges the size
// up. The result never exceeds MaxChunkSize.
func EstimateOptimalSize(text string) int {
	avg := averageSentenceLength(text)

	size := BaseChunkSize
	switch {
	case avg > 200:
		size = TechnicalChunkSize
	case avg > 0 && avg < 50:
		size = ConversationalChunkSize
	}

	if hasLongParagraph(text) {
		size += longParagraphBonus
	}

	if size > MaxChunkSize {
		size = MaxChunkSize
	}
	return size
}

// averageSentenceLength splits on sentence terminators and averages the
// non-empty sentences. Returns 0 when the text holds no sentences.
func averageSentenceLength(text string) float64 {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	total := 0
	count := 0
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		total += len(s)
		count++
	}

	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// hasLongParagraph reports whether any blank-line separated paragraph
// exceeds the long paragraph threshold.
func hasLongParagraph(text string) bool {
	for _, p := range strings.Split(text, "\n\n") {
		if len(strings.TrimSpace(p)) > longParagraphThreshold {
			return true
		}
	}
	return false
}

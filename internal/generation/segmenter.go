package generation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChunkSize is the chunk budget, in characters, used when none is given.
const DefaultMaxChunkSize = 1000

// allowedPunctuation lists the punctuation that survives normalization.
const allowedPunctuation = ".,!?;:()-"

// TextChunk is a bounded excerpt of normalized source text used as grounding
// context for one or more items.
type TextChunk struct {
	Index int
	Text  string
}

// Segment splits text into ordered, sentence-aligned chunks of at most
// maxChunkSize characters. It never returns an empty slice: text without any
// sentence terminator yields a single chunk holding its first maxChunkSize
// characters.
func Segment(text string, maxChunkSize int) []TextChunk {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	cleaned := NormalizeText(text)
	if !strings.ContainsAny(cleaned, ".!?") {
		return []TextChunk{{Index: 0, Text: truncateRunes(cleaned, maxChunkSize)}}
	}

	sentences := SplitSentences(cleaned)
	if len(sentences) == 0 {
		return []TextChunk{{Index: 0, Text: truncateRunes(cleaned, maxChunkSize)}}
	}

	var (
		chunks  []TextChunk
		current strings.Builder
		curLen  int
	)
	flush := func() {
		if curLen == 0 {
			return
		}
		chunks = append(chunks, TextChunk{Index: len(chunks), Text: current.String()})
		current.Reset()
		curLen = 0
	}

	for _, sentence := range sentences {
		for _, unit := range sentenceUnits(sentence, maxChunkSize) {
			unitLen := utf8.RuneCountInString(unit)
			needed := unitLen
			if curLen > 0 {
				needed++ // joining space
			}
			if curLen+needed > maxChunkSize {
				flush()
				needed = unitLen
			}
			if curLen > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(unit)
			curLen += needed
		}
	}
	flush()

	return chunks
}

// NormalizeText collapses whitespace and removes every character outside
// letters, digits, underscore, whitespace and the allowed punctuation.
func NormalizeText(text string) string {
	filtered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '_':
			return r
		case unicode.IsSpace(r):
			return ' '
		case strings.ContainsRune(allowedPunctuation, r):
			return r
		}
		return -1
	}, text)
	return strings.Join(strings.Fields(filtered), " ")
}

// SplitSentences splits on runs of '.', '!' and '?', trimming each sentence
// and dropping empty ones. A trailing fragment without a terminator counts as
// a sentence.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// sentenceUnits renders a sentence as one or more packable units, each at most
// limit characters. Only the last unit carries the terminating period.
func sentenceUnits(sentence string, limit int) []string {
	whole := sentence + "."
	if utf8.RuneCountInString(whole) <= limit {
		return []string{whole}
	}

	// Leave room for the period on the final piece.
	budget := limit - 1
	if budget < 1 {
		budget = 1
	}

	var (
		units   []string
		current []rune
	)
	for _, word := range strings.Fields(sentence) {
		w := []rune(word)
		for len(w) > budget {
			if len(current) > 0 {
				units = append(units, string(current))
				current = nil
			}
			units = append(units, string(w[:budget]))
			w = w[budget:]
		}
		extra := len(w)
		if len(current) > 0 {
			extra++
		}
		if len(current)+extra > budget {
			units = append(units, string(current))
			current = nil
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, w...)
	}
	if len(current) > 0 {
		units = append(units, string(current)+".")
	} else if len(units) > 0 {
		// The sentence ended on a hard cut; the period goes on its own.
		units = append(units, ".")
	}
	return units
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

package generation_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/generation"
)

func TestSegment_NoTerminator(t *testing.T) {
	text := strings.Repeat("word ", 300)

	chunks := generation.Segment(text, 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 100, utf8.RuneCountInString(chunks[0].Text))
	assert.True(t, strings.HasPrefix(chunks[0].Text, "word word"))
}

func TestSegment_SingleChunk(t *testing.T) {
	chunks := generation.Segment("Cells divide.  Mitosis has phases!\nWhy does it matter?", 1000)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Cells divide. Mitosis has phases. Why does it matter.", chunks[0].Text)
}

func TestSegment_PacksSentencesWithinBudget(t *testing.T) {
	var sentences []string
	for i := range 6 {
		sentences = append(sentences, fmt.Sprintf("Sentence number %d talks about the structure of plant cells and their walls", i))
	}
	text := strings.Join(sentences, ". ") + "."

	chunks := generation.Segment(text, 200)

	require.Greater(t, len(chunks), 1)
	var rebuilt []string
	for i, c := range chunks {
		assert.Equal(t, i, c.Index, "chunk indexes must be sequential")
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 200)
		assert.NotEmpty(t, c.Text)
		rebuilt = append(rebuilt, c.Text)
	}
	assert.Equal(t, text, strings.Join(rebuilt, " "), "packing must keep every sentence in order")
}

func TestSegment_SplitsOversizedSentence(t *testing.T) {
	sentence := strings.TrimSpace(strings.Repeat("photosynthesis converts light ", 20)) + "."

	chunks := generation.Segment(sentence, 50)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 50)
	}
	last := chunks[len(chunks)-1].Text
	assert.True(t, strings.HasSuffix(last, "."))
}

func TestSegment_HardCutsOverlongWord(t *testing.T) {
	chunks := generation.Segment(strings.Repeat("a", 25)+".", 10)

	require.NotEmpty(t, chunks)
	var total int
	for _, c := range chunks {
		n := utf8.RuneCountInString(c.Text)
		assert.LessOrEqual(t, n, 10)
		total += strings.Count(c.Text, "a")
	}
	assert.Equal(t, 25, total, "no characters may be lost")
}

func TestSegment_DefaultBudget(t *testing.T) {
	chunks := generation.Segment(strings.Repeat("x", 1500), 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, generation.DefaultMaxChunkSize, utf8.RuneCountInString(chunks[0].Text))
}

func TestSegment_NeverEmpty(t *testing.T) {
	for _, text := range []string{"", "@@@ ###", "..."} {
		chunks := generation.Segment(text, 100)
		assert.Len(t, chunks, 1, "input %q", text)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "a \t b\n\nc", "a b c"},
		{"drops symbols", "Price: $5 @ store #1 (approx)!", "Price: 5 store 1 (approx)!"},
		{"keeps unicode letters", "Café naïve résumé.", "Café naïve résumé."},
		{"keeps allowed punctuation", "a, b; c: d - e?", "a, b; c: d - e?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generation.NormalizeText(tt.in))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := generation.SplitSentences("First one. Second!! Third? trailing fragment")
	assert.Equal(t, []string{"First one", "Second", "Third", "trailing fragment"}, got)
}

package generation

import (
	"strings"
	"unicode"
)

// MaxRepeatWindow is the longest word-run checked for repetition.
const MaxRepeatWindow = 8

// TextFilter is one post-processing step applied to raw backend output.
type TextFilter interface {
	Apply(text string) string
}

// FilterFunc adapts a function to the TextFilter interface.
type FilterFunc func(string) string

// Apply calls f.
func (f FilterFunc) Apply(text string) string { return f(text) }

// Cleaner runs a fixed chain of filters over backend output.
type Cleaner struct {
	filters []TextFilter
}

// NewCleaner builds a Cleaner from the given filters, applied in order.
func NewCleaner(filters ...TextFilter) *Cleaner {
	return &Cleaner{filters: filters}
}

// DefaultCleaner strips prompt labels, collapses whitespace and removes
// immediately repeated word-runs.
func DefaultCleaner() *Cleaner {
	return NewCleaner(LabelFilter{}, WhitespaceFilter{}, RepeatFilter{MaxWindow: MaxRepeatWindow})
}

// Clean applies every filter and trims the result.
func (c *Cleaner) Clean(raw string) string {
	text := raw
	for _, f := range c.filters {
		text = f.Apply(text)
	}
	return strings.TrimSpace(text)
}

// Clean sanitizes raw backend output with the default filter chain.
func Clean(raw string) string {
	return DefaultCleaner().Clean(raw)
}

// echoLabels are role labels and prompt headers some backends repeat back.
// Longer headers come before their prefixes.
var echoLabels = []string{
	"question:",
	"answer:",
	"explanation:",
	"create a study question",
	"answer this question",
	"explain why this answer is correct",
	"explain why",
}

// LabelFilter strips leading role labels and echoed prompt headers,
// case-insensitively, until none remain.
type LabelFilter struct{}

// Apply implements TextFilter.
func (LabelFilter) Apply(text string) string {
	text = strings.TrimSpace(text)
	for {
		stripped := false
		for _, label := range echoLabels {
			if len(text) >= len(label) && strings.EqualFold(text[:len(label)], label) {
				text = trimLabelSeparator(text[len(label):])
				stripped = true
				break
			}
		}
		if !stripped {
			return text
		}
	}
}

// trimLabelSeparator drops the colon, dash and space left behind a label.
func trimLabelSeparator(text string) string {
	return strings.TrimLeftFunc(text, func(r rune) bool {
		return r == ':' || r == '-' || unicode.IsSpace(r)
	})
}

// WhitespaceFilter collapses newlines and whitespace runs to single spaces.
type WhitespaceFilter struct{}

// Apply implements TextFilter.
func (WhitespaceFilter) Apply(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// RepeatFilter drops any run of 2..MaxWindow words that exactly repeats the
// run immediately before it, so "a b c a b c a b c" becomes "a b c".
// Comparison is exact string equality per word.
type RepeatFilter struct {
	MaxWindow int
}

// Apply implements TextFilter.
func (f RepeatFilter) Apply(text string) string {
	maxWindow := f.MaxWindow
	if maxWindow <= 0 {
		maxWindow = MaxRepeatWindow
	}

	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w)
		out = collapseTail(out, maxWindow)
	}
	return strings.Join(out, " ")
}

// collapseTail removes trailing runs that duplicate the run right before them.
func collapseTail(words []string, maxWindow int) []string {
	for {
		collapsed := false
		for n := maxWindow; n >= 2; n-- {
			if len(words) < 2*n {
				continue
			}
			if equalWords(words[len(words)-n:], words[len(words)-2*n:len(words)-n]) {
				words = words[:len(words)-n]
				collapsed = true
				break
			}
		}
		if !collapsed {
			return words
		}
	}
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// WindowFilter cuts the text into fixed windows of Size words and drops any
// window whose phrase was already emitted. The trailing partial window is
// always kept. Windows never re-align after a removal.
type WindowFilter struct {
	Size int
}

// Apply implements TextFilter.
func (f WindowFilter) Apply(text string) string {
	size := f.Size
	if size <= 0 {
		size = MaxRepeatWindow
	}

	words := strings.Fields(text)
	seen := make(map[string]struct{})
	kept := make([]string, 0, len(words)/size+1)
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			kept = append(kept, strings.Join(words[start:], " "))
			break
		}
		phrase := strings.Join(words[start:end], " ")
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		kept = append(kept, phrase)
	}
	return strings.Join(kept, " ")
}

// stripEcho removes the prompt itself when the backend repeats it verbatim,
// as plain completion models often do.
func stripEcho(output, prompt string) string {
	if prompt == "" {
		return output
	}
	return strings.TrimSpace(strings.ReplaceAll(output, prompt, ""))
}

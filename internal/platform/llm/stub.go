package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phrazzld/flashgen/internal/generation"
)

// StubBackend answers prompts offline by quoting the grounding text back.
// Output is deterministic, which keeps local runs and demos reproducible.
type StubBackend struct{}

// NewStubBackend creates a StubBackend.
func NewStubBackend() *StubBackend { return &StubBackend{} }

func (*StubBackend) Name() string  { return ProviderStub }
func (*StubBackend) Model() string { return defaultModels[ProviderStub] }

// Ready implements generation.ReadinessChecker; the stub is always ready.
func (*StubBackend) Ready(ctx context.Context) error { return ctx.Err() }

var (
	stubContextMarkers = []string{"based on this text:", "Based on this information:", "Context:"}
	stubCountPattern   = regexp.MustCompile(`exactly (\d+)`)
	stubBatchText      = regexp.MustCompile(`(?s)"""\s*(.*?)\s*"""`)
	stubQuestionLine   = regexp.MustCompile(`(?:Answer this question:|Question:)\s*(.*?\?)`)
)

// Complete implements generation.Backend.
func (s *StubBackend) Complete(ctx context.Context, prompt string, _ generation.CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch {
	case strings.HasPrefix(prompt, "Create a study question"):
		return s.question(stubContext(prompt)), nil
	case strings.HasPrefix(prompt, "Answer this question"):
		return s.answer(stubContext(prompt)), nil
	case strings.HasPrefix(prompt, "Explain why"):
		return s.explanation(prompt), nil
	case strings.HasPrefix(strings.ToLower(prompt), "rate difficulty"):
		return "medium", nil
	case stubCountPattern.MatchString(prompt):
		return s.batch(prompt)
	}
	return "", fmt.Errorf("%w: stub backend does not recognize this prompt", generation.ErrBackendError)
}

func (*StubBackend) question(excerpt string) string {
	topic := firstWords(excerpt, 6)
	if topic == "" {
		topic = "the text"
	}
	return fmt.Sprintf("What does the text say about %s?", strings.TrimRight(topic, ".,;:!?"))
}

func (*StubBackend) answer(excerpt string) string {
	sentences := generation.SplitSentences(excerpt)
	if len(sentences) == 0 {
		return "The text does not say enough to answer."
	}
	return sentences[0] + "."
}

func (*StubBackend) explanation(prompt string) string {
	q := ""
	if m := stubQuestionLine.FindStringSubmatch(prompt); m != nil {
		q = m[1]
	}
	return fmt.Sprintf("The source passage covers this directly, so the answer follows from it. %s", q)
}

func (s *StubBackend) batch(prompt string) (string, error) {
	count, _ := strconv.Atoi(stubCountPattern.FindStringSubmatch(prompt)[1])
	text := prompt
	if m := stubBatchText.FindStringSubmatch(prompt); m != nil {
		text = m[1]
	}

	sentences := generation.SplitSentences(text)
	if len(sentences) == 0 {
		return "[]", nil
	}

	type card struct {
		Question    string `json:"question"`
		Answer      string `json:"answer"`
		Explanation string `json:"explanation"`
	}
	cards := make([]card, 0, count)
	for i := range count {
		sentence := sentences[i%len(sentences)]
		cards = append(cards, card{
			Question:    s.question(sentence),
			Answer:      sentence + ".",
			Explanation: "This statement appears in the source text.",
		})
	}

	out, err := json.Marshal(cards)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrBackendError, err)
	}
	return string(out), nil
}

// stubContext returns the prompt text after the last grounding marker.
func stubContext(prompt string) string {
	for _, marker := range stubContextMarkers {
		if i := strings.LastIndex(prompt, marker); i >= 0 {
			return strings.TrimSpace(prompt[i+len(marker):])
		}
	}
	return prompt
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

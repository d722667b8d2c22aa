package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/generation"
)

const stubText = "Photosynthesis converts light energy into chemical energy. " +
	"Chlorophyll absorbs mostly blue and red light. " +
	"The process releases oxygen as a byproduct."

func TestStubBackend_Stages(t *testing.T) {
	ctx := context.Background()
	stub := NewStubBackend()
	prompts := generation.DefaultPrompts()

	qPrompt, err := prompts.Question([]string{"biology"}, stubText)
	require.NoError(t, err)
	q, err := stub.Complete(ctx, qPrompt, generation.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "What does the text say about Photosynthesis converts light energy into chemical?", q)

	aPrompt, err := prompts.Answer(q, stubText)
	require.NoError(t, err)
	a, err := stub.Complete(ctx, aPrompt, generation.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis converts light energy into chemical energy.", a)

	ePrompt, err := prompts.Explanation(q, a, stubText)
	require.NoError(t, err)
	e, err := stub.Complete(ctx, ePrompt, generation.CompletionOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(e, "The source passage covers this directly"))

	dPrompt, err := prompts.Difficulty(q, a)
	require.NoError(t, err)
	d, err := stub.Complete(ctx, dPrompt, generation.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "medium", d)
}

func TestStubBackend_BatchIsParseable(t *testing.T) {
	prompt, err := generation.DefaultPrompts().Batch([]string{"biology"}, stubText, 4)
	require.NoError(t, err)

	raw, err := NewStubBackend().Complete(context.Background(), prompt, generation.CompletionOptions{})
	require.NoError(t, err)

	cards, err := generation.ParseBatch(raw)
	require.NoError(t, err)
	require.Len(t, cards, 4)
	assert.Equal(t, "The process releases oxygen as a byproduct.", cards[2].Answer)
	assert.Equal(t, cards[0].Question, cards[3].Question, "sentences repeat round-robin")
}

func TestStubBackend_DrivesOrchestrator(t *testing.T) {
	o, err := generation.NewOrchestrator(NewStubBackend(), nil, generation.Config{})
	require.NoError(t, err)

	outcome, err := o.Generate(context.Background(), domain.GenerationRequest{
		Text:     stubText,
		Subjects: []string{"biology"},
		Count:    3,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Succeeded)
	for _, card := range outcome.Records {
		assert.True(t, strings.HasSuffix(card.Question, "?"))
		assert.NotEqual(t, generation.ExplanationPlaceholder, card.Explanation)
		assert.Equal(t, []string{"biology"}, card.Tags)
	}
}

func TestStubBackend_UnknownPrompt(t *testing.T) {
	_, err := NewStubBackend().Complete(context.Background(), "tell me a joke", generation.CompletionOptions{})
	assert.ErrorIs(t, err, generation.ErrBackendError)
}

func TestStubBackend_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := NewStubBackend()
	assert.ErrorIs(t, stub.Ready(ctx), context.Canceled)
	_, err := stub.Complete(ctx, "Create a study question based on this text: x", generation.CompletionOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

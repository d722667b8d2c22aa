package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

// BatchContextChars caps the source text sent in a batch prompt.
const BatchContextChars = 4000

// Backend settings for the single batch call. MaxNewTokens grows with the
// requested count but never drops below batchMinTokens.
const (
	batchMinTokens     = 1500
	batchTokensPerCard = 300
	batchTemperature   = 0.6
)

// batchItemSchema describes one card object in a batch response.
const batchItemSchema = `{
  "type": "object",
  "required": ["question", "answer", "explanation"],
  "properties": {
    "question":    {"type": "string", "minLength": 1},
    "answer":      {"type": "string", "minLength": 1},
    "explanation": {"type": "string"}
  }
}`

var (
	compileBatchSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		var doc any
		if err := json.Unmarshal([]byte(batchItemSchema), &doc); err != nil {
			return nil, fmt.Errorf("parse batch schema: %w", err)
		}
		c := jsonschema.NewCompiler()
		const url = "schema://flashgen/batch-card.json"
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add batch schema: %w", err)
		}
		return c.Compile(url)
	})
)

// BatchCard is one decoded entry of a batch response.
type BatchCard struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// generateBatch asks for all cards in one call and keeps every entry that
// survives validation. Difficulty is not rated in this mode.
func (o *Orchestrator) generateBatch(ctx context.Context, text string, subjects []string, count int) (*domain.GenerationOutcome, error) {
	log := logger.FromContextOrDefault(ctx, o.logger).With(slog.String("mode", string(domain.ModeBatch)))

	fail := func(err error) (*domain.GenerationOutcome, error) {
		log.ErrorContext(ctx, "batch generation failed", slog.String("error", err.Error()))
		return nil, &AllGenerationsFailedError{
			Attempted: count,
			Cause:     &GenerationFailedError{Item: 0, Stage: StageBatch, Err: err},
		}
	}

	prompt, err := o.prompts.Batch(subjects, truncateRunes(NormalizeText(text), BatchContextChars), count)
	if err != nil {
		return fail(err)
	}

	opts := CompletionOptions{
		MaxNewTokens: max(batchMinTokens, batchTokensPerCard*count),
		Temperature:  batchTemperature,
	}
	raw, err := o.backend.Complete(ctx, prompt, opts)
	if err != nil {
		return fail(err)
	}

	cards, err := ParseBatch(raw)
	if err != nil {
		return fail(err)
	}

	records := make([]*domain.Flashcard, 0, min(len(cards), count))
	for i, c := range cards {
		if len(records) == count {
			break
		}
		card, err := o.batchRecord(c, subjects)
		if err != nil {
			log.WarnContext(ctx, "dropping batch entry",
				slog.Int("item", i),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, card)
	}

	if len(records) == 0 {
		return fail(fmt.Errorf("%w: no usable cards in batch response", ErrMalformedResponse))
	}

	outcome := domain.NewGenerationOutcome(count, records)
	log.InfoContext(ctx, "batch generation completed",
		slog.Int("requested", outcome.Requested),
		slog.Int("succeeded", outcome.Succeeded),
		slog.Int("failed", outcome.Failed))
	return outcome, nil
}

func (o *Orchestrator) batchRecord(c BatchCard, subjects []string) (*domain.Flashcard, error) {
	question := o.cleaner.Clean(c.Question)
	if utf8.RuneCountInString(question) < minQuestionChars {
		return nil, fmt.Errorf("%w: question too short (%q)", ErrMalformedResponse, question)
	}
	answer := o.cleaner.Clean(c.Answer)
	if utf8.RuneCountInString(answer) < minAnswerChars {
		return nil, fmt.Errorf("%w: answer too short (%q)", ErrMalformedResponse, answer)
	}
	explanation := o.cleaner.Clean(c.Explanation)
	if utf8.RuneCountInString(explanation) < minExplanationChars {
		explanation = ExplanationPlaceholder
	}

	return domain.NewFlashcard(o.ids.Next(), ensureQuestionMark(question), answer, explanation,
		subjects, domain.DifficultyNeutral, o.now())
}

// ParseBatch extracts the JSON array from a batch response, tolerating prose
// around it, and returns the entries that match the card schema. Entries of
// the wrong shape are skipped; a response without a usable array is an
// ErrMalformedResponse.
func ParseBatch(raw string) ([]BatchCard, error) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in batch response", ErrMalformedResponse)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &entries); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON array: %v", ErrMalformedResponse, err)
	}

	schema, err := compileBatchSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cards := make([]BatchCard, 0, len(entries))
	for _, entry := range entries {
		var doc any
		if err := json.Unmarshal(entry, &doc); err != nil {
			continue
		}
		if err := schema.Validate(doc); err != nil {
			continue
		}
		var c BatchCard
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		cards = append(cards, c)
	}
	return cards, nil
}

package generation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashgen/internal/domain"
)

// Word-count thresholds for the fallback difficulty rating.
const (
	easyWordLimit   = 15
	mediumWordLimit = 30
)

// difficultyOptions are the backend settings for a rating call.
var difficultyOptions = CompletionOptions{MaxNewTokens: 10}

// DifficultyClassifier rates a question/answer pair as easy, medium or hard.
// With a nil backend it always uses the word-count heuristic.
type DifficultyClassifier struct {
	backend Backend
	prompts *Prompts
	cleaner *Cleaner
	logger  *slog.Logger
}

// NewDifficultyClassifier creates a classifier. Pass a nil backend to disable
// the model-rated path.
func NewDifficultyClassifier(backend Backend, prompts *Prompts, logger *slog.Logger) *DifficultyClassifier {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DifficultyClassifier{
		backend: backend,
		prompts: prompts,
		cleaner: DefaultCleaner(),
		logger:  logger,
	}
}

// Classify never fails: any backend problem falls back to word counting.
func (c *DifficultyClassifier) Classify(ctx context.Context, question, answer string) domain.Difficulty {
	if c.backend != nil {
		if d, ok := c.askBackend(ctx, question, answer); ok {
			return d
		}
	}
	return ClassifyByLength(question, answer)
}

func (c *DifficultyClassifier) askBackend(ctx context.Context, question, answer string) (domain.Difficulty, bool) {
	prompt, err := c.prompts.Difficulty(question, answer)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to build difficulty prompt", slog.String("error", err.Error()))
		return "", false
	}

	raw, err := c.backend.Complete(ctx, prompt, difficultyOptions)
	if err != nil {
		c.logger.DebugContext(ctx, "difficulty rating unavailable, using word count",
			slog.String("error", err.Error()))
		return "", false
	}

	label := strings.ToLower(c.cleaner.Clean(stripEcho(raw, prompt)))
	label = strings.Trim(label, " .,!?;:\"'")
	switch d := domain.Difficulty(label); d {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		return d, true
	}

	c.logger.DebugContext(ctx, "unrecognized difficulty label, using word count",
		slog.String("label", label))
	return "", false
}

// ClassifyByLength rates a card by the combined word count of question and
// answer: under 15 words is easy, under 30 medium, otherwise hard.
func ClassifyByLength(question, answer string) domain.Difficulty {
	words := len(strings.Fields(question)) + len(strings.Fields(answer))
	switch {
	case words < easyWordLimit:
		return domain.DifficultyEasy
	case words < mediumWordLimit:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

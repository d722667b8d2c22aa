package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

// ExplanationPlaceholder replaces an explanation the backend could not produce.
const ExplanationPlaceholder = "Additional context and explanation could not be generated by the model."

// Minimum lengths, in characters, for accepted stage output.
const (
	minQuestionChars    = 10
	minAnswerChars      = 10
	minExplanationChars = 15
)

// StageAssemble marks the rare failure to build a valid record from
// otherwise accepted stage output.
const StageAssemble Stage = "assemble"

// Backend settings per stage.
var (
	questionOptions    = CompletionOptions{MaxNewTokens: 60, Temperature: 0.7}
	answerOptions      = CompletionOptions{MaxNewTokens: 120, Temperature: 0.5}
	explanationOptions = CompletionOptions{MaxNewTokens: 100, Temperature: 0.4}
)

// Config tunes an Orchestrator. The zero value is usable.
type Config struct {
	// MaxChunkSize is the segmenter budget in characters. Defaults to 1000.
	MaxChunkSize int

	// Concurrency is how many items may be generated at once. Values below 2
	// generate items one after another.
	Concurrency int

	// DisableModelDifficulty skips the backend rating call and classifies
	// difficulty by word count alone.
	DisableModelDifficulty bool

	// Cleaner sanitizes backend output. Defaults to DefaultCleaner.
	Cleaner *Cleaner

	// Prompts renders stage prompts. Defaults to DefaultPrompts.
	Prompts *Prompts

	// Now is the clock for record timestamps. Defaults to time.Now.
	Now func() time.Time

	// IDs assigns record IDs. Defaults to a fresh IDSource on Now.
	IDs *IDSource
}

// Orchestrator turns a GenerationRequest into flashcards, isolating every
// item's failure from the rest of the batch.
type Orchestrator struct {
	backend    Backend
	classifier *DifficultyClassifier
	cleaner    *Cleaner
	prompts    *Prompts
	ids        *IDSource
	now        func() time.Time
	chunkSize  int
	workers    int
	logger     *slog.Logger
}

// NewOrchestrator creates an Orchestrator around backend.
func NewOrchestrator(backend Backend, logger *slog.Logger, cfg Config) (*Orchestrator, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Cleaner == nil {
		cfg.Cleaner = DefaultCleaner()
	}
	if cfg.Prompts == nil {
		cfg.Prompts = DefaultPrompts()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IDs == nil {
		cfg.IDs = NewIDSource(cfg.Now)
	}

	logger = logger.With(slog.String("component", "orchestrator"))

	rater := backend
	if cfg.DisableModelDifficulty {
		rater = nil
	}

	return &Orchestrator{
		backend:    backend,
		classifier: NewDifficultyClassifier(rater, cfg.Prompts, logger),
		cleaner:    cfg.Cleaner,
		prompts:    cfg.Prompts,
		ids:        cfg.IDs,
		now:        cfg.Now,
		chunkSize:  cfg.MaxChunkSize,
		workers:    cfg.Concurrency,
		logger:     logger,
	}, nil
}

// Ready reports whether the backend can take requests. Backends that cannot
// report readiness are assumed ready.
func (o *Orchestrator) Ready(ctx context.Context) error {
	rc, ok := o.backend.(ReadinessChecker)
	if !ok {
		return nil
	}
	if err := rc.Ready(ctx); err != nil {
		if errors.Is(err, ErrBackendUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Generate produces up to req.Count flashcards. It returns an outcome whenever
// at least one item succeeded; per-item failures only show up in the counts.
// It fails with ErrBackendUnavailable before any item is attempted if the
// backend is not ready, and with AllGenerationsFailedError if nothing succeeded.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	log := logger.FromContextOrDefault(ctx, o.logger)

	if err := o.Ready(ctx); err != nil {
		log.ErrorContext(ctx, "backend not ready, aborting generation", slog.String("error", err.Error()))
		return nil, err
	}

	subjects := domain.NormalizeSubjects(req.Subjects)
	if req.Mode == domain.ModeBatch {
		return o.generateBatch(ctx, req.Text, subjects, req.Count)
	}

	chunks := Segment(req.Text, o.chunkSize)
	log.InfoContext(ctx, "starting flashcard generation",
		slog.Int("requested", req.Count),
		slog.Int("chunks", len(chunks)),
		slog.Int("text_length", utf8.RuneCountInString(req.Text)),
		slog.Any("subjects", subjects))

	results := o.runItems(ctx, req.Count, func(ctx context.Context, i int) itemResult {
		return o.generateItem(ctx, i, chunks[i%len(chunks)], subjects)
	})

	return o.tally(ctx, req.Count, results)
}

// itemResult is what a single item hands back: a record or the reason it has none.
type itemResult struct {
	card *domain.Flashcard
	err  error
}

// runItems evaluates n items and returns their results in item order. Items
// never report errors to the group, so one failure cannot cancel another.
func (o *Orchestrator) runItems(ctx context.Context, n int, item func(context.Context, int) itemResult) []itemResult {
	results := make([]itemResult, n)

	if o.workers <= 1 {
		for i := range n {
			results[i] = item(ctx, i)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range n {
		g.Go(func() error {
			results[i] = item(ctx, i)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// tally folds item results into an outcome once every item has resolved.
func (o *Orchestrator) tally(ctx context.Context, requested int, results []itemResult) (*domain.GenerationOutcome, error) {
	log := logger.FromContextOrDefault(ctx, o.logger)

	records := make([]*domain.Flashcard, 0, len(results))
	var lastErr error
	for _, r := range results {
		if r.err != nil {
			lastErr = r.err
			continue
		}
		records = append(records, r.card)
	}

	if len(records) == 0 {
		log.ErrorContext(ctx, "no flashcards could be generated",
			slog.Int("attempted", requested))
		return nil, &AllGenerationsFailedError{Attempted: requested, Cause: lastErr}
	}

	outcome := domain.NewGenerationOutcome(requested, records)
	log.InfoContext(ctx, "flashcard generation completed",
		slog.Int("requested", outcome.Requested),
		slog.Int("succeeded", outcome.Succeeded),
		slog.Int("failed", outcome.Failed))
	return outcome, nil
}

// generateItem runs the question, answer and explanation stages for item i.
func (o *Orchestrator) generateItem(ctx context.Context, i int, chunk TextChunk, subjects []string) itemResult {
	log := logger.FromContextOrDefault(ctx, o.logger).With(
		slog.Int("item", i),
		slog.Int("chunk", chunk.Index))

	fail := func(stage Stage, err error) itemResult {
		failure := &GenerationFailedError{Item: i, Stage: stage, Err: err}
		log.WarnContext(ctx, "flashcard item failed",
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()))
		return itemResult{err: failure}
	}

	question, err := o.question(ctx, chunk, subjects)
	if err != nil {
		return fail(StageQuestion, err)
	}

	answer, err := o.answer(ctx, chunk, question)
	if err != nil {
		return fail(StageAnswer, err)
	}

	explanation := o.explanation(ctx, chunk, question, answer)
	difficulty := o.classifier.Classify(ctx, question, answer)

	card, err := domain.NewFlashcard(o.ids.Next(), question, answer, explanation, subjects, difficulty, o.now())
	if err != nil {
		return fail(StageAssemble, err)
	}

	log.DebugContext(ctx, "flashcard item generated",
		slog.Int64("card_id", card.ID),
		slog.String("difficulty", string(card.Difficulty)))
	return itemResult{card: card}
}

func (o *Orchestrator) question(ctx context.Context, chunk TextChunk, subjects []string) (string, error) {
	prompt, err := o.prompts.Question(subjects, chunk.Text)
	if err != nil {
		return "", err
	}
	q, err := o.complete(ctx, prompt, questionOptions)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(q) < minQuestionChars {
		return "", fmt.Errorf("%w: question too short (%q)", ErrMalformedResponse, q)
	}
	return ensureQuestionMark(q), nil
}

func (o *Orchestrator) answer(ctx context.Context, chunk TextChunk, question string) (string, error) {
	prompt, err := o.prompts.Answer(question, chunk.Text)
	if err != nil {
		return "", err
	}
	a, err := o.complete(ctx, prompt, answerOptions)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(a) < minAnswerChars {
		return "", fmt.Errorf("%w: answer too short (%q)", ErrMalformedResponse, a)
	}
	return a, nil
}

// explanation never fails; unusable output becomes ExplanationPlaceholder.
func (o *Orchestrator) explanation(ctx context.Context, chunk TextChunk, question, answer string) string {
	prompt, err := o.prompts.Explanation(question, answer, chunk.Text)
	if err != nil {
		return ExplanationPlaceholder
	}
	e, err := o.complete(ctx, prompt, explanationOptions)
	if err != nil || utf8.RuneCountInString(e) < minExplanationChars {
		return ExplanationPlaceholder
	}
	return e
}

// complete calls the backend and returns cleaned output with any prompt
// echo removed. Empty output is a malformed response.
func (o *Orchestrator) complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	raw, err := o.backend.Complete(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	text := o.cleaner.Clean(stripEcho(raw, prompt))
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}
	return text, nil
}

func ensureQuestionMark(q string) string {
	if q[len(q)-1] == '?' {
		return q
	}
	return q + "?"
}

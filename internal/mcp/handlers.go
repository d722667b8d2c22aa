package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/redact"
)

// Handlers implements the flashcard tools.
type Handlers struct {
	service Service
	logger  *slog.Logger
}

// generateResult is the structured payload of generate_flashcards.
type generateResult struct {
	Flashcards []*domain.Flashcard `json:"flashcards"`
	Requested  int                 `json:"requested"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
	Saved      bool                `json:"saved"`
}

// GenerateFlashcards handles the generate_flashcards tool.
func (h *Handlers) GenerateFlashcards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	req := domain.GenerationRequest{
		Text:     text,
		Subjects: request.GetStringSlice("subjects", nil),
		Count:    request.GetInt("count", 0),
		Mode:     domain.GenerationMode(request.GetString("mode", "")),
	}
	save := request.GetBool("save", false)

	generate := h.service.Preview
	if save {
		generate = h.service.GenerateAndSave
	}

	outcome, err := generate(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "flashcard generation failed", slog.String("error", redact.Error(err)))
		return mcp.NewToolResultError("flashcard generation failed: " + redact.Error(err)), nil
	}

	h.logger.InfoContext(ctx, "flashcards generated",
		slog.Int("succeeded", outcome.Succeeded),
		slog.Int("failed", outcome.Failed),
		slog.Bool("saved", save))

	result := generateResult{
		Flashcards: outcome.Records,
		Requested:  outcome.Requested,
		Succeeded:  outcome.Succeeded,
		Failed:     outcome.Failed,
		Saved:      save,
	}
	return mcp.NewToolResultStructured(result, summarize(result)), nil
}

// ListFlashcards handles the list_flashcards tool.
func (h *Handlers) ListFlashcards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list flashcards", slog.String("error", redact.Error(err)))
		return mcp.NewToolResultError("failed to list flashcards"), nil
	}

	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(cards) {
		cards = cards[:limit]
	}

	res, err := mcp.NewToolResultJSON(map[string]any{
		"flashcards": cards,
		"count":      len(cards),
	})
	if err != nil {
		return nil, fmt.Errorf("encode flashcards: %w", err)
	}
	return res, nil
}

func summarize(r generateResult) string {
	s := fmt.Sprintf("Generated %d of %d flashcards", r.Succeeded, r.Requested)
	if r.Saved {
		s += " and saved them"
	}
	for i, c := range r.Flashcards {
		s += fmt.Sprintf("\n\n%d. Q: %s\n   A: %s\n   Difficulty: %s", i+1, c.Question, c.Answer, c.Difficulty)
	}
	return s
}

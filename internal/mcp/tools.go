// Package mcp exposes flashcard generation to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/service"
)

// Tool names.
const (
	ToolGenerate = "generate_flashcards"
	ToolList     = "list_flashcards"
)

// Service is the part of service.FlashcardService the tools use.
type Service interface {
	GenerateAndSave(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error)
	Preview(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOutcome, error)
	List(ctx context.Context) ([]*domain.Flashcard, error)
}

// NewServer creates an MCP server with every flashcard tool registered.
func NewServer(svc Service, version string, logger *slog.Logger) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer("flashgen", version, mcpserver.WithToolCapabilities(false))
	RegisterTools(server, svc, logger)
	return server
}

// RegisterTools registers the flashcard tools with server.
func RegisterTools(server *mcpserver.MCPServer, svc Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	handlers := &Handlers{
		service: svc,
		logger:  logger.With(slog.String("component", "mcp")),
	}

	server.AddTool(mcp.NewTool(ToolGenerate,
		mcp.WithDescription("Generate study flashcards (question, answer, explanation, difficulty) from a passage of text."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Source text, at least 50 characters"),
		),
		mcp.WithArray("subjects",
			mcp.Description("Subject tags applied to every card"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("count",
			mcp.Description("Number of flashcards to generate (default 5)"),
			mcp.Min(1),
			mcp.Max(service.MaxCount),
		),
		mcp.WithString("mode",
			mcp.Description("staged generates each card in separate steps; batch asks for all cards at once"),
			mcp.Enum(string(domain.ModeStaged), string(domain.ModeBatch)),
		),
		mcp.WithBoolean("save",
			mcp.Description("Store the generated cards (default false)"),
		),
	), handlers.GenerateFlashcards)

	server.AddTool(mcp.NewTool(ToolList,
		mcp.WithDescription("List stored flashcards, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of cards to return (default all)"),
			mcp.Min(1),
		),
	), handlers.ListFlashcards)

	return handlers
}

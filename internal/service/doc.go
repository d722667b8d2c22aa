// Package service holds the application's use cases. FlashcardService sits
// between the transport layers (HTTP, CLI, MCP) and the generation core: it
// applies request defaults and limits, runs the orchestrator and persists
// what it produced.
package service

// Package llm adapts hosted text-completion APIs to the generation.Backend
// interface.
//
// Providers:
//   - gemini: Google Gemini via google.golang.org/genai
//   - openai: OpenAI chat completions via github.com/sashabaranov/go-openai
//   - huggingface: the Hugging Face inference router, which speaks the OpenAI protocol
//   - anthropic: Anthropic Messages via github.com/anthropics/anthropic-sdk-go
//   - stub: a deterministic offline backend for local development
//
// Providers built without an API key still construct, but report
// generation.ErrBackendUnavailable from Ready and Complete so that callers fail
// fast before attempting any item. Decorators add per-call timeouts, optional
// retries and structured logging.
package llm

// Package generationtest provides a scripted text-completion backend for
// exercising the generation pipeline without a model.
package generationtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/phrazzld/flashgen/internal/generation"
)

// Kind identifies which prompt a call carries.
type Kind string

// Prompt kinds recognized from the built-in templates.
const (
	KindQuestion    Kind = "question"
	KindAnswer      Kind = "answer"
	KindExplanation Kind = "explanation"
	KindDifficulty  Kind = "difficulty"
	KindBatch       Kind = "batch"
	KindUnknown     Kind = "unknown"
)

var kindPrefixes = []struct {
	prefix string
	kind   Kind
}{
	{"Create a study question", KindQuestion},
	{"Answer this question", KindAnswer},
	{"Explain why", KindExplanation},
	{"rate difficulty", KindDifficulty},
	{"You are a helpful study assistant", KindBatch},
}

// KindOf classifies a prompt rendered from the built-in templates.
func KindOf(prompt string) Kind {
	for _, p := range kindPrefixes {
		if strings.HasPrefix(prompt, p.prefix) {
			return p.kind
		}
	}
	return KindUnknown
}

// Call records one Complete invocation.
type Call struct {
	Prompt string
	Opts   generation.CompletionOptions
	Kind   Kind
	// Seq is the 0-based index of this call among calls of the same Kind.
	Seq int
}

// HandlerFunc answers a call.
type HandlerFunc func(call Call) (string, error)

// Backend is a concurrency-safe scripted generation.Backend that records
// every call. It also implements generation.ReadinessChecker.
type Backend struct {
	mu       sync.Mutex
	handler  HandlerFunc
	readyErr error
	calls    []Call
	perKind  map[Kind]int
}

// New creates a Backend answering with handler.
func New(handler HandlerFunc) *Backend {
	return &Backend{handler: handler, perKind: make(map[Kind]int)}
}

// Fixed returns a Backend that answers every call of a kind with the same
// text. Kinds without an entry fail with generation.ErrBackendError.
func Fixed(responses map[Kind]string) *Backend {
	return New(func(call Call) (string, error) {
		if r, ok := responses[call.Kind]; ok {
			return r, nil
		}
		return "", fmt.Errorf("%w: no scripted response for %s", generation.ErrBackendError, call.Kind)
	})
}

// Default returns a Backend producing valid output for every staged prompt.
func Default() *Backend {
	return Fixed(map[Kind]string{
		KindQuestion:    "What is the main idea of the passage",
		KindAnswer:      "The passage explains the core concept in detail.",
		KindExplanation: "The text states this directly in its opening sentences.",
		KindDifficulty:  "hard",
	})
}

// SetReadyErr makes Ready return err.
func (b *Backend) SetReadyErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readyErr = err
}

// Ready implements generation.ReadinessChecker.
func (b *Backend) Ready(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readyErr
}

// Complete implements generation.Backend.
func (b *Backend) Complete(ctx context.Context, prompt string, opts generation.CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	kind := KindOf(prompt)

	b.mu.Lock()
	call := Call{Prompt: prompt, Opts: opts, Kind: kind, Seq: b.perKind[kind]}
	b.perKind[kind]++
	b.calls = append(b.calls, call)
	handler := b.handler
	b.mu.Unlock()

	return handler(call)
}

// Calls returns a copy of every recorded call.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount returns how many calls of kind were made. An empty kind counts
// every call.
func (b *Backend) CallCount(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if kind == "" {
		return len(b.calls)
	}
	return b.perKind[kind]
}

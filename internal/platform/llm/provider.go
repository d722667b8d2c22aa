package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/flashgen/internal/generation"
)

// Provider is a text-completion backend that can also report readiness and
// describe itself for health checks.
type Provider interface {
	generation.Backend
	generation.ReadinessChecker

	// Name is the configured provider name, e.g. "gemini".
	Name() string

	// Model is the model ID requests are sent to.
	Model() string
}

// Provider names accepted by New.
const (
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
	ProviderAnthropic   = "anthropic"
	ProviderStub        = "stub"
)

// Default models per provider, used when none is configured. Stage token
// budgets are small, so defaults are chat models without hidden reasoning.
var defaultModels = map[string]string{
	ProviderGemini:      "gemini-2.0-flash",
	ProviderOpenAI:      "gpt-4o-mini",
	ProviderHuggingFace: "meta-llama/Llama-3.1-8B-Instruct",
	ProviderAnthropic:   "claude-haiku-4-5-20251001",
	ProviderStub:        "stub-v1",
}

// modelAliases maps friendly names to provider model IDs.
var modelAliases = map[string]string{
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.0-pro",
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// resolveModel picks the configured model, an alias target, or the provider default.
func resolveModel(provider, name string) string {
	if name == "" {
		return defaultModels[provider]
	}
	if id, ok := modelAliases[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}

// keyed holds what every hosted provider needs to answer Ready.
type keyed struct {
	name   string
	model  string
	hasKey bool
}

func (k keyed) Name() string  { return k.name }
func (k keyed) Model() string { return k.model }

// Ready reports ErrBackendUnavailable until an API key is configured.
func (k keyed) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !k.hasKey {
		return fmt.Errorf("%w: %s API key is not configured", generation.ErrBackendUnavailable, k.name)
	}
	return nil
}

func apiKeyPresent(key string) bool {
	return strings.TrimSpace(key) != ""
}

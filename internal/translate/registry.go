package translate

import (
	"fmt"
	"sync"
)

// Default model per provider. Overridable at registry construction so
// config can pin different models without touching the adapters.
var defaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5",
	"openai":    "gpt-4o-mini",
	"google":    "gemini-2.0-flash",
}

var displayNames = map[string]string{
	"anthropic": "Claude (Anthropic)",
	"openai":    "GPT (OpenAI)",
	"google":    "Gemini (Google)",
}

// ProviderDisplayName returns the human-readable name for a provider,
// echoing the raw name for unknown providers.
func ProviderDisplayName(name string) string {
	if dn, ok := displayNames[name]; ok {
		return dn
	}
	return name
}

// ProviderModel returns the model a provider runs, echoing the raw name
// for unknown providers.
func ProviderModel(name string) string {
	if m, ok := defaultModels[name]; ok {
		return m
	}
	return name
}

// Registry lazily constructs and memoizes one adapter instance per
// provider name. Instances are read-only after construction and safe to
// share for the registry's lifetime.
type Registry struct {
	mu        sync.Mutex
	models    map[string]string
	providers map[string]Provider
}

// NewRegistry creates a registry using the default model table.
func NewRegistry() *Registry {
	return NewRegistryWithModels(nil)
}

// NewRegistryWithModels creates a registry with per-provider model
// overrides; unset providers keep their defaults.
func NewRegistryWithModels(overrides map[string]string) *Registry {
	models := make(map[string]string, len(defaultModels))
	for name, model := range defaultModels {
		models[name] = model
	}
	for name, model := range overrides {
		if model != "" {
			models[name] = model
		}
	}
	return &Registry{
		models:    models,
		providers: make(map[string]Provider),
	}
}

// Get returns the cached adapter for name, constructing it on first
// access. Unknown names are a ConfigError.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[name]; ok {
		return p, nil
	}

	var p Provider
	switch name {
	case "anthropic":
		p = NewAnthropicProvider(r.models[name])
	case "openai":
		p = NewOpenAIProvider(r.models[name])
	case "google":
		p = NewGeminiProvider(r.models[name])
	default:
		return nil, NewConfigError(fmt.Sprintf("Unknown provider: %s", name))
	}

	r.providers[name] = p
	return p, nil
}

package factory

import (
	"fmt"
	"sync"
	"time"

	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/llm/anthropic"
	"github.com/jayabdulraman/social-agent-backend/internal/llm/openai"
	"github.com/jayabdulraman/social-agent-backend/internal/llm/types"
)

// Default base URLs per provider. Groq and Google expose
// OpenAI-compatible endpoints and reuse the openai implementation.
const (
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultGoogleBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultGroqBaseURL      = "https://api.groq.com/openai/v1"
)

// Factory creates and caches provider instances from configuration.
type Factory struct {
	cfg *conf.LLMConfig

	mu        sync.Mutex
	providers map[string]types.Provider
}

// New creates a Factory.
func New(cfg *conf.LLMConfig) *Factory {
	return &Factory{
		cfg:       cfg,
		providers: make(map[string]types.Provider),
	}
}

// CreateProvider returns the provider for the given name, creating it
// on first use. Instances are cached per provider name.
func (f *Factory) CreateProvider(provider string) (types.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.providers[provider]; ok {
		return p, nil
	}

	p, err := f.build(provider)
	if err != nil {
		return nil, err
	}

	f.providers[provider] = p
	return p, nil
}

func (f *Factory) build(provider string) (types.Provider, error) {
	switch provider {
	case "openai":
		return openai.NewNamed("openai", f.providerConfig(f.cfg.OpenAI, defaultOpenAIBaseURL))
	case "anthropic":
		return anthropic.New(f.providerConfig(f.cfg.Anthropic, defaultAnthropicBaseURL))
	case "google":
		return openai.NewNamed("google", f.providerConfig(f.cfg.Google, defaultGoogleBaseURL))
	case "groq":
		return openai.NewNamed("groq", f.providerConfig(f.cfg.Groq, defaultGroqBaseURL))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func (f *Factory) providerConfig(keys conf.ProviderKeyConfig, defaultBaseURL string) *types.Config {
	baseURL := keys.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &types.Config{
		APIKey:  keys.APIKey,
		BaseURL: baseURL,
		Timeout: 60 * time.Second,
	}
}

// Close closes all cached providers.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, p := range f.providers {
		_ = p.Close()
		delete(f.providers, name)
	}
	return nil
}

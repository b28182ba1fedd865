package provider

import (
	"fmt"

	"github.com/jayabdulraman/social-agent-backend/internal/websearch/types"
)

// Factory builds search providers from configuration.
type Factory struct {
	constructors map[types.ProviderID]func(*types.ProviderConfig) (Provider, error)
}

func NewFactory() *Factory {
	return &Factory{
		constructors: map[types.ProviderID]func(*types.ProviderConfig) (Provider, error){
			types.ProviderTavily:  NewTavilyProvider,
			types.ProviderSearXNG: NewSearXNGProvider,
			types.ProviderExa:     NewExaProvider,
		},
	}
}

// Create validates the configuration and builds the matching provider.
func (f *Factory) Create(config *types.ProviderConfig) (Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	constructor, exists := f.constructors[config.ID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrProviderNotFound, config.ID)
	}

	return constructor(config)
}

package types

import "context"

// Provider is the unified chat-completion interface (OpenAI protocol shape).
type Provider interface {
	// CreateChatCompletion runs a synchronous completion.
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)

	// CreateChatCompletionStream runs a streaming completion.
	CreateChatCompletionStream(ctx context.Context, req ChatCompletionRequest) (<-chan StreamChunk, error)

	// Name returns the provider name.
	Name() string

	// Close releases provider resources.
	Close() error
}

// Factory creates provider instances by name.
type Factory interface {
	CreateProvider(provider string) (Provider, error)
}

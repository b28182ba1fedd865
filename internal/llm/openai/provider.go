package openai

import (
	"context"
	"errors"
	"io"

	"github.com/jayabdulraman/social-agent-backend/internal/llm/types"
	openai "github.com/sashabaranov/go-openai"
)

// Provider implements the chat-completion interface over any
// OpenAI-compatible endpoint. Groq and Google expose the same wire
// protocol, so a single implementation serves all three behind a
// configurable name and base URL.
type Provider struct {
	name   string
	config *types.Config
	client *openai.Client
}

// New creates a Provider for the OpenAI API itself.
func New(config *types.Config) (*Provider, error) {
	return NewNamed("openai", config)
}

// NewNamed creates a Provider against an OpenAI-compatible endpoint.
func NewNamed(name string, config *types.Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig(config.APIKey)
	cfg.BaseURL = config.BaseURL
	if cfg.HTTPClient != nil {
		cfg.HTTPClient.Timeout = config.Timeout
	}

	return &Provider{
		name:   name,
		config: config,
		client: openai.NewClientWithConfig(cfg),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// CreateChatCompletion runs a synchronous completion.
func (p *Provider) CreateChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.convertRequest(req, false))
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &types.ProviderError{
				Provider:   p.name,
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
				Err:        err,
			}
		}
		return nil, types.NewProviderError(p.name, "chat completion failed", err)
	}

	return p.convertResponse(&resp), nil
}

// CreateChatCompletionStream runs a streaming completion. Only textual
// deltas are streamed; tool-calling requests use the synchronous path.
func (p *Provider) CreateChatCompletionStream(ctx context.Context, req types.ChatCompletionRequest) (<-chan types.StreamChunk, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, p.convertRequest(req, true))
	if err != nil {
		return nil, types.NewProviderError(p.name, "create stream failed", err)
	}

	chunks := make(chan types.StreamChunk, 10)

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				chunks <- types.StreamChunk{Done: true}
				return
			}
			if err != nil {
				chunks <- types.StreamChunk{
					Done:  true,
					Error: types.NewProviderError(p.name, "read stream failed", err),
				}
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}

			choice := resp.Choices[0]
			chunk := types.StreamChunk{Content: choice.Delta.Content}
			if choice.FinishReason != "" {
				chunk.FinishReason = string(choice.FinishReason)
			}
			if chunk.Content == "" && chunk.FinishReason == "" {
				continue
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, nil
}

// Close releases provider resources.
func (p *Provider) Close() error {
	return nil
}

func (p *Provider) convertRequest(req types.ChatCompletionRequest, stream bool) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	out := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
		Stop:        req.Stop,
		Stream:      stream,
	}

	for _, msg := range req.Messages {
		m := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out.Messages = append(out.Messages, m)
	}

	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	if req.ToolChoice != nil {
		if req.ToolChoice.Name != "" {
			out.ToolChoice = openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: req.ToolChoice.Name},
			}
		} else if req.ToolChoice.Mode != "" {
			out.ToolChoice = req.ToolChoice.Mode
		}
	}

	return out
}

func (p *Provider) convertResponse(resp *openai.ChatCompletionResponse) *types.ChatCompletionResponse {
	out := &types.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  resp.Object,
		Created: resp.Created,
		Model:   resp.Model,
		Usage: types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, choice := range resp.Choices {
		msg := types.Message{
			Role:    choice.Message.Role,
			Content: choice.Message.Content,
		}
		for _, tc := range choice.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				Function: types.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out.Choices = append(out.Choices, types.Choice{
			Index:        choice.Index,
			Message:      msg,
			FinishReason: string(choice.FinishReason),
		})
	}

	return out
}

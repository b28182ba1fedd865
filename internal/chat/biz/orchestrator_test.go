package biz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	chattypes "github.com/jayabdulraman/social-agent-backend/internal/chat/types"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	llmtypes "github.com/jayabdulraman/social-agent-backend/internal/llm/types"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/stream"
	wstypes "github.com/jayabdulraman/social-agent-backend/internal/websearch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeProvider struct {
	completions []llmtypes.ChatCompletionResponse
	requests    []llmtypes.ChatCompletionRequest
	streamText  []string
	streamCalls int
	streamErr   error
}

func (p *fakeProvider) CreateChatCompletion(_ context.Context, req llmtypes.ChatCompletionRequest) (*llmtypes.ChatCompletionResponse, error) {
	p.requests = append(p.requests, req)
	if len(p.completions) == 0 {
		return nil, errors.New("no scripted completion")
	}
	resp := p.completions[0]
	p.completions = p.completions[1:]
	return &resp, nil
}

func (p *fakeProvider) CreateChatCompletionStream(_ context.Context, req llmtypes.ChatCompletionRequest) (<-chan llmtypes.StreamChunk, error) {
	p.requests = append(p.requests, req)
	p.streamCalls++
	if p.streamErr != nil {
		return nil, p.streamErr
	}

	chunks := make(chan llmtypes.StreamChunk, len(p.streamText)+1)
	for _, text := range p.streamText {
		chunks <- llmtypes.StreamChunk{Content: text}
	}
	chunks <- llmtypes.StreamChunk{Done: true, FinishReason: llmtypes.FinishReasonStop}
	close(chunks)
	return chunks, nil
}

func (p *fakeProvider) Name() string { return "fake" }
func (p *fakeProvider) Close() error { return nil }

type fakeFactory struct {
	provider *fakeProvider
}

func (f *fakeFactory) CreateProvider(string) (llmtypes.Provider, error) {
	return f.provider, nil
}

type fakeProvisioner struct {
	tools map[string]ProvisionedTool
}

func (f *fakeProvisioner) Provision(context.Context, string, []string) map[string]ProvisionedTool {
	if f.tools == nil {
		return map[string]ProvisionedTool{}
	}
	return f.tools
}

type fakeSearcher struct {
	results []*wstypes.SearchResult
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, req *wstypes.SearchRequest) (*wstypes.SearchResponse, error) {
	f.queries = append(f.queries, req.Query)
	if f.err != nil {
		return nil, f.err
	}
	return &wstypes.SearchResponse{Query: req.Query, Results: f.results}, nil
}

func (f *fakeSearcher) ID() wstypes.ProviderID { return "fake" }
func (f *fakeSearcher) Name() string           { return "fake" }

func textResponse(text string) llmtypes.ChatCompletionResponse {
	return llmtypes.ChatCompletionResponse{
		Choices: []llmtypes.Choice{{
			Message:      llmtypes.Message{Role: llmtypes.RoleAssistant, Content: text},
			FinishReason: llmtypes.FinishReasonStop,
		}},
	}
}

func toolCallResponse(id, name, args string) llmtypes.ChatCompletionResponse {
	return llmtypes.ChatCompletionResponse{
		Choices: []llmtypes.Choice{{
			Message: llmtypes.Message{
				Role: llmtypes.RoleAssistant,
				ToolCalls: []llmtypes.ToolCall{{
					ID:       id,
					Type:     "function",
					Function: llmtypes.FunctionCall{Name: name, Arguments: args},
				}},
			},
			FinishReason: llmtypes.FinishReasonToolCalls,
		}},
	}
}

func newTestOrchestrator(t *testing.T, provider *fakeProvider, provisioner ToolProvisioner, searcher *fakeSearcher) *Orchestrator {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)

	cfg := &conf.ChatConfig{MaxSteps: 10, MaxToolRounds: 3}
	if searcher != nil {
		return NewOrchestrator(&fakeFactory{provider}, provisioner, searcher, cfg, log)
	}
	return NewOrchestrator(&fakeFactory{provider}, provisioner, nil, cfg, log)
}

func decodeOutput(buf *bytes.Buffer) *stream.Decoder {
	d := stream.NewDecoder(nil)
	d.Feed(buf.String())
	return d
}

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       Mode
	}{
		{"no tools", nil, ModePlain},
		{"empty list", []string{}, ModePlain},
		{"twitter", []string{"TWITTER"}, ModeResearchPublish},
		{"twitter mixed case", []string{"twitter_tools"}, ModeResearchPublish},
		{"linkedin", []string{"LINKEDIN"}, ModeToolAugmented},
		{"other category", []string{"GITHUB"}, ModeToolAugmented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectMode(tt.categories))
		})
	}
}

func TestRunPlain(t *testing.T) {
	provider := &fakeProvider{streamText: []string{"Hello", " there!"}}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{}, nil)

	var buf bytes.Buffer
	err := o.Run(context.Background(), &chattypes.ChatRequest{
		Messages: []chattypes.ChatMessage{{Role: "user", Content: "hello"}},
		Model:    "gpt-5-mini",
	}, "user_1", stream.NewEncoder(&buf))
	require.NoError(t, err)

	// No sentinel segments in a plain response.
	assert.Equal(t, "Hello there!", buf.String())
	d := decodeOutput(&buf)
	assert.Empty(t, d.ToolCalls())
	assert.Empty(t, d.Cards())
}

func TestRunToolAugmented(t *testing.T) {
	executed := 0
	tools := map[string]ProvisionedTool{
		"LINKEDIN_CREATE_LINKED_IN_POST": {
			Definition: llmtypes.NewTool("LINKEDIN_CREATE_LINKED_IN_POST", "Create a post", nil),
			Toolkit:    "LINKEDIN",
			Execute: func(_ context.Context, args json.RawMessage) (*connector.ExecutionResult, error) {
				executed++
				return &connector.ExecutionResult{
					Successful: true,
					Data:       json.RawMessage(`{"id":"share_9"}`),
				}, nil
			},
		},
	}

	provider := &fakeProvider{
		completions: []llmtypes.ChatCompletionResponse{
			toolCallResponse("call_1", "LINKEDIN_CREATE_LINKED_IN_POST", `{"commentary":"hello"}`),
			textResponse("done"),
		},
		streamText: []string{"I created the LinkedIn post for you."},
	}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{tools: tools}, nil)

	var buf bytes.Buffer
	err := o.Run(context.Background(), &chattypes.ChatRequest{
		Messages: []chattypes.ChatMessage{{Role: "user", Content: "post this to linkedin"}},
		Tools:    []string{"LINKEDIN"},
	}, "user_1", stream.NewEncoder(&buf))
	require.NoError(t, err)

	assert.Equal(t, 1, executed)

	d := decodeOutput(&buf)
	require.Len(t, d.ToolCalls(), 1)
	assert.Equal(t, "call_1", d.ToolCalls()[0].ToolCallID)
	require.Len(t, d.ToolResults(), 1)
	assert.True(t, gjson.GetBytes(d.ToolResults()[0].Result, "successful").Bool())
	assert.Contains(t, d.CleanText(), "I created the LinkedIn post")

	// The narration call must not carry tools.
	last := provider.requests[len(provider.requests)-1]
	assert.Empty(t, last.Tools)
}

func TestRunToolAugmentedDegradesWithoutTools(t *testing.T) {
	provider := &fakeProvider{streamText: []string{"Plain answer."}}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{}, nil)

	var buf bytes.Buffer
	err := o.Run(context.Background(), &chattypes.ChatRequest{
		Messages: []chattypes.ChatMessage{{Role: "user", Content: "post this"}},
		Tools:    []string{"LINKEDIN"},
	}, "user_1", stream.NewEncoder(&buf))
	require.NoError(t, err)

	d := decodeOutput(&buf)
	assert.Empty(t, d.ToolCalls())
	assert.Equal(t, "Plain answer.", d.CleanText())
}

func TestRunToolAugmentedExecutionFailureNotFatal(t *testing.T) {
	tools := map[string]ProvisionedTool{
		"LINKEDIN_CREATE_LINKED_IN_POST": {
			Definition: llmtypes.NewTool("LINKEDIN_CREATE_LINKED_IN_POST", "Create a post", nil),
			Execute: func(context.Context, json.RawMessage) (*connector.ExecutionResult, error) {
				return nil, errors.New("connector timeout")
			},
		},
	}

	provider := &fakeProvider{
		completions: []llmtypes.ChatCompletionResponse{
			toolCallResponse("call_1", "LINKEDIN_CREATE_LINKED_IN_POST", `{}`),
			textResponse("done"),
		},
		streamText: []string{"The post could not be created."},
	}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{tools: tools}, nil)

	var buf bytes.Buffer
	err := o.Run(context.Background(), &chattypes.ChatRequest{
		Messages: []chattypes.ChatMessage{{Role: "user", Content: "post this"}},
		Tools:    []string{"LINKEDIN"},
	}, "user_1", stream.NewEncoder(&buf))
	require.NoError(t, err)

	d := decodeOutput(&buf)
	require.Len(t, d.ToolResults(), 1)
	assert.False(t, gjson.GetBytes(d.ToolResults()[0].Result, "successful").Bool())
	assert.Contains(t, d.CleanText(), "could not be created")
}

func TestRunResearchPublish(t *testing.T) {
	searcher := &fakeSearcher{
		results: []*wstypes.SearchResult{
			{Title: "AI advances", URL: "https://example.com/a", Content: "Summary A"},
			{Title: "More AI", URL: "https://example.com/b", Content: "Summary B"},
		},
	}
	provider := &fakeProvider{
		completions: []llmtypes.ChatCompletionResponse{
			toolCallResponse("call_ws", "web_search", `{"query":"latest AI news"}`),
			textResponse("Research shows AI is advancing quickly."),
			textResponse("Thinking...\nTWEET_CONTENT: AI moves faster than ever. The next year will be wild."),
		},
	}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{}, searcher)

	var buf bytes.Buffer
	err := o.Run(context.Background(), &chattypes.ChatRequest{
		Messages: []chattypes.ChatMessage{{Role: "user", Content: "tweet about AI news"}},
		Tools:    []string{"TWITTER"},
	}, "user_1", stream.NewEncoder(&buf))
	require.NoError(t, err)

	require.Equal(t, []string{"latest AI news"}, searcher.queries)

	d := decodeOutput(&buf)
	require.Len(t, d.ToolCalls(), 1)
	assert.Equal(t, "web_search", d.ToolCalls()[0].ToolName)
	require.Len(t, d.ToolResults(), 1)

	require.Len(t, d.Cards(), 1)
	card := d.Cards()[0]
	assert.Equal(t, stream.MarkerTwitterPreview, card.Marker)
	assert.Equal(t, "twitter-post-preview", gjson.GetBytes(card.Payload, "type").String())
	assert.False(t, gjson.GetBytes(card.Payload, "posted").Bool())
	assert.Equal(t, "AI moves faster than ever. The next year will be wild.", gjson.GetBytes(card.Payload, "content").String())
	assert.Equal(t, int64(2), gjson.GetBytes(card.Payload, "sources.#").Int())
	assert.NotEmpty(t, gjson.GetBytes(card.Payload, "researchText").String())

	// The research step must force the search tool.
	first := provider.requests[0]
	require.NotNil(t, first.ToolChoice)
	assert.Equal(t, "web_search", first.ToolChoice.Name)
}

func TestRunResearchPublishSearchFailureDegrades(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("search provider down")}
	provider := &fakeProvider{
		completions: []llmtypes.ChatCompletionResponse{
			toolCallResponse("call_ws", "web_search", `{"query":"topic"}`),
		},
		streamText: []string{"Here is what I know without live search."},
	}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{}, searcher)

	var buf bytes.Buffer
	err := o.Run(context.Background(), &chattypes.ChatRequest{
		Messages: []chattypes.ChatMessage{{Role: "user", Content: "tweet about topic"}},
		Tools:    []string{"TWITTER"},
	}, "user_1", stream.NewEncoder(&buf))
	require.NoError(t, err)

	d := decodeOutput(&buf)
	assert.Empty(t, d.Cards())
	assert.Contains(t, d.CleanText(), "without live search")
}

func TestSynthesizeFallbackTruncation(t *testing.T) {
	long := strings.Repeat("x", 400)
	provider := &fakeProvider{
		completions: []llmtypes.ChatCompletionResponse{textResponse(long)},
	}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{}, nil)

	post, err := o.synthesize(context.Background(), provider, DefaultHandle, "topic", "research")
	require.NoError(t, err)
	assert.Len(t, []rune(post), maxTweetLength)
	assert.True(t, strings.HasSuffix(post, "..."))
}

func TestTruncatePostShortUnchanged(t *testing.T) {
	assert.Equal(t, "short post", truncatePost("short post"))
}

func TestExecuteToolCallUnknownTool(t *testing.T) {
	provider := &fakeProvider{}
	o := newTestOrchestrator(t, provider, &fakeProvisioner{}, nil)

	var buf bytes.Buffer
	result := o.executeToolCall(context.Background(), map[string]ProvisionedTool{}, llmtypes.ToolCall{
		ID:       "call_x",
		Function: llmtypes.FunctionCall{Name: "NOPE", Arguments: "{}"},
	}, stream.NewEncoder(&buf))

	assert.False(t, gjson.Get(result, "successful").Bool())
	assert.Contains(t, gjson.Get(result, "error").String(), "NOPE")
}

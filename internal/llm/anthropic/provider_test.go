package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jayabdulraman/social-agent-backend/internal/llm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *types.Config {
	return &types.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Model:   "claude-sonnet-4-20250514",
	}
}

func TestConvertRequest(t *testing.T) {
	p, err := New(testConfig("https://api.anthropic.com"))
	require.NoError(t, err)

	req := types.ChatCompletionRequest{
		Model: "claude-sonnet-4-20250514",
		Messages: []types.Message{
			types.SystemMessage("You are helpful."),
			types.UserMessage("post a tweet"),
			{
				Role: types.RoleAssistant,
				ToolCalls: []types.ToolCall{{
					ID:   "toolu_01",
					Type: "function",
					Function: types.FunctionCall{
						Name:      "TWITTER_CREATION_OF_A_POST",
						Arguments: `{"text":"hello"}`,
					},
				}},
			},
			types.ToolMessage("toolu_01", "TWITTER_CREATION_OF_A_POST", `{"successful":true}`),
		},
		Tools: []types.Tool{
			types.NewTool("TWITTER_CREATION_OF_A_POST", "Create a post", map[string]interface{}{
				"type": "object",
			}),
		},
		ToolChoice: types.Auto(),
	}

	out, err := p.convertRequest(req)
	require.NoError(t, err)

	assert.Equal(t, "You are helpful.", out.System)
	require.Len(t, out.Messages, 3)

	assert.Equal(t, "user", out.Messages[0].Role)
	assert.Equal(t, "text", out.Messages[0].Content[0].Type)

	assert.Equal(t, "assistant", out.Messages[1].Role)
	assert.Equal(t, "tool_use", out.Messages[1].Content[0].Type)
	assert.Equal(t, "toolu_01", out.Messages[1].Content[0].ID)

	assert.Equal(t, "user", out.Messages[2].Role)
	assert.Equal(t, "tool_result", out.Messages[2].Content[0].Type)
	assert.Equal(t, "toolu_01", out.Messages[2].Content[0].ToolUseID)

	require.Len(t, out.Tools, 1)
	require.NotNil(t, out.ToolChoice)
	assert.Equal(t, "auto", out.ToolChoice.Type)
}

func TestConvertRequestForcedTool(t *testing.T) {
	p, err := New(testConfig("https://api.anthropic.com"))
	require.NoError(t, err)

	out, err := p.convertRequest(types.ChatCompletionRequest{
		Messages:   []types.Message{types.UserMessage("search the web")},
		Tools:      []types.Tool{types.NewTool("web_search", "Search the web", nil)},
		ToolChoice: types.Force("web_search"),
	})
	require.NoError(t, err)

	require.NotNil(t, out.ToolChoice)
	assert.Equal(t, "tool", out.ToolChoice.Type)
	assert.Equal(t, "web_search", out.ToolChoice.Name)

	// Missing parameter schemas get a minimal object schema.
	require.Len(t, out.Tools, 1)
	assert.Equal(t, "object", out.Tools[0].InputSchema["type"])
}

func TestConvertResponseToolUse(t *testing.T) {
	p, err := New(testConfig("https://api.anthropic.com"))
	require.NoError(t, err)

	resp := p.convertResponse(&anthropicResponse{
		ID:    "msg_01",
		Model: "claude-sonnet-4-20250514",
		Content: []anthropicBlock{
			{Type: "text", Text: "Searching now."},
			{Type: "tool_use", ID: "toolu_02", Name: "web_search", Input: json.RawMessage(`{"query":"AI news"}`)},
		},
		StopReason: "tool_use",
		Usage:      anthropicUsage{InputTokens: 10, OutputTokens: 20},
	})

	msg := resp.FirstMessage()
	assert.Equal(t, "Searching now.", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "web_search", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"query":"AI news"}`, msg.ToolCalls[0].Function.Arguments)
	assert.Equal(t, types.FinishReasonToolCalls, resp.Choices[0].FinishReason)
	assert.Equal(t, 30, resp.Usage.TotalTokens)
}

func TestCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		json.NewEncoder(w).Encode(anthropicResponse{
			ID:         "msg_02",
			Model:      "claude-sonnet-4-20250514",
			Content:    []anthropicBlock{{Type: "text", Text: "Hello there."}},
			StopReason: "end_turn",
			Usage:      anthropicUsage{InputTokens: 5, OutputTokens: 3},
		})
	}))
	defer server.Close()

	p, err := New(testConfig(server.URL))
	require.NoError(t, err)

	resp, err := p.CreateChatCompletion(context.Background(), types.ChatCompletionRequest{
		Messages: []types.Message{types.UserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", resp.Text())
	assert.Equal(t, types.FinishReasonStop, resp.Choices[0].FinishReason)
}

func TestCreateChatCompletionAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	}))
	defer server.Close()

	p, err := New(testConfig(server.URL))
	require.NoError(t, err)

	_, err = p.CreateChatCompletion(context.Background(), types.ChatCompletionRequest{
		Messages: []types.Message{types.UserMessage("hi")},
	})
	require.Error(t, err)

	var provErr *types.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
}

func TestCreateChatCompletionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`event: message_start`,
			`data: {"type":"message_start","message":{"id":"msg_03","model":"claude-sonnet-4-20250514"}}`,
			``,
			`event: content_block_delta`,
			`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Hel"}}`,
			``,
			`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"lo"}}`,
			``,
			`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
			``,
			`data: {"type":"message_stop"}`,
			``,
		}
		for _, line := range events {
			w.Write([]byte(line + "\n"))
		}
	}))
	defer server.Close()

	p, err := New(testConfig(server.URL))
	require.NoError(t, err)

	chunks, err := p.CreateChatCompletionStream(context.Background(), types.ChatCompletionRequest{
		Messages: []types.Message{types.UserMessage("hi")},
	})
	require.NoError(t, err)

	var text string
	var finish string
	var done bool
	for chunk := range chunks {
		require.NoError(t, chunk.Error)
		text += chunk.Content
		if chunk.FinishReason != "" {
			finish = chunk.FinishReason
		}
		if chunk.Done {
			done = true
		}
	}

	assert.Equal(t, "Hello", text)
	assert.Equal(t, types.FinishReasonStop, finish)
	assert.True(t, done)
}

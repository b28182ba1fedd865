package types

// FinishReason values reported by providers.
const (
	FinishReasonStop      = "stop"
	FinishReasonMaxTokens = "length"
	FinishReasonToolCalls = "tool_calls"
)

// ChatCompletionResponse is the neutral response format (OpenAI shape).
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Message is used for both requests and responses.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`

	// Tool calls issued by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Set on role=tool messages to pair the result with its call.
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolCall is a model-issued request to execute a tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk is a streaming response increment.
type StreamChunk struct {
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Done         bool   `json:"done"`
	Error        error  `json:"-"`
}

// FirstMessage returns the first choice's message, or an empty message.
func (r *ChatCompletionResponse) FirstMessage() Message {
	if len(r.Choices) == 0 {
		return Message{}
	}
	return r.Choices[0].Message
}

// Text returns the first choice's textual content.
func (r *ChatCompletionResponse) Text() string {
	return r.FirstMessage().Content
}

// HasToolCalls reports whether the first choice issued tool calls.
func (r *ChatCompletionResponse) HasToolCalls() bool {
	return len(r.FirstMessage().ToolCalls) > 0
}

package stream

import "encoding/json"

// Segment markers. Structured events travel inside the plain-text
// response as "\n\n<MARKER>{json}<MARKER>\n\n". The markers are long
// uppercase tokens that do not occur in generated prose.
const (
	MarkerToolCall        = "__TOOL_CALL__"
	MarkerToolResult      = "__TOOL_RESULT__"
	MarkerTwitterPreview  = "__TWITTER_PREVIEW__"
	MarkerLinkedInPreview = "__LINKEDIN_PREVIEW__"
)

// ToolCallEvent announces a model-issued tool invocation.
type ToolCallEvent struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args,omitempty"`
}

// ToolResultEvent carries the execution outcome for a prior tool call.
// The tool name is repeated so the pairing survives a lost call event.
type ToolResultEvent struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// PreviewCardEvent is a raw preview-card payload plus the marker it
// arrived under, so the consumer can tell the target platform apart.
type PreviewCardEvent struct {
	Marker  string
	Payload json.RawMessage
}

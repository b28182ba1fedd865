package connector

import "encoding/json"

// ToolDefinition is one callable tool as the connector describes it.
// InputParameters is the raw JSON schema for the tool's arguments.
type ToolDefinition struct {
	Slug            string
	Description     string
	Toolkit         string
	InputParameters json.RawMessage
}

// ExecutionResult is the outcome of one tool execution. Data is the
// provider-specific payload, kept opaque for the caller to interpret.
type ExecutionResult struct {
	Successful bool            `json:"successful"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ConnectionRequest is a started account-linking flow. The user opens
// RedirectURL and the caller polls the connection until it is active.
type ConnectionRequest struct {
	ID          string `json:"connectionId"`
	RedirectURL string `json:"authUrl"`
}

// ConnectionStatus reports the state of a linked account.
type ConnectionStatus struct {
	ID            string `json:"connectionId,omitempty"`
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

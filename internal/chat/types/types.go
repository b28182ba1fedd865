package types

// ChatMessage is one conversation turn in a chat request.
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,min=1"`
	Model    string        `json:"model"`
	Tools    []string      `json:"tools"`
	UserID   string        `json:"userId"`
}

// LastUserContent returns the content of the most recent user message.
func (r *ChatRequest) LastUserContent() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}

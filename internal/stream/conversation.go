package stream

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const maxTitleLength = 40

// Thread is one conversation: an id, a derived title and an ordered
// message sequence.
type Thread struct {
	ID       string
	Title    string
	Messages []*Message
}

// Message is a single conversation entry. Assistant messages grow
// append-only while their response streams and freeze on Close.
type Message struct {
	ID          string
	Role        string
	Content     string
	Model       string
	ToolCalls   []ToolCallEvent
	ToolResults []ToolResultEvent
	Cards       []PreviewCardEvent
	Sources     []json.RawMessage
	Metrics     Snapshot

	streaming bool
}

// NewThread creates a thread titled after the first user message.
func NewThread(firstUserContent string) *Thread {
	return &Thread{
		ID:    uuid.New().String(),
		Title: deriveTitle(firstUserContent),
	}
}

func deriveTitle(content string) string {
	title := strings.TrimSpace(content)
	if title == "" {
		return "New chat"
	}
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		return string(runes[:maxTitleLength]) + "..."
	}
	return title
}

// AddUserMessage appends a completed user message.
func (t *Thread) AddUserMessage(content string) *Message {
	msg := &Message{
		ID:      uuid.New().String(),
		Role:    RoleUser,
		Content: content,
	}
	t.Messages = append(t.Messages, msg)
	return msg
}

// BeginAssistantMessage appends a streaming assistant message.
func (t *Thread) BeginAssistantMessage(model string) *Message {
	msg := &Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Model:     model,
		streaming: true,
	}
	t.Messages = append(t.Messages, msg)
	return msg
}

// Update refreshes the message from the decoder's current state.
// Ignored once the message is closed.
func (m *Message) Update(d *Decoder, metrics Snapshot) {
	if !m.streaming {
		return
	}
	m.Content = d.CleanText()
	m.ToolCalls = d.ToolCalls()
	m.ToolResults = d.ToolResults()
	m.Cards = d.Cards()
	m.Metrics = metrics
}

// Close makes the message immutable.
func (m *Message) Close() {
	m.streaming = false
}

// Streaming reports whether the message is still receiving content.
func (m *Message) Streaming() bool {
	return m.streaming
}

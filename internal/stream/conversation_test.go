package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThreadTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short message", "hello there", "hello there"},
		{"trims whitespace", "  hi  ", "hi"},
		{"empty message", "", "New chat"},
		{"long message truncated", strings.Repeat("a", 60), strings.Repeat("a", 40) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewThread(tt.content).Title)
		})
	}
}

func TestThreadMessageOrdering(t *testing.T) {
	th := NewThread("first question")
	user := th.AddUserMessage("first question")
	asst := th.BeginAssistantMessage("gpt-4o-mini")

	require.Len(t, th.Messages, 2)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, RoleAssistant, asst.Role)
	assert.NotEqual(t, user.ID, asst.ID)
	assert.True(t, asst.Streaming())
}

func TestMessageImmutableAfterClose(t *testing.T) {
	th := NewThread("q")
	msg := th.BeginAssistantMessage("gpt-4o-mini")

	d := NewDecoder(nil)
	d.Feed("partial answer")
	msg.Update(d, Snapshot{})
	assert.Equal(t, "partial answer", msg.Content)

	msg.Close()
	assert.False(t, msg.Streaming())

	d.Feed(" with more")
	msg.Update(d, Snapshot{})
	assert.Equal(t, "partial answer", msg.Content)
}

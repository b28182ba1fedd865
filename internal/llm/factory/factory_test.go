package factory

import (
	"testing"

	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLLMConfig() *conf.LLMConfig {
	return &conf.LLMConfig{
		OpenAI:    conf.ProviderKeyConfig{APIKey: "sk-openai"},
		Anthropic: conf.ProviderKeyConfig{APIKey: "sk-anthropic"},
		Google:    conf.ProviderKeyConfig{APIKey: "sk-google"},
		Groq:      conf.ProviderKeyConfig{APIKey: "sk-groq"},
	}
}

func TestCreateProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{"openai", "openai"},
		{"anthropic", "anthropic"},
		{"google", "google"},
		{"groq", "groq"},
	}

	f := New(testLLMConfig())
	defer f.Close()

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := f.CreateProvider(tt.provider)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestCreateProviderCached(t *testing.T) {
	f := New(testLLMConfig())
	defer f.Close()

	p1, err := f.CreateProvider("openai")
	require.NoError(t, err)
	p2, err := f.CreateProvider("openai")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestCreateProviderUnsupported(t *testing.T) {
	f := New(testLLMConfig())
	defer f.Close()

	_, err := f.CreateProvider("mistral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestCreateProviderMissingKey(t *testing.T) {
	f := New(&conf.LLMConfig{})
	defer f.Close()

	_, err := f.CreateProvider("anthropic")
	require.Error(t, err)
}

package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jayabdulraman/social-agent-backend/internal/websearch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"query":"golang generics"`)

		io.WriteString(w, `{"results":[
			{"title":"Go Generics","url":"https://go.dev/blog/intro-generics","content":"Type parameters.","score":0.9},
			{"title":"Spec","url":"https://go.dev/ref/spec","content":"The spec.","score":0.7}
		]}`)
	}))
	defer server.Close()

	p, err := NewTavilyProvider(&types.ProviderConfig{
		ID:      types.ProviderTavily,
		Name:    "Tavily",
		APIHost: server.URL,
		APIKey:  "test-key",
	})
	require.NoError(t, err)

	resp, err := p.Search(context.Background(), &types.SearchRequest{Query: "golang generics"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Go Generics", resp.Results[0].Title)
	assert.Equal(t, "https://go.dev/blog/intro-generics", resp.Results[0].URL)
	assert.Equal(t, types.ProviderTavily, resp.Provider)
	assert.Equal(t, 2, resp.TotalCount)
}

func TestExaSearchPrefersHighlights(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "exa-key", r.Header.Get("x-api-key"))
		io.WriteString(w, `{"results":[
			{"title":"Post","url":"https://example.com/a","text":"full page text",
			 "highlights":["first highlight","second highlight"],"score":0.8}
		]}`)
	}))
	defer server.Close()

	p, err := NewExaProvider(&types.ProviderConfig{
		ID:      types.ProviderExa,
		Name:    "Exa",
		APIHost: server.URL,
		APIKey:  "exa-key",
	})
	require.NoError(t, err)

	resp, err := p.Search(context.Background(), &types.SearchRequest{Query: "anything"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "first highlight\nsecond highlight", resp.Results[0].Content)
}

func TestSearXNGSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "json", r.URL.Query().Get("format"))
		require.Equal(t, "news today", r.URL.Query().Get("q"))
		io.WriteString(w, `{"results":[{"title":"Headline","url":"https://news.example.com","content":"Summary."}]}`)
	}))
	defer server.Close()

	p, err := NewSearXNGProvider(&types.ProviderConfig{
		ID:      types.ProviderSearXNG,
		Name:    "SearXNG",
		APIHost: server.URL,
	})
	require.NoError(t, err)

	resp, err := p.Search(context.Background(), &types.SearchRequest{Query: "news today"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Headline", resp.Results[0].Title)
}

func TestSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	p, err := NewTavilyProvider(&types.ProviderConfig{
		ID:      types.ProviderTavily,
		Name:    "Tavily",
		APIHost: server.URL,
		APIKey:  "bad-key",
	})
	require.NoError(t, err)

	_, err = p.Search(context.Background(), &types.SearchRequest{Query: "x"})
	require.Error(t, err)

	var provErr *types.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "HTTP_401", provErr.Code)
	assert.Contains(t, provErr.Message, "invalid api key")
}

func TestProviderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *types.ProviderConfig
		wantErr error
	}{
		{
			name: "valid tavily config",
			config: &types.ProviderConfig{
				ID:      types.ProviderTavily,
				Name:    "Tavily",
				APIHost: "https://api.tavily.com",
				APIKey:  "test-key",
			},
		},
		{
			name: "searxng needs no api key",
			config: &types.ProviderConfig{
				ID:      types.ProviderSearXNG,
				Name:    "SearXNG",
				APIHost: "https://search.example.com",
			},
		},
		{
			name: "missing provider id",
			config: &types.ProviderConfig{
				Name:    "Test",
				APIHost: "https://api.test.com",
				APIKey:  "test-key",
			},
			wantErr: types.ErrInvalidProviderID,
		},
		{
			name: "missing api host",
			config: &types.ProviderConfig{
				ID:     types.ProviderTavily,
				Name:   "Tavily",
				APIKey: "test-key",
			},
			wantErr: types.ErrInvalidAPIHost,
		},
		{
			name: "missing api key",
			config: &types.ProviderConfig{
				ID:      types.ProviderTavily,
				Name:    "Tavily",
				APIHost: "https://api.tavily.com",
			},
			wantErr: types.ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

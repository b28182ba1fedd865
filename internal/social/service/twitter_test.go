package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	llmtypes "github.com/jayabdulraman/social-agent-backend/internal/llm/types"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/social/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// stubProvider always fails, which drives the publisher to its direct
// argument fallback and keeps these tests off the model path.
type stubProvider struct{}

func (stubProvider) CreateChatCompletion(context.Context, llmtypes.ChatCompletionRequest) (*llmtypes.ChatCompletionResponse, error) {
	return nil, errors.New("not available in tests")
}

func (stubProvider) CreateChatCompletionStream(context.Context, llmtypes.ChatCompletionRequest) (<-chan llmtypes.StreamChunk, error) {
	return nil, errors.New("not available in tests")
}

func (stubProvider) Name() string { return "stub" }
func (stubProvider) Close() error { return nil }

type stubFactory struct{}

func (stubFactory) CreateProvider(string) (llmtypes.Provider, error) {
	return stubProvider{}, nil
}

func newSocialRouter(t *testing.T, connectorURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)

	cfg := &conf.ConnectorConfig{
		BaseURL:  connectorURL,
		Timeout:  time.Second,
		Twitter:  conf.ConnectorIntegrationConfig{APIKey: "tw-key", AuthConfigID: "ac_tw"},
		LinkedIn: conf.ConnectorIntegrationConfig{APIKey: "li-key", AuthConfigID: "ac_li"},
	}
	chatCfg := &conf.ChatConfig{DefaultUserID: "ca_VYRbOnfLPnef"}

	registry := connector.NewRegistry(log)
	publisher := biz.NewPublisher(stubFactory{}, registry, nil, cfg, log)

	twitter := NewTwitterService(publisher, registry, cfg, chatCfg, nil, log)
	linkedin := NewLinkedInService(publisher, registry, cfg, chatCfg, nil, log)

	r := gin.New()
	r.POST("/api/twitter/post", twitter.HandlePost)
	r.POST("/api/twitter/auth", twitter.HandleAuth)
	r.GET("/api/twitter/auth", twitter.HandleAuthCallback)
	r.GET("/api/twitter/status", twitter.HandleStatus)
	r.POST("/api/linkedin/post", linkedin.HandlePost)
	r.GET("/api/linkedin/status", linkedin.HandleStatus)
	r.GET("/api/linkedin/profile", linkedin.HandleProfile)
	return r
}

func TestTwitterPostSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/tools/execute/TWITTER_CREATION_OF_A_POST", r.URL.Path)
		io.WriteString(w, `{"successful":true,"data":{"data":{"id":"1845000000000000001","text":"Ship it."}}}`)
	}))
	defer server.Close()

	r := newSocialRouter(t, server.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/twitter/post",
		strings.NewReader(`{"content":"Ship it.","userId":"user_1"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "Tweet posted successfully!", gjson.Get(body, "message").String())
	assert.Equal(t, "twitter-post-success", gjson.Get(body, "twitterData.type").String())
	assert.Equal(t, "1845000000000000001", gjson.Get(body, "twitterData.tweetId").String())
	assert.True(t, gjson.Get(body, "twitterData.posted").Bool())
}

func TestTwitterPostMissingFields(t *testing.T) {
	r := newSocialRouter(t, "http://unused.invalid")

	for _, body := range []string{
		`{}`,
		`{"content":"hi"}`,
		`{"userId":"user_1"}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/twitter/post", strings.NewReader(body))
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
		assert.Equal(t, "Content and userId are required", gjson.Get(w.Body.String(), "error").String())
	}
}

func TestTwitterPostExecutionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"successful":false,"error":"duplicate content"}`)
	}))
	defer server.Close()

	r := newSocialRouter(t, server.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/twitter/post",
		strings.NewReader(`{"content":"x","userId":"user_1"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "error").String())
}

func TestTwitterAuthInitiation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/connected_accounts", r.URL.Path)
		io.WriteString(w, `{"id":"conn_123","redirect_url":"https://connect.example.com/oauth/start"}`)
	}))
	defer server.Close()

	r := newSocialRouter(t, server.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/twitter/auth", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "conn_123", gjson.Get(w.Body.String(), "connectionId").String())
	assert.Equal(t, "https://connect.example.com/oauth/start", gjson.Get(w.Body.String(), "authUrl").String())
}

func TestTwitterAuthCallback(t *testing.T) {
	r := newSocialRouter(t, "http://unused.invalid")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/twitter/auth", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "success").Bool())
}

func TestTwitterStatusVerifiesActiveConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v3/connected_accounts":
			io.WriteString(w, `{"items":[{"id":"conn_123","status":"ACTIVE"}]}`)
		case r.URL.Path == "/api/v3/tools/execute/TWITTER_USER_LOOKUP_ME":
			io.WriteString(w, `{"successful":true,"data":{"data":{"username":"someone"}}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	r := newSocialRouter(t, server.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/twitter/status?userId=user_1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "authenticated").Bool())
	assert.Equal(t, "conn_123", gjson.Get(w.Body.String(), "connectionId").String())
}

func TestTwitterStatusExpiredCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v3/connected_accounts/"):
			io.WriteString(w, `{"status":"ACTIVE"}`)
		case r.URL.Path == "/api/v3/tools/execute/TWITTER_USER_LOOKUP_ME":
			io.WriteString(w, `{"successful":false,"error":"token revoked"}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	r := newSocialRouter(t, server.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/twitter/status?connectionId=conn_123", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "authenticated").Bool())
	assert.Equal(t, "EXPIRED", gjson.Get(w.Body.String(), "status").String())
}

package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Client talks to the external tool-connector service. The connector
// owns OAuth-style account linking and tool execution; this client
// only moves JSON back and forth and leaves payload interpretation to
// the caller.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a connector client.
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log,
	}, nil
}

// AuthConfigID returns the integration's auth-config id.
func (c *Client) AuthConfigID() string {
	return c.config.AuthConfigID
}

// doRequest executes one HTTP exchange and returns the raw body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	c.logger.Debug("connector request",
		zap.String("method", method),
		zap.String("url", u),
	)

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("connector request failed",
			zap.String("method", method),
			zap.String("url", u),
			zap.Error(err),
		)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("connector error response",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respData)),
		)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respData))
	}

	return respData, nil
}

// GetTools fetches the callable tool definitions for the given
// toolkits, scoped to the user's linked account.
func (c *Client) GetTools(ctx context.Context, userID string, toolkits []string) ([]ToolDefinition, error) {
	var defs []ToolDefinition

	for _, toolkit := range toolkits {
		query := url.Values{}
		query.Set("toolkit_slug", toolkit)
		query.Set("user_id", userID)

		body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/tools", query, nil)
		if err != nil {
			return nil, err
		}

		for _, item := range gjson.GetBytes(body, "items").Array() {
			defs = append(defs, ToolDefinition{
				Slug:            item.Get("slug").String(),
				Description:     item.Get("description").String(),
				Toolkit:         item.Get("toolkit.slug").String(),
				InputParameters: json.RawMessage(item.Get("input_parameters").Raw),
			})
		}
	}

	return defs, nil
}

// ExecuteTool runs one tool on behalf of the user and returns the
// structured outcome. An unsuccessful execution is reported through
// ExecutionResult, not as an error; errors mean the exchange failed.
func (c *Client) ExecuteTool(ctx context.Context, slug, userID string, arguments json.RawMessage) (*ExecutionResult, error) {
	if len(arguments) == 0 {
		arguments = json.RawMessage("{}")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/v3/tools/execute/"+slug, nil, map[string]interface{}{
		"user_id":   userID,
		"arguments": arguments,
	})
	if err != nil {
		return nil, err
	}

	result := &ExecutionResult{
		Successful: gjson.GetBytes(body, "successful").Bool(),
		Error:      gjson.GetBytes(body, "error").String(),
	}
	if data := gjson.GetBytes(body, "data"); data.Exists() {
		result.Data = json.RawMessage(data.Raw)
	}

	c.logger.Debug("connector tool executed",
		zap.String("slug", slug),
		zap.Bool("successful", result.Successful),
	)

	return result, nil
}

// InitiateConnection starts an account-linking flow for the user.
func (c *Client) InitiateConnection(ctx context.Context, userID string) (*ConnectionRequest, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/v3/connected_accounts", nil, map[string]interface{}{
		"auth_config": map[string]string{"id": c.config.AuthConfigID},
		"connection":  map[string]string{"user_id": userID},
	})
	if err != nil {
		return nil, err
	}

	req := &ConnectionRequest{
		ID:          gjson.GetBytes(body, "id").String(),
		RedirectURL: gjson.GetBytes(body, "redirect_url").String(),
	}
	if req.RedirectURL == "" {
		req.RedirectURL = gjson.GetBytes(body, "connection_data.val.redirectUrl").String()
	}
	if req.RedirectURL == "" {
		return nil, fmt.Errorf("connection response missing redirect URL")
	}

	return req, nil
}

// GetConnection fetches one connection by id.
func (c *Client) GetConnection(ctx context.Context, connectionID string) (*ConnectionStatus, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/connected_accounts/"+connectionID, nil, nil)
	if err != nil {
		return nil, err
	}

	status := gjson.GetBytes(body, "status").String()
	return &ConnectionStatus{
		ID:            connectionID,
		Status:        status,
		Authenticated: status == "ACTIVE",
	}, nil
}

// GetUserConnection reports whether the user has an active linked
// account for this integration.
func (c *Client) GetUserConnection(ctx context.Context, userID string) (*ConnectionStatus, error) {
	query := url.Values{}
	query.Set("user_ids", userID)
	if c.config.AuthConfigID != "" {
		query.Set("auth_config_ids", c.config.AuthConfigID)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/connected_accounts", query, nil)
	if err != nil {
		return nil, err
	}

	for _, item := range gjson.GetBytes(body, "items").Array() {
		if item.Get("status").String() == "ACTIVE" {
			return &ConnectionStatus{
				ID:            item.Get("id").String(),
				Status:        "ACTIVE",
				Authenticated: true,
			}, nil
		}
	}

	return &ConnectionStatus{Status: "INITIATED", Authenticated: false}, nil
}

// ListToolkits proxies the connector's toolkit catalog. The response
// body is returned verbatim for the HTTP layer to forward.
func (c *Client) ListToolkits(ctx context.Context, category, cursor string, limit int) (json.RawMessage, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	return c.doRequest(ctx, http.MethodGet, "/api/v3/toolkits", query, nil)
}

// ListToolkitTools proxies the per-toolkit tool listing.
func (c *Client) ListToolkitTools(ctx context.Context, toolkitSlug, cursor string, limit int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("toolkit_slug", toolkitSlug)
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	return c.doRequest(ctx, http.MethodGet, "/api/v3/tools", query, nil)
}

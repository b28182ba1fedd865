package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jayabdulraman/social-agent-backend/internal/websearch/types"
)

// Provider executes web searches for the research workflow.
type Provider interface {
	Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)
	ID() types.ProviderID
	Name() string
}

// base holds the HTTP plumbing shared by the concrete providers.
type base struct {
	config     *types.ProviderConfig
	httpClient *http.Client
}

func newBase(config *types.ProviderConfig) base {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return base{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (b *base) ID() types.ProviderID { return b.config.ID }

func (b *base) Name() string { return b.config.Name }

// do executes the request with exponential backoff on transport errors.
// Non-2xx responses are returned to the caller, not retried.
func (b *base) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := b.config.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := b.httpClient.Do(req.WithContext(ctx))
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(i)) * time.Second):
			}
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// requestError wraps a transport failure as a ProviderError.
func (b *base) requestError(err error) error {
	return &types.ProviderError{
		Provider: b.ID(),
		Code:     "REQUEST_FAILED",
		Message:  "failed to execute request",
		Err:      err,
	}
}

// statusError turns a non-2xx response into a ProviderError carrying the body.
func (b *base) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &types.ProviderError{
		Provider: b.ID(),
		Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message:  string(body),
	}
}

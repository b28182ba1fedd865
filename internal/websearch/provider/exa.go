package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jayabdulraman/social-agent-backend/internal/websearch/types"
)

// ExaProvider queries the Exa neural search API.
type ExaProvider struct {
	base
}

func NewExaProvider(config *types.ProviderConfig) (Provider, error) {
	return &ExaProvider{base: newBase(config)}, nil
}

type exaRequest struct {
	Query              string                 `json:"query"`
	NumResults         int                    `json:"numResults,omitempty"`
	IncludeDomains     []string               `json:"includeDomains,omitempty"`
	ExcludeDomains     []string               `json:"excludeDomains,omitempty"`
	StartPublishedDate string                 `json:"startPublishedDate,omitempty"`
	EndPublishedDate   string                 `json:"endPublishedDate,omitempty"`
	UseAutoprompt      bool                   `json:"useAutoprompt,omitempty"`
	Type               string                 `json:"type,omitempty"`
	Contents           map[string]interface{} `json:"contents,omitempty"`
}

type exaResponse struct {
	Results []struct {
		Title         string   `json:"title"`
		URL           string   `json:"url"`
		Text          string   `json:"text,omitempty"`
		Highlights    []string `json:"highlights,omitempty"`
		Score         float32  `json:"score"`
		PublishedDate string   `json:"publishedDate,omitempty"`
		Author        string   `json:"author,omitempty"`
	} `json:"results"`
}

func (p *ExaProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	start := time.Now()

	exaReq := exaRequest{
		Query:          req.Query,
		NumResults:     req.MaxResults,
		IncludeDomains: req.IncludeDomains,
		ExcludeDomains: req.ExcludeDomains,
		UseAutoprompt:  true,
		Type:           "auto",
		Contents:       map[string]interface{}{"text": true},
	}
	if exaReq.NumResults == 0 {
		exaReq.NumResults = 10
	}
	if req.TimeRange != nil {
		exaReq.StartPublishedDate = req.TimeRange.Start
		exaReq.EndPublishedDate = req.TimeRange.End
	}

	reqBody, err := json.Marshal(exaReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		p.config.APIHost+"/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)

	resp, err := p.do(ctx, httpReq)
	if err != nil {
		return nil, p.requestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp)
	}

	var exaResp exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&exaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]*types.SearchResult, len(exaResp.Results))
	for i, r := range exaResp.Results {
		// Highlights are more focused than the full page text when present.
		content := r.Text
		if len(r.Highlights) > 0 {
			content = strings.Join(r.Highlights, "\n")
		}

		results[i] = &types.SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Content:     content,
			Score:       r.Score,
			PublishedAt: r.PublishedDate,
			Author:      r.Author,
		}
	}

	return &types.SearchResponse{
		Query:      req.Query,
		Results:    results,
		TotalCount: len(results),
		Took:       time.Since(start).Milliseconds(),
		Provider:   p.ID(),
	}, nil
}

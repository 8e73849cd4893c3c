package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/openai/openai-go"
	"github.com/sozercan/research-ai-mole/internal/config"
)

var ErrSearchNotConfigured = errors.New("web search is not configured: set SEARCH_API_KEY")

// WebSearch queries a Tavily-compatible search API.
type WebSearch struct {
	client *resty.Client
	cfg    *config.SearchConfig
}

func NewWebSearch(cfg *config.SearchConfig) *WebSearch {
	client := resty.New().
		SetBaseURL(cfg.APIEndpoint).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == 429
		}).
		SetHeader("Content-Type", "application/json")

	return &WebSearch{client: client, cfg: cfg}
}

func (w *WebSearch) Name() string { return "web_search" }

func (w *WebSearch) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Type: openai.F(openai.ChatCompletionToolTypeFunction),
		Function: openai.F(openai.FunctionDefinitionParam{
			Name:        openai.String("web_search"),
			Description: openai.String("Search the web for recent information on a topic. Returns titles, URLs and snippets."),
			Parameters: openai.F(openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]string{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required": []string{"query"},
			}),
		}),
	}
}

type webSearchInput struct {
	Query string `json:"query"`
}

type webSearchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type webSearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (w *WebSearch) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	if w.cfg.APIKey == "" {
		return "", ErrSearchNotConfigured
	}

	var input webSearchInput
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("invalid web_search arguments: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", errors.New("web_search requires a non-empty query")
	}

	var result webSearchResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(webSearchRequest{
			APIKey:     w.cfg.APIKey,
			Query:      input.Query,
			MaxResults: w.cfg.MaxResults,
		}).
		SetResult(&result).
		Post("/search")
	if err != nil {
		return "", fmt.Errorf("web search request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("web search returned status %d", resp.StatusCode())
	}

	if len(result.Results) == 0 {
		return "No search results found.", nil
	}

	var b strings.Builder
	for i, r := range result.Results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Content)
	}
	return b.String(), nil
}

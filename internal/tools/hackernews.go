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
)

const hackerNewsBaseURL = "https://hn.algolia.com/api/v1"

// HackerNews searches Hacker News stories through the Algolia API, which
// needs no credentials.
type HackerNews struct {
	client *resty.Client
}

func NewHackerNews(timeout time.Duration) *HackerNews {
	client := resty.New().
		SetBaseURL(hackerNewsBaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == 429
		})

	return &HackerNews{client: client}
}

func (h *HackerNews) Name() string { return "hackernews_search" }

func (h *HackerNews) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Type: openai.F(openai.ChatCompletionToolTypeFunction),
		Function: openai.F(openai.FunctionDefinitionParam{
			Name:        openai.String("hackernews_search"),
			Description: openai.String("Search Hacker News stories and discussions for a topic. Returns titles, URLs, points and comment counts."),
			Parameters: openai.F(openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]string{
						"type":        "string",
						"description": "The search query",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of stories to return (default 5)",
					},
				},
				"required": []string{"query"},
			}),
		}),
	}
}

type hackerNewsInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type hackerNewsResponse struct {
	Hits []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Points      int    `json:"points"`
		NumComments int    `json:"num_comments"`
		ObjectID    string `json:"objectID"`
	} `json:"hits"`
}

func (h *HackerNews) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var input hackerNewsInput
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("invalid hackernews_search arguments: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", errors.New("hackernews_search requires a non-empty query")
	}
	if input.MaxResults <= 0 {
		input.MaxResults = 5
	}

	var result hackerNewsResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("query", input.Query).
		SetQueryParam("hitsPerPage", fmt.Sprintf("%d", input.MaxResults)).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return "", fmt.Errorf("hacker news request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("hacker news returned status %d", resp.StatusCode())
	}

	if len(result.Hits) == 0 {
		return "No Hacker News stories found.", nil
	}

	var b strings.Builder
	for i, hit := range result.Hits {
		url := hit.URL
		if url == "" {
			url = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}
		fmt.Fprintf(&b, "%d. %s (%d points, %d comments)\n   %s\n", i+1, hit.Title, hit.Points, hit.NumComments, url)
	}
	return b.String(), nil
}

package tools

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/openai/openai-go"
)

const arxivBaseURL = "http://export.arxiv.org/api"

// Arxiv searches the arXiv Atom API and can download paper PDFs into the
// local artifact directory.
type Arxiv struct {
	client      *resty.Client
	downloadDir string
}

func NewArxiv(timeout time.Duration, downloadDir string) *Arxiv {
	client := resty.New().
		SetBaseURL(arxivBaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == 429
		})

	return &Arxiv{client: client, downloadDir: downloadDir}
}

func (a *Arxiv) Name() string { return "arxiv_search" }

func (a *Arxiv) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Type: openai.F(openai.ChatCompletionToolTypeFunction),
		Function: openai.F(openai.FunctionDefinitionParam{
			Name:        openai.String("arxiv_search"),
			Description: openai.String("Search arXiv for academic papers on a topic. Returns titles, authors, abstracts and PDF links; can optionally download a paper PDF."),
			Parameters: openai.F(openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]string{
						"type":        "string",
						"description": "The search query",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of papers to return (default 5)",
					},
					"download_first": map[string]interface{}{
						"type":        "boolean",
						"description": "Download the first matching paper's PDF to local storage",
					},
				},
				"required": []string{"query"},
			}),
		}),
	}
}

type arxivInput struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	DownloadFirst bool   `json:"download_first"`
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	} `xml:"link"`
}

func (e arxivEntry) pdfLink() string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	return ""
}

func (a *Arxiv) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var input arxivInput
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("invalid arxiv_search arguments: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", errors.New("arxiv_search requires a non-empty query")
	}
	if input.MaxResults <= 0 {
		input.MaxResults = 5
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("search_query", "all:"+input.Query).
		SetQueryParam("max_results", fmt.Sprintf("%d", input.MaxResults)).
		Get("/query")
	if err != nil {
		return "", fmt.Errorf("arxiv request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("arxiv returned status %d", resp.StatusCode())
	}

	var feed arxivFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return "", fmt.Errorf("failed to parse arxiv response: %w", err)
	}

	if len(feed.Entries) == 0 {
		return "No arXiv papers found.", nil
	}

	var b strings.Builder
	for i, entry := range feed.Entries {
		authors := make([]string, 0, len(entry.Authors))
		for _, au := range entry.Authors {
			authors = append(authors, au.Name)
		}
		fmt.Fprintf(&b, "%d. %s\n   Authors: %s\n   Published: %s\n   %s\n",
			i+1,
			strings.TrimSpace(entry.Title),
			strings.Join(authors, ", "),
			entry.Published,
			strings.TrimSpace(entry.Summary),
		)
		if link := entry.pdfLink(); link != "" {
			fmt.Fprintf(&b, "   PDF: %s\n", link)
		}
	}

	if input.DownloadFirst {
		if path, err := a.download(ctx, feed.Entries[0]); err != nil {
			slog.Warn("failed to download arxiv paper", "error", err)
		} else {
			fmt.Fprintf(&b, "\nDownloaded first paper to %s\n", path)
		}
	}

	return b.String(), nil
}

func (a *Arxiv) download(ctx context.Context, entry arxivEntry) (string, error) {
	link := entry.pdfLink()
	if link == "" {
		return "", errors.New("entry has no PDF link")
	}

	// arXiv IDs look like http://arxiv.org/abs/2401.12345v1; the last path
	// segment is a safe filename.
	name := filepath.Base(entry.ID)
	if name == "" || name == "." {
		return "", fmt.Errorf("cannot derive filename from entry id %q", entry.ID)
	}
	path := filepath.Join(a.downloadDir, name+".pdf")

	resp, err := a.client.R().SetContext(ctx).Get(link)
	if err != nil {
		return "", fmt.Errorf("pdf download failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("pdf download returned status %d", resp.StatusCode())
	}

	if err := os.WriteFile(path, resp.Body(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	return path, nil
}

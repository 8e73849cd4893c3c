package llm

import (
	"github.com/openai/openai-go"
)

type Provider interface {
	// Chat sends one system+user exchange and returns a structured response.
	Chat(systemMessages []string, userMessages []string, opts ...Option) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	Tools       []openai.ChatCompletionToolParam
}

// ToolCallRequest is the model asking for a local tool invocation.
type ToolCallRequest struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Response is either final text content or a tool call request, never both.
type Response struct {
	Content  string
	ToolCall *ToolCallRequest
	Usage    Usage
}

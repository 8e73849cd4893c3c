package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/research-ai-mole/internal/llm"
)

// stubProvider routes every Chat call through a test-supplied handler.
type stubProvider struct {
	calls int32
	fn    func(system, user []string, o *llm.Options) (*llm.Response, error)
}

func (s *stubProvider) Chat(system, user []string, opts ...llm.Option) (*llm.Response, error) {
	atomic.AddInt32(&s.calls, 1)
	o := &llm.Options{}
	for _, opt := range opts {
		opt(o)
	}
	return s.fn(system, user, o)
}

// stubTools records invocations and returns canned output.
type stubTools struct {
	invocations int32
	output      string
	err         error
}

func (s *stubTools) Definitions(names ...string) []openai.ChatCompletionToolParam {
	defs := make([]openai.ChatCompletionToolParam, len(names))
	for i, name := range names {
		defs[i] = openai.ChatCompletionToolParam{
			Type: openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(openai.FunctionDefinitionParam{
				Name: openai.String(name),
			}),
		}
	}
	return defs
}

func (s *stubTools) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	atomic.AddInt32(&s.invocations, 1)
	return s.output, s.err
}

func contentResponse(content string, tokens int64) *llm.Response {
	return &llm.Response{Content: content, Usage: llm.Usage{TotalTokens: tokens}}
}

func toolCallResponse(name, args string) *llm.Response {
	return &llm.Response{ToolCall: &llm.ToolCallRequest{Name: name, Arguments: args}}
}

func TestRunnerImmediateAnswer(t *testing.T) {
	provider := &stubProvider{fn: func(system, user []string, o *llm.Options) (*llm.Response, error) {
		assert.Equal(t, "qwen/qwen3-32b", o.Model)
		require.Len(t, system, 1)
		assert.Contains(t, system[0], "News Analyst")
		assert.Contains(t, system[0], "Find recent news on sustainability initiatives")
		return contentResponse("## Findings\nNothing new.", 42), nil
	}}

	runner := NewRunner(provider, &stubTools{}, "qwen/qwen3-32b")
	res, err := runner.Run(context.Background(), NewsAnalyst, "green projects")
	require.NoError(t, err)

	assert.Equal(t, "## Findings\nNothing new.", res.Content)
	assert.Equal(t, 0, res.Metadata.Steps)
	assert.Equal(t, int64(42), res.Metadata.TokensUsed)
	assert.Equal(t, "qwen/qwen3-32b", res.Metadata.Model)
}

func TestRunnerExecutesToolCallThenAnswers(t *testing.T) {
	tools := &stubTools{output: "1. Story (10 points)"}

	call := 0
	provider := &stubProvider{fn: func(system, user []string, o *llm.Options) (*llm.Response, error) {
		call++
		if call == 1 {
			assert.NotEmpty(t, o.Tools, "scout should be offered its tools")
			return toolCallResponse("hackernews_search", `{"query":"urban tech"}`), nil
		}
		// the tool output must be fed back as findings
		assert.Contains(t, system[0], "1. Story (10 points)")
		return contentResponse("done", 10), nil
	}}

	runner := NewRunner(provider, tools, "m")
	res, err := runner.Run(context.Background(), InnovationsScout, "urban tech")
	require.NoError(t, err)

	assert.Equal(t, "done", res.Content)
	assert.Equal(t, 1, res.Metadata.Steps)
	assert.Equal(t, int32(1), tools.invocations)
}

func TestRunnerReusesIdenticalToolCalls(t *testing.T) {
	tools := &stubTools{output: "results"}

	call := 0
	provider := &stubProvider{fn: func(system, user []string, o *llm.Options) (*llm.Response, error) {
		call++
		if call <= 2 {
			return toolCallResponse("web_search", `{"query":"same"}`), nil
		}
		return contentResponse("final", 0), nil
	}}

	runner := NewRunner(provider, tools, "m")
	res, err := runner.Run(context.Background(), NewsAnalyst, "topic")
	require.NoError(t, err)

	assert.Equal(t, "final", res.Content)
	assert.Equal(t, 2, res.Metadata.Steps)
	assert.Equal(t, int32(1), tools.invocations, "identical calls should reuse prior output")
}

func TestRunnerToolErrorIsFedBack(t *testing.T) {
	tools := &stubTools{err: errors.New("boom")}

	call := 0
	provider := &stubProvider{fn: func(system, user []string, o *llm.Options) (*llm.Response, error) {
		call++
		if call == 1 {
			return toolCallResponse("web_search", `{"query":"q"}`), nil
		}
		assert.Contains(t, system[0], "tool error: boom")
		return contentResponse("recovered", 0), nil
	}}

	runner := NewRunner(provider, tools, "m")
	res, err := runner.Run(context.Background(), PolicyReviewer, "policies")
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Content)
}

func TestRunnerMaxStepsForcesFinalSummary(t *testing.T) {
	tools := &stubTools{output: "more data"}

	call := 0
	provider := &stubProvider{fn: func(system, user []string, o *llm.Options) (*llm.Response, error) {
		call++
		if call <= MaxSteps {
			return toolCallResponse("web_search", fmt.Sprintf(`{"query":"q%d"}`, call)), nil
		}
		assert.Contains(t, system[0], "maximum steps")
		assert.Empty(t, o.Tools, "summary round must not offer tools")
		return contentResponse("forced summary", 7), nil
	}}

	runner := NewRunner(provider, tools, "m")
	res, err := runner.Run(context.Background(), NewsAnalyst, "topic")
	require.NoError(t, err)

	assert.Equal(t, "forced summary", res.Content)
	assert.Equal(t, MaxSteps, res.Metadata.Steps)
	assert.Equal(t, int32(MaxSteps), tools.invocations)
}

func TestRunnerPropagatesProviderError(t *testing.T) {
	provider := &stubProvider{fn: func(system, user []string, o *llm.Options) (*llm.Response, error) {
		return nil, errors.New("rate limit exceeded")
	}}

	runner := NewRunner(provider, &stubTools{}, "m")
	_, err := runner.Run(context.Background(), NewsAnalyst, "topic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "News Analyst")
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestRunnerDataAnalystGetsNoTools(t *testing.T) {
	provider := &stubProvider{fn: func(system, user []string, o *llm.Options) (*llm.Response, error) {
		assert.Empty(t, o.Tools)
		return contentResponse("analysis", 0), nil
	}}

	runner := NewRunner(provider, &stubTools{}, "m")
	_, err := runner.Run(context.Background(), DataAnalyst, "Dataset shape: ...")
	require.NoError(t, err)
}

func TestSummarizeFindings(t *testing.T) {
	assert.Equal(t, "No previous findings.", summarizeFindings(nil))

	out := summarizeFindings([]stepData{
		{StepNumber: 1, ToolName: "web_search", Arguments: json.RawMessage(`{"query":"x"}`), Output: "hits"},
	})
	assert.True(t, strings.Contains(out, "web_search"))
	assert.True(t, strings.Contains(out, "hits"))
}

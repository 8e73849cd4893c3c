package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"

	"github.com/sozercan/research-ai-mole/internal/llm"
	"github.com/sozercan/research-ai-mole/internal/tools"
)

const MaxSteps = 5

const systemPromptTemplate = `You are %s, an AI research agent.
Your role: %s
Instructions: %s

You may have access to functions (tools) that gather additional information.
When you need more information, call a function instead of making assumptions.
After you've gathered enough information, provide a final answer in markdown.

!!!IMPORTANT NOTE!!!: Do not repeat function calls with the same arguments if the results are already known.
If no new information is available, proceed to the final answer.`

// Result is the outcome of one dispatch: the agent's markdown answer plus
// bookkeeping about how it was produced.
type Result struct {
	Content  string
	Metadata Metadata
}

type Metadata struct {
	Duration   time.Duration
	Model      string
	TokensUsed int64
	Steps      int
}

type stepData struct {
	StepNumber int
	ToolName   string
	Arguments  json.RawMessage
	Output     string
}

type agentState struct {
	Steps        int
	GatheredData []stepData
}

// ToolSource resolves tool names to definitions and executes tool calls.
// *tools.Registry is the production implementation.
type ToolSource interface {
	Definitions(names ...string) []openai.ChatCompletionToolParam
	Invoke(ctx context.Context, name string, args json.RawMessage) (string, error)
}

var _ ToolSource = (*tools.Registry)(nil)

// Runner dispatches topics to agent configurations. One Runner serves all
// five choices.
type Runner struct {
	provider llm.Provider
	registry ToolSource
	model    string
}

func NewRunner(provider llm.Provider, registry ToolSource, defaultModel string) *Runner {
	return &Runner{
		provider: provider,
		registry: registry,
		model:    defaultModel,
	}
}

// Run dispatches the input to the chosen agent. The Team choice fans out to
// all members and moderates a consensus; every other choice runs exactly one
// agent.
func (r *Runner) Run(ctx context.Context, choice Choice, input string) (*Result, error) {
	if choice == Team {
		return r.runTeam(ctx, input)
	}
	return r.runAgent(ctx, choice.Descriptor(), input)
}

func (r *Runner) runAgent(ctx context.Context, desc Descriptor, input string) (*Result, error) {
	slog.Info("starting agent run", "agent", desc.Name)
	startTime := time.Now()

	model := desc.Model
	if model == "" {
		model = r.model
	}

	state := &agentState{GatheredData: make([]stepData, 0)}
	toolDefs := r.registry.Definitions(desc.Tools...)

	var tokensUsed int64
	for state.Steps < MaxSteps {
		systemContent := fmt.Sprintf(
			"%s\n\nCurrent step: %d/%d\nPrevious findings:\n%s",
			fmt.Sprintf(systemPromptTemplate, desc.Name, desc.Role, desc.Instructions),
			state.Steps+1, MaxSteps, summarizeFindings(state.GatheredData),
		)

		resp, err := r.provider.Chat(
			[]string{systemContent},
			[]string{input},
			llm.Option(func(o *llm.Options) {
				o.Model = model
				o.Tools = toolDefs
			}),
		)
		if err != nil {
			slog.Error("agent call failed", "agent", desc.Name, "error", err)
			return nil, fmt.Errorf("agent %s failed: %w", desc.Name, err)
		}
		tokensUsed += resp.Usage.TotalTokens

		if resp.ToolCall == nil {
			slog.Info("agent produced final answer", "agent", desc.Name, "steps", state.Steps)
			return &Result{
				Content: resp.Content,
				Metadata: Metadata{
					Duration:   time.Since(startTime),
					Model:      model,
					TokensUsed: tokensUsed,
					Steps:      state.Steps,
				},
			}, nil
		}

		r.handleToolCall(ctx, desc, state, resp.ToolCall)
	}

	// out of steps; force a final answer without tools
	return r.finalSummary(startTime, desc, model, input, state, tokensUsed)
}

func (r *Runner) handleToolCall(ctx context.Context, desc Descriptor, state *agentState, call *llm.ToolCallRequest) {
	args := json.RawMessage(call.Arguments)

	// identical repeated calls reuse the recorded output
	for _, sd := range state.GatheredData {
		if sd.ToolName == call.Name && jsonEqual(sd.Arguments, args) {
			slog.Debug("reusing prior tool output", "tool", call.Name)
			state.GatheredData = append(state.GatheredData, stepData{
				StepNumber: state.Steps + 1,
				ToolName:   call.Name,
				Arguments:  args,
				Output:     sd.Output,
			})
			state.Steps++
			return
		}
	}

	slog.Info("executing tool call", "agent", desc.Name, "tool", call.Name)
	output, err := r.registry.Invoke(ctx, call.Name, args)
	if err != nil {
		// surface the failure to the model so it can route around it
		output = fmt.Sprintf("tool error: %v", err)
		slog.Warn("tool invocation failed", "tool", call.Name, "error", err)
	}

	state.GatheredData = append(state.GatheredData, stepData{
		StepNumber: state.Steps + 1,
		ToolName:   call.Name,
		Arguments:  args,
		Output:     output,
	})
	state.Steps++
}

func (r *Runner) finalSummary(startTime time.Time, desc Descriptor, model, input string, state *agentState, tokensUsed int64) (*Result, error) {
	systemContent := fmt.Sprintf(`You are %s. You have reached the maximum steps (%d). Provide a final answer now.
Original request: %s

Previous findings:
%s

Provide a truthful, concise final answer in markdown that reflects all the data discovered.`,
		desc.Name, MaxSteps, input, summarizeFindings(state.GatheredData))

	resp, err := r.provider.Chat(
		[]string{systemContent},
		[]string{""},
		llm.Option(func(o *llm.Options) {
			o.Model = model
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate final summary: %w", err)
	}
	tokensUsed += resp.Usage.TotalTokens

	return &Result{
		Content: resp.Content,
		Metadata: Metadata{
			Duration:   time.Since(startTime),
			Model:      model,
			TokensUsed: tokensUsed,
			Steps:      state.Steps,
		},
	}, nil
}

func summarizeFindings(data []stepData) string {
	if len(data) == 0 {
		return "No previous findings."
	}
	summary := ""
	for _, step := range data {
		summary += fmt.Sprintf("Step %d:\n  Tool: %s\n  Arguments: %s\n  Output: %s\n\n",
			step.StepNumber, step.ToolName, string(step.Arguments), step.Output)
	}
	return summary
}

func jsonEqual(a, b json.RawMessage) bool {
	var ja, jb interface{}
	_ = json.Unmarshal(a, &ja)
	_ = json.Unmarshal(b, &jb)
	return fmt.Sprintf("%v", ja) == fmt.Sprintf("%v", jb)
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/sozercan/research-ai-mole/internal/config"
)

const maxToolOutput = 5000

// Tool is a local capability exposed to the model as a callable function.
type Tool interface {
	Name() string
	Definition() openai.ChatCompletionToolParam
	Invoke(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds every tool the service knows about. Agents reference tools
// by name; the registry resolves names to definitions and invokers.
type Registry struct {
	byName map[string]Tool
}

func NewRegistry(searchCfg *config.SearchConfig, artifactDir string) *Registry {
	r := &Registry{byName: map[string]Tool{}}
	r.register(NewWebSearch(searchCfg))
	r.register(NewHackerNews(searchCfg.Timeout))
	r.register(NewArxiv(searchCfg.Timeout, artifactDir))
	return r
}

func (r *Registry) register(t Tool) {
	r.byName[t.Name()] = t
}

// Definitions resolves tool names to their OpenAI definitions. Unknown names
// are skipped with a log line so a bad agent descriptor degrades instead of
// breaking dispatch.
func (r *Registry) Definitions(names ...string) []openai.ChatCompletionToolParam {
	defs := make([]openai.ChatCompletionToolParam, 0, len(names))
	for _, name := range names {
		t, ok := r.byName[name]
		if !ok {
			slog.Warn("unknown tool referenced by agent descriptor", "tool", name)
			continue
		}
		defs = append(defs, t.Definition())
	}
	return defs
}

func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	out, err := t.Invoke(ctx, args)
	if err != nil {
		return "", err
	}
	return truncate(out, maxToolOutput), nil
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "\n[truncated]"
	}
	return s
}

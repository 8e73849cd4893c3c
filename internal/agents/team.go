package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sozercan/research-ai-mole/internal/llm"
)

// runTeam runs every member agent concurrently on the same topic, then has a
// moderator synthesize the member answers into a consensus. A failed member
// becomes a noted gap rather than a dispatch failure, as long as at least one
// member answered.
func (r *Runner) runTeam(ctx context.Context, input string) (*Result, error) {
	slog.Info("starting team run", "members", len(teamMembers))
	startTime := time.Now()

	type memberResult struct {
		name    string
		content string
		err     error
		tokens  int64
		steps   int
	}

	// each goroutine writes its own slot, so no lock is needed
	results := make([]memberResult, len(teamMembers))

	g, gctx := errgroup.WithContext(ctx)
	for i, member := range teamMembers {
		i, member := i, member
		g.Go(func() error {
			desc := member.Descriptor()
			res, err := r.runAgent(gctx, desc, input)
			if err != nil {
				results[i] = memberResult{name: desc.Name, err: err}
				return nil // member failures are tolerated here
			}
			results[i] = memberResult{
				name:    desc.Name,
				content: res.Content,
				tokens:  res.Metadata.TokensUsed,
				steps:   res.Metadata.Steps,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var transcript strings.Builder
	succeeded := 0
	var tokensUsed int64
	steps := 0
	for _, mr := range results {
		if mr.err != nil {
			fmt.Fprintf(&transcript, "### %s\n(could not contribute: %v)\n\n", mr.name, mr.err)
			continue
		}
		succeeded++
		tokensUsed += mr.tokens
		steps += mr.steps
		fmt.Fprintf(&transcript, "### %s\n%s\n\n", mr.name, mr.content)
	}
	if succeeded == 0 {
		return nil, errors.New("all team members failed")
	}

	moderator := Team.Descriptor()
	systemContent := fmt.Sprintf(`You are the moderator of a research discussion team.
%s

Each team member has contributed an answer to the topic below. Review the
contributions, reconcile disagreements, and produce a single consensus answer
in markdown. Credit notable member insights where relevant.

Topic: %s

Member contributions:
%s`, moderator.Instructions, input, transcript.String())

	resp, err := r.provider.Chat(
		[]string{systemContent},
		[]string{""},
		llm.Option(func(o *llm.Options) {
			o.Model = r.model
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("team moderation failed: %w", err)
	}
	tokensUsed += resp.Usage.TotalTokens

	slog.Info("team run complete", "succeeded", succeeded, "duration", time.Since(startTime))
	return &Result{
		Content: resp.Content,
		Metadata: Metadata{
			Duration:   time.Since(startTime),
			Model:      r.model,
			TokensUsed: tokensUsed,
			Steps:      steps + 1,
		},
	}, nil
}

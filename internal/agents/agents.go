package agents

import (
	"fmt"
)

// Choice identifies one of the five dispatchable agent configurations.
type Choice int

const (
	NewsAnalyst Choice = iota
	DataAnalyst
	PolicyReviewer
	InnovationsScout
	Team
)

// Descriptor is a static agent configuration: who the agent is, which model
// answers for it, which tools it may call, and its standing instructions.
// Constructed once at startup and never mutated.
type Descriptor struct {
	Name         string
	Role         string
	Model        string // empty means the configured default
	Tools        []string
	Instructions string
}

var choiceIDs = map[Choice]string{
	NewsAnalyst:      "news_analyst",
	DataAnalyst:      "data_analyst",
	PolicyReviewer:   "policy_reviewer",
	InnovationsScout: "innovations_scout",
	Team:             "team",
}

var descriptors = map[Choice]Descriptor{
	NewsAnalyst: {
		Name:         "News Analyst",
		Role:         "Find recent news on sustainability initiatives",
		Tools:        []string{"web_search"},
		Instructions: "Search for city-level green projects in the past year",
	},
	DataAnalyst: {
		Name: "Data Analyst",
		Role: "Analyze uploaded CSV datasets using comprehensive data analysis",
		Instructions: `Analyze uploaded CSV data using the provided dataset context.

When analyzing data:
1. Use the comprehensive dataset information provided in the context
2. Provide detailed statistical analysis and insights
3. Identify trends, patterns, and correlations in the data
4. Detect anomalies, outliers, and data quality issues
5. Suggest actionable recommendations based on findings
6. Use markdown formatting for clear presentation with tables and lists

Focus on providing thorough data analysis with practical insights and recommendations.`,
	},
	PolicyReviewer: {
		Name:         "Policy Reviewer",
		Role:         "Summarize government policies",
		Tools:        []string{"web_search"},
		Instructions: "Search official sites for city policy updates",
	},
	InnovationsScout: {
		Name:         "Innovations Scout",
		Role:         "Find innovative green tech ideas",
		Tools:        []string{"web_search", "hackernews_search", "arxiv_search"},
		Instructions: `Search for "urban sustainability tech"`,
	},
	Team: {
		Name:         "Discussion Team",
		Role:         "Collaborative research discussion across all agents",
		Instructions: "You are a discussion master. Stop when consensus is reached.",
	},
}

// teamMembers are the agents invoked together under the Team choice.
var teamMembers = []Choice{NewsAnalyst, DataAnalyst, PolicyReviewer, InnovationsScout}

func (c Choice) ID() string {
	return choiceIDs[c]
}

func (c Choice) Descriptor() Descriptor {
	return descriptors[c]
}

// ParseChoice maps a wire identifier to its Choice; only the five configured
// identities are reachable.
func ParseChoice(id string) (Choice, error) {
	for c, cid := range choiceIDs {
		if cid == id {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown agent choice: %q", id)
}

// Choices lists all dispatchable identities in presentation order.
func Choices() []Choice {
	return []Choice{NewsAnalyst, DataAnalyst, PolicyReviewer, InnovationsScout, Team}
}

package agents

import (
	"strings"
)

// Hint pattern-matches a dispatch error for known failure wording and returns
// generic remediation advice, or "" when nothing matches.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "tool call validation failed"):
		return "Tip: This might be a tool configuration issue. Try using a different agent."
	case strings.Contains(msg, "rate limit"):
		return "Tip: Rate limit reached. Please wait a moment and try again."
	}
	return ""
}

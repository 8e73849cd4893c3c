package apimodels

// ResearchResponse is a successful dispatch: the agent's markdown answer
// plus metadata about how it was produced.
type ResearchResponse struct {
	Result   string           `json:"result"`
	Metadata ResearchMetadata `json:"metadata"`
}

type ResearchMetadata struct {
	// Time taken for the dispatch
	Duration string `json:"duration"`

	// Model used to answer
	Model string `json:"model"`

	// Tokens used across all rounds
	TokensUsed int64 `json:"tokensUsed"`

	// Tool-calling steps taken
	Steps int `json:"steps"`
}

// ErrorResponse is an inline user-facing failure. Hint carries generic
// remediation advice when the error wording matches a known pattern.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// AgentInfo describes one selectable agent for the UI.
type AgentInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Tools           []string `json:"tools,omitempty"`
	RequiresDataset bool     `json:"requiresDataset"`
}

// UploadResponse confirms a stored dataset and previews its contents.
type UploadResponse struct {
	Message     string     `json:"message"`
	Path        string     `json:"path"`
	Rows        int        `json:"rows"`
	Columns     int        `json:"columns"`
	ColumnNames []string   `json:"columnNames"`
	Preview     [][]string `json:"preview,omitempty"`
}

package llm

// ChatRequest is a provider-agnostic streaming chat request. Provider
// adapters encode it into their own wire format.
type ChatRequest struct {
	// Model name (e.g., "gpt-4o-mini", "claude-sonnet-4-5", "llama3.1")
	Model string `json:"model"`

	// System prompt. Adapters place it where their API expects it.
	System string `json:"system,omitempty"`

	// Conversation messages, excluding the system prompt.
	Messages []Message `json:"messages"`

	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`

	// JSON asks the provider to constrain output to a JSON object where the
	// API supports it.
	JSON bool `json:"json,omitempty"`
}

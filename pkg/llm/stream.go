package llm

import "time"

// StreamFormat is the framing a provider uses for streamed responses.
type StreamFormat string

const (
	// StreamSSE is text/event-stream framing (OpenAI, Anthropic).
	StreamSSE StreamFormat = "sse"

	// StreamNDJSON is newline-delimited JSON framing (Ollama).
	StreamNDJSON StreamFormat = "ndjson"
)

// StreamChunk is a single decoded chunk of a streamed response.
type StreamChunk struct {
	// Model that generated the chunk
	Model string `json:"model"`

	// Chunk timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// The content of this chunk (typically a partial message)
	Message Message `json:"message"`

	// Whether this is the final chunk
	Done bool `json:"done"`

	// Stop reason (only present on final chunk)
	StopReason string `json:"stop_reason,omitempty"`

	// Usage metrics (typically only present on final chunk)
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Timing (Ollama), in nanoseconds
	TotalDurationNs int64 `json:"total_duration_ns,omitempty"`
}

// APIError is an error reported by the provider, either as a non-2xx
// response or as an error event inside the stream.
type APIError struct {
	// StatusCode is the HTTP status, or zero for in-stream errors.
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

package provider

import (
	"errors"
	"net/http"

	"github.com/papercomputeco/quizpaper/pkg/llm"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown provider")

// Provider adapts one model API to the streaming contract quizpaper needs:
// build a streaming request, decode each streamed chunk into text, and
// surface provider errors verbatim.
type Provider interface {
	// Name returns the canonical provider name (e.g., "anthropic", "openai", "ollama")
	Name() string

	// DefaultUpstream returns the base URL used when none is configured.
	DefaultUpstream() string

	// Endpoint returns the path of the streaming chat endpoint.
	Endpoint() string

	// StreamFormat returns how the streamed response is framed.
	StreamFormat() llm.StreamFormat

	// BuildRequest encodes req as a streaming request body.
	BuildRequest(req *llm.ChatRequest) ([]byte, error)

	// SetHeaders sets authentication and API version headers.
	SetHeaders(h http.Header, apiKey string)

	// ParseStreamChunk decodes one SSE data payload or NDJSON line.
	// Returns (nil, nil) if the chunk carries nothing of interest (e.g., pings).
	// An error reported inside the stream is returned as *llm.APIError.
	ParseStreamChunk(payload []byte) (*llm.StreamChunk, error)

	// ParseError extracts the provider's error message from the body of a
	// non-2xx response.
	ParseError(status int, body []byte) *llm.APIError
}

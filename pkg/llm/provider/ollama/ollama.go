package ollama

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/papercomputeco/quizpaper/pkg/llm"
)

// provider implements the Provider interface for Ollama's API.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "ollama"
}

func (o *provider) DefaultUpstream() string {
	return "http://localhost:11434"
}

func (o *provider) Endpoint() string {
	return "/api/chat"
}

func (o *provider) StreamFormat() llm.StreamFormat {
	return llm.StreamNDJSON
}

func (o *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	messages := make([]ollamaMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: llm.RoleSystem, Content: req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage{Role: msg.Role, Content: msg.GetText()})
	}

	out := ollamaRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   true,
	}
	if req.JSON {
		out.Format = "json"
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		out.Options = &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}

	return json.Marshal(out)
}

func (o *provider) SetHeaders(h http.Header, apiKey string) {
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/x-ndjson")

	// Local Ollama has no auth; hosted instances behind a proxy often use a
	// bearer token.
	if apiKey != "" {
		h.Set("Authorization", "Bearer "+apiKey)
	}
}

func (o *provider) ParseStreamChunk(payload []byte) (*llm.StreamChunk, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &llm.APIError{Message: resp.Error}
	}

	chunk := &llm.StreamChunk{
		Model:     resp.Model,
		CreatedAt: resp.CreatedAt,
		Message:   llm.Message{Role: resp.Message.Role},
		Done:      resp.Done,
	}
	if resp.Message.Content != "" {
		chunk.Message.Content = []llm.ContentBlock{{Type: "text", Text: resp.Message.Content}}
	}

	if resp.Done {
		chunk.StopReason = resp.DoneReason
		if chunk.StopReason == "" {
			chunk.StopReason = "stop"
		}
		chunk.Usage = &llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			TotalDurationNs:  resp.TotalDuration,
		}
	}

	return chunk, nil
}

func (o *provider) ParseError(status int, body []byte) *llm.APIError {
	apiErr := &llm.APIError{StatusCode: status}

	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		apiErr.Message = resp.Error
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

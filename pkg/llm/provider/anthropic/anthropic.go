// Package anthropic adapts Anthropic's Messages streaming API.
package anthropic

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/papercomputeco/quizpaper/pkg/llm"
)

const (
	// APIVersion is sent in the anthropic-version header.
	APIVersion = "2023-06-01"

	// DefaultMaxTokens is used when the request sets no limit; the API
	// requires one.
	DefaultMaxTokens = 8192
)

// provider implements the Provider interface for Anthropic's Claude API.
type provider struct{}

func New() *provider { return &provider{} }

func (p *provider) Name() string {
	return "anthropic"
}

func (p *provider) DefaultUpstream() string {
	return "https://api.anthropic.com"
}

func (p *provider) Endpoint() string {
	return "/v1/messages"
}

func (p *provider) StreamFormat() llm.StreamFormat {
	return llm.StreamSSE
}

func (p *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	messages := make([]anthropicMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		converted := anthropicMessage{Role: msg.Role}
		for _, block := range msg.Content {
			if block.Type == "text" {
				converted.Content = append(converted.Content, anthropicContentBlock{Type: "text", Text: block.Text})
			}
		}
		messages = append(messages, converted)
	}

	maxTokens := DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	// The messages API has no JSON mode; the prompt asks for JSON instead.
	return json.Marshal(anthropicRequest{
		Model:       req.Model,
		Messages:    messages,
		System:      req.System,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      true,
	})
}

func (p *provider) SetHeaders(h http.Header, apiKey string) {
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "text/event-stream")
	h.Set("anthropic-version", APIVersion)
	if apiKey != "" {
		h.Set("x-api-key", apiKey)
	}
}

func (p *provider) ParseStreamChunk(payload []byte) (*llm.StreamChunk, error) {
	var ev anthropicStreamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}

	switch ev.Type {
	case "message_start":
		chunk := &llm.StreamChunk{Message: llm.Message{Role: llm.RoleAssistant}}
		if ev.Message != nil {
			chunk.Model = ev.Message.Model
			if ev.Message.Usage != nil {
				chunk.Usage = &llm.Usage{PromptTokens: ev.Message.Usage.InputTokens}
			}
		}
		return chunk, nil

	case "content_block_delta":
		if ev.Delta == nil || ev.Delta.Type != "text_delta" {
			return nil, nil
		}
		return &llm.StreamChunk{
			Message: llm.Message{
				Role:    llm.RoleAssistant,
				Content: []llm.ContentBlock{{Type: "text", Text: ev.Delta.Text}},
			},
		}, nil

	case "message_delta":
		chunk := &llm.StreamChunk{Message: llm.Message{Role: llm.RoleAssistant}}
		if ev.Delta != nil {
			chunk.StopReason = ev.Delta.StopReason
		}
		if ev.Usage != nil {
			chunk.Usage = &llm.Usage{CompletionTokens: ev.Usage.OutputTokens}
		}
		return chunk, nil

	case "message_stop":
		return &llm.StreamChunk{Done: true}, nil

	case "error":
		apiErr := &llm.APIError{Message: "stream error"}
		if ev.Error != nil {
			apiErr.Type = ev.Error.Type
			apiErr.Message = ev.Error.Message
		}
		return nil, apiErr

	default:
		// ping, content_block_start, content_block_stop
		return nil, nil
	}
}

func (p *provider) ParseError(status int, body []byte) *llm.APIError {
	apiErr := &llm.APIError{StatusCode: status}

	var resp anthropicErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != nil && resp.Error.Message != "" {
		apiErr.Type = resp.Error.Type
		apiErr.Message = resp.Error.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

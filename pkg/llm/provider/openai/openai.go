// Package openai adapts OpenAI's Chat Completions streaming API.
package openai

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/quizpaper/pkg/llm"
)

// doneSentinel terminates an OpenAI SSE stream.
const doneSentinel = "[DONE]"

// provider implements the Provider interface for OpenAI's Chat Completions API.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "openai"
}

func (o *provider) DefaultUpstream() string {
	return "https://api.openai.com"
}

func (o *provider) Endpoint() string {
	return "/v1/chat/completions"
}

func (o *provider) StreamFormat() llm.StreamFormat {
	return llm.StreamSSE
}

func (o *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	messages := make([]openaiMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openaiMessage{Role: llm.RoleSystem, Content: req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openaiMessage{Role: msg.Role, Content: msg.GetText()})
	}

	out := openaiRequest{
		Model:         req.Model,
		Messages:      messages,
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}
	if req.JSON {
		out.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	return json.Marshal(out)
}

func (o *provider) SetHeaders(h http.Header, apiKey string) {
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "text/event-stream")
	if apiKey != "" {
		h.Set("Authorization", "Bearer "+apiKey)
	}
}

func (o *provider) ParseStreamChunk(payload []byte) (*llm.StreamChunk, error) {
	data := bytes.TrimSpace(payload)
	if len(data) == 0 {
		return nil, nil
	}
	if string(data) == doneSentinel {
		return &llm.StreamChunk{Done: true}, nil
	}

	var chunk openaiStreamChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, err
	}
	if chunk.Error != nil {
		return nil, &llm.APIError{Type: chunk.Error.Type, Message: chunk.Error.Message}
	}

	result := &llm.StreamChunk{
		Model:   chunk.Model,
		Message: llm.Message{Role: llm.RoleAssistant},
	}
	if chunk.Created != 0 {
		result.CreatedAt = time.Unix(chunk.Created, 0)
	}

	// Only the first choice is requested.
	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			result.Message.Content = []llm.ContentBlock{{Type: "text", Text: choice.Delta.Content}}
		}
		if choice.FinishReason != nil {
			result.StopReason = *choice.FinishReason
		}
	}

	if chunk.Usage != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}

	return result, nil
}

func (o *provider) ParseError(status int, body []byte) *llm.APIError {
	apiErr := &llm.APIError{StatusCode: status}

	var resp openaiErrorResponse
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

package openai_test

import (
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/llm"
	"github.com/papercomputeco/quizpaper/pkg/llm/provider"
	"github.com/papercomputeco/quizpaper/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = openai.New()
	})

	Describe("Name", func() {
		It("returns 'openai'", func() {
			Expect(p.Name()).To(Equal("openai"))
		})
	})

	Describe("endpoint", func() {
		It("streams chat completions over SSE", func() {
			Expect(p.DefaultUpstream()).To(Equal("https://api.openai.com"))
			Expect(p.Endpoint()).To(Equal("/v1/chat/completions"))
			Expect(p.StreamFormat()).To(Equal(llm.StreamSSE))
		})
	})

	Describe("BuildRequest", func() {
		It("puts the system prompt first and asks for a JSON object", func() {
			temp := 0.7
			body, err := p.BuildRequest(&llm.ChatRequest{
				Model:       "gpt-4o-mini",
				System:      "You write quiz papers.",
				Messages:    []llm.Message{llm.NewTextMessage(llm.RoleUser, "Theme: travel")},
				Temperature: &temp,
				JSON:        true,
			})
			Expect(err).NotTo(HaveOccurred())

			var decoded map[string]any
			Expect(json.Unmarshal(body, &decoded)).To(Succeed())
			Expect(decoded["model"]).To(Equal("gpt-4o-mini"))
			Expect(decoded["stream"]).To(BeTrue())
			Expect(decoded["temperature"]).To(BeNumerically("~", 0.7))
			Expect(decoded["response_format"]).To(Equal(map[string]any{"type": "json_object"}))

			messages := decoded["messages"].([]any)
			Expect(messages).To(HaveLen(2))
			Expect(messages[0]).To(Equal(map[string]any{"role": "system", "content": "You write quiz papers."}))
			Expect(messages[1]).To(Equal(map[string]any{"role": "user", "content": "Theme: travel"}))
		})

		It("omits the response format when JSON is not requested", func() {
			body, err := p.BuildRequest(&llm.ChatRequest{Model: "gpt-4o"})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).NotTo(ContainSubstring("response_format"))
			Expect(string(body)).NotTo(ContainSubstring("max_tokens"))
		})
	})

	Describe("SetHeaders", func() {
		It("sets a bearer token", func() {
			h := http.Header{}
			p.SetHeaders(h, "sk-test")
			Expect(h.Get("Authorization")).To(Equal("Bearer sk-test"))
			Expect(h.Get("Content-Type")).To(Equal("application/json"))
		})

		It("omits authorization without a key", func() {
			h := http.Header{}
			p.SetHeaders(h, "")
			Expect(h.Get("Authorization")).To(BeEmpty())
		})
	})

	Describe("ParseStreamChunk", func() {
		It("extracts delta content", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1700000000,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"{\"title\""},"finish_reason":null}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Model).To(Equal("gpt-4o-mini"))
			Expect(chunk.Message.GetText()).To(Equal(`{"title"`))
			Expect(chunk.Done).To(BeFalse())
			Expect(chunk.StopReason).To(BeEmpty())
		})

		It("reports the finish reason", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.StopReason).To(Equal("stop"))
			Expect(chunk.Message.GetText()).To(BeEmpty())
		})

		It("reads usage from the final chunk", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"choices":[],"usage":{"prompt_tokens":12,"completion_tokens":340,"total_tokens":352}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Usage).To(Equal(&llm.Usage{PromptTokens: 12, CompletionTokens: 340, TotalTokens: 352}))
		})

		It("marks the [DONE] sentinel as done", func() {
			chunk, err := p.ParseStreamChunk([]byte("[DONE]"))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Done).To(BeTrue())
		})

		It("skips empty payloads", func() {
			chunk, err := p.ParseStreamChunk([]byte("  "))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk).To(BeNil())
		})

		It("returns in-stream errors as APIError", func() {
			_, err := p.ParseStreamChunk([]byte(`{"error":{"message":"The server had an error","type":"server_error"}}`))
			var apiErr *llm.APIError
			Expect(err).To(BeAssignableToTypeOf(apiErr))
			Expect(err).To(MatchError("The server had an error"))
		})

		It("fails on invalid JSON", func() {
			_, err := p.ParseStreamChunk([]byte(`{"choices":`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParseError", func() {
		It("uses the error message from the body", func() {
			apiErr := p.ParseError(401, []byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
			Expect(apiErr.StatusCode).To(Equal(401))
			Expect(apiErr.Message).To(Equal("Incorrect API key provided"))
			Expect(apiErr.Type).To(Equal("invalid_request_error"))
		})

		It("falls back to the raw body", func() {
			Expect(p.ParseError(502, []byte("bad gateway\n")).Message).To(Equal("bad gateway"))
		})

		It("falls back to the status text", func() {
			Expect(p.ParseError(503, nil).Message).To(Equal("Service Unavailable"))
		})
	})
})

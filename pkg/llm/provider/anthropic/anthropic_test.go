package anthropic_test

import (
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/llm"
	"github.com/papercomputeco/quizpaper/pkg/llm/provider"
	"github.com/papercomputeco/quizpaper/pkg/llm/provider/anthropic"
)

var _ = Describe("Anthropic Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = anthropic.New()
	})

	Describe("Name", func() {
		It("returns 'anthropic'", func() {
			Expect(p.Name()).To(Equal("anthropic"))
		})
	})

	Describe("endpoint", func() {
		It("streams messages over SSE", func() {
			Expect(p.DefaultUpstream()).To(Equal("https://api.anthropic.com"))
			Expect(p.Endpoint()).To(Equal("/v1/messages"))
			Expect(p.StreamFormat()).To(Equal(llm.StreamSSE))
		})
	})

	Describe("BuildRequest", func() {
		It("keeps the system prompt top level", func() {
			body, err := p.BuildRequest(&llm.ChatRequest{
				Model:    "claude-sonnet-4-5",
				System:   "You write quiz papers.",
				Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "Theme: food")},
				JSON:     true,
			})
			Expect(err).NotTo(HaveOccurred())

			var decoded map[string]any
			Expect(json.Unmarshal(body, &decoded)).To(Succeed())
			Expect(decoded["system"]).To(Equal("You write quiz papers."))
			Expect(decoded["stream"]).To(BeTrue())
			Expect(decoded["max_tokens"]).To(BeNumerically("==", anthropic.DefaultMaxTokens))

			messages := decoded["messages"].([]any)
			Expect(messages).To(HaveLen(1))
			Expect(messages[0]).To(Equal(map[string]any{
				"role":    "user",
				"content": []any{map[string]any{"type": "text", "text": "Theme: food"}},
			}))
		})

		It("honours an explicit token limit", func() {
			limit := 1024
			body, err := p.BuildRequest(&llm.ChatRequest{Model: "claude-haiku-4-5", MaxTokens: &limit})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"max_tokens":1024`))
		})
	})

	Describe("SetHeaders", func() {
		It("sets the key and API version", func() {
			h := http.Header{}
			p.SetHeaders(h, "sk-ant-test")
			Expect(h.Get("x-api-key")).To(Equal("sk-ant-test"))
			Expect(h.Get("anthropic-version")).To(Equal(anthropic.APIVersion))
			Expect(h.Get("Authorization")).To(BeEmpty())
		})
	})

	Describe("ParseStreamChunk", func() {
		It("reads the model and input tokens from message_start", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"type":"message_start","message":{"id":"msg_1","model":"claude-sonnet-4-5","usage":{"input_tokens":25,"output_tokens":1}}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Model).To(Equal("claude-sonnet-4-5"))
			Expect(chunk.Usage.PromptTokens).To(Equal(25))
			Expect(chunk.Message.GetText()).To(BeEmpty())
		})

		It("extracts text deltas", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"{\"title\": "}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Message.GetText()).To(Equal(`{"title": `))
		})

		It("skips non-text deltas", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk).To(BeNil())
		})

		It("reads the stop reason and output tokens from message_delta", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":512}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.StopReason).To(Equal("end_turn"))
			Expect(chunk.Usage.CompletionTokens).To(Equal(512))
		})

		It("marks message_stop as done", func() {
			chunk, err := p.ParseStreamChunk([]byte(`{"type":"message_stop"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Done).To(BeTrue())
		})

		It("skips pings and block boundaries", func() {
			for _, payload := range []string{
				`{"type":"ping"}`,
				`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
				`{"type":"content_block_stop","index":0}`,
			} {
				chunk, err := p.ParseStreamChunk([]byte(payload))
				Expect(err).NotTo(HaveOccurred())
				Expect(chunk).To(BeNil())
			}
		})

		It("returns error events verbatim", func() {
			_, err := p.ParseStreamChunk([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			var apiErr *llm.APIError
			Expect(err).To(BeAssignableToTypeOf(apiErr))
			Expect(err).To(MatchError("Overloaded"))
		})
	})

	Describe("ParseError", func() {
		It("uses the error message from the body", func() {
			apiErr := p.ParseError(400, []byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: too large"}}`))
			Expect(apiErr.Message).To(Equal("max_tokens: too large"))
			Expect(apiErr.Type).To(Equal("invalid_request_error"))
			Expect(apiErr.StatusCode).To(Equal(400))
		})
	})
})

package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/quizpaper/pkg/llm"
	"github.com/papercomputeco/quizpaper/pkg/llm/provider"
	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/paper"
	"github.com/papercomputeco/quizpaper/pkg/pipeline"
	"github.com/papercomputeco/quizpaper/pkg/sse"
)

// ErrNoPaper is reported when the finished stream holds no JSON object.
var ErrNoPaper = errors.New("response contains no paper")

// Streamer produces the stream events of one generation.
type Streamer interface {
	Stream(ctx context.Context, params Params) (<-chan pipeline.StreamEvent, error)
}

// Config configures a Client.
type Config struct {
	// Provider adapts the model API. Required.
	Provider provider.Provider

	// Upstream is the API base URL. Empty means the provider's default.
	Upstream string

	APIKey string
	Model  string

	// HTTPClient defaults to a client without a timeout; streams are bounded
	// by the caller's context instead.
	HTTPClient *http.Client

	// Transcript, when set, receives the raw response stream.
	Transcript io.Writer

	Logger *slog.Logger

	// Now stamps generated papers. Defaults to time.Now.
	Now func() time.Time
}

// Client streams paper generations from a model provider.
type Client struct {
	provider   provider.Provider
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
	transcript io.Writer
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient returns a Client for c.
func NewClient(c Config) (*Client, error) {
	if c.Provider == nil {
		return nil, errors.New("provider is required")
	}
	if c.Model == "" {
		return nil, errors.New("model is required")
	}

	upstream := c.Upstream
	if upstream == "" {
		upstream = c.Provider.DefaultUpstream()
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		provider:   c.Provider,
		url:        strings.TrimRight(upstream, "/") + c.Provider.Endpoint(),
		apiKey:     c.APIKey,
		model:      c.Model,
		httpClient: httpClient,
		transcript: c.Transcript,
		logger:     logger.OrNop(c.Logger),
		now:        now,
	}, nil
}

// Stream validates params, starts the request and returns the event channel.
// Invalid params are returned as an error. Everything that goes wrong after
// that, including transport failures and provider errors, arrives as the
// final error event. The channel is closed after the terminal event, or
// without one if ctx is cancelled.
func (c *Client) Stream(ctx context.Context, params Params) (<-chan pipeline.StreamEvent, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	body, err := c.provider.BuildRequest(NewChatRequest(c.model, params))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", c.provider.Name(), err)
	}

	events := make(chan pipeline.StreamEvent, 16)
	go func() {
		defer close(events)
		c.run(ctx, body, params, events)
	}()
	return events, nil
}

func (c *Client) run(ctx context.Context, body []byte, params Params, events chan<- pipeline.StreamEvent) {
	start := time.Now()
	emit := func(ev pipeline.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(msg string) {
		c.logger.Error("generation failed", "provider", c.provider.Name(), "error", msg)
		emit(pipeline.Errored(msg))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		fail(fmt.Sprintf("creating request: %v", err))
		return
	}
	c.provider.SetHeaders(req.Header, c.apiKey)

	c.logger.Debug("requesting paper",
		"provider", c.provider.Name(),
		"url", c.url,
		"model", c.model,
		"theme", params.Theme,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		fail(fmt.Sprintf("request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		apiErr := c.provider.ParseError(resp.StatusCode, raw)
		c.logger.Error("upstream returned error", "status", resp.StatusCode, "body", string(raw))
		emit(pipeline.Errored(apiErr.Message))
		return
	}

	var (
		full  strings.Builder
		usage llm.Usage
	)
	onChunk := func(chunk *llm.StreamChunk) bool {
		if chunk.Usage != nil {
			mergeUsage(&usage, chunk.Usage)
		}
		text := chunk.Message.GetText()
		if text == "" {
			return true
		}
		full.WriteString(text)
		return emit(pipeline.Delta(text))
	}

	switch c.provider.StreamFormat() {
	case llm.StreamNDJSON:
		err = c.readNDJSON(resp.Body, onChunk)
	default:
		err = c.readSSE(resp.Body, onChunk)
	}
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) {
			fail(apiErr.Message)
			return
		}
		fail(fmt.Sprintf("reading stream: %v", err))
		return
	}

	result, err := c.finish(full.String(), params)
	if err != nil {
		fail(err.Error())
		return
	}

	c.logger.Info("paper generated",
		"provider", c.provider.Name(),
		"model", c.model,
		"questions", len(result.Questions),
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"duration", time.Since(start),
	)
	emit(pipeline.Completed(result))
}

// readSSE reads an SSE stream (OpenAI, Anthropic) until the provider marks
// it done or the body ends.
func (c *Client) readSSE(body io.Reader, onChunk func(*llm.StreamChunk) bool) error {
	r := sse.NewReader(body, sse.WithTranscript(c.transcript))
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		if ev == nil {
			return nil
		}

		chunk, err := c.provider.ParseStreamChunk([]byte(ev.Data))
		if err != nil {
			var apiErr *llm.APIError
			if errors.As(err, &apiErr) {
				return err
			}
			c.logger.Debug("skipping undecodable chunk", "event", ev.Type, "error", err)
			continue
		}
		if chunk == nil {
			continue
		}
		if !onChunk(chunk) {
			return nil
		}
		if chunk.Done {
			return nil
		}
	}
}

// readNDJSON reads a newline-delimited JSON stream (Ollama).
func (c *Client) readNDJSON(body io.Reader, onChunk func(*llm.StreamChunk) bool) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if c.transcript != nil {
			if _, err := fmt.Fprintf(c.transcript, "%s\n", line); err != nil {
				return err
			}
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		chunk, err := c.provider.ParseStreamChunk(line)
		if err != nil {
			var apiErr *llm.APIError
			if errors.As(err, &apiErr) {
				return err
			}
			c.logger.Debug("skipping undecodable line", "error", err)
			continue
		}
		if chunk == nil {
			continue
		}
		if !onChunk(chunk) {
			return nil
		}
		if chunk.Done {
			return nil
		}
	}

	return scanner.Err()
}

// finish decodes, normalizes and validates the complete response text.
func (c *Client) finish(text string, params Params) (*paper.Paper, error) {
	p, err := ParsePaper(text)
	if err != nil {
		return nil, err
	}

	paper.Normalize(p, c.now())
	if len(p.Tags) == 0 {
		p.Tags = []string{params.Theme, params.Difficulty}
	}
	if err := paper.Validate(p); err != nil {
		return nil, fmt.Errorf("invalid paper: %w", err)
	}
	return p, nil
}

// ParsePaper decodes the outermost JSON object in text. Prose or code fences
// around the object are ignored.
func ParsePaper(text string) (*paper.Paper, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, ErrNoPaper
	}

	var p paper.Paper
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("decoding paper: %w", err)
	}
	return &p, nil
}

func mergeUsage(dst, src *llm.Usage) {
	if src.PromptTokens > 0 {
		dst.PromptTokens = src.PromptTokens
	}
	if src.CompletionTokens > 0 {
		dst.CompletionTokens = src.CompletionTokens
	}
	if src.TotalTokens > 0 {
		dst.TotalTokens = src.TotalTokens
	}
	if src.TotalDurationNs > 0 {
		dst.TotalDurationNs = src.TotalDurationNs
	}
}

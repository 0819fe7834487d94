package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds a single chat completion round trip when no HTTP
// client is supplied.
const DefaultTimeout = 60 * time.Second

// Client abstracts an OpenAI-compatible LLM API.
type Client interface {
	// ChatCompletion sends a chat completion request and returns the response.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a simplified two-message chat request.
type ChatRequest struct {
	Model         string
	SystemMessage string
	UserMessage   string
}

// ChatResponse holds the result of a chat completion.
type ChatResponse struct {
	Content string
}

// OpenAIClient implements Client using the OpenAI-compatible API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	endpointErr error
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(opts ...Option) *OpenAIClient {
	cfg := &clientConfig{
		baseURL: "https://api.openai.com/v1",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &OpenAIClient{model: cfg.model}

	var endpoint *url.URL
	if cfg.endpoint != "" {
		u, err := url.Parse(cfg.endpoint)
		if err != nil {
			c.endpointErr = fmt.Errorf("invalid endpoint %q: %w", cfg.endpoint, err)
		}
		endpoint = u
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}

	config := openai.DefaultConfig(cfg.apiKey)
	config.BaseURL = cfg.baseURL
	config.HTTPClient = wrapTransport(hc, endpoint)
	c.client = openai.NewClientWithConfig(config)

	return c
}

// ChatCompletion sends a single non-streaming chat completion request.
// The user message is sent verbatim.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.endpointErr != nil {
		return nil, c.endpointErr
	}
	req = c.applyDefaults(req)
	ctx, capture := withBodyCapture(ctx)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.SystemMessage},
		{Role: openai.ChatMessageRoleUser, Content: req.UserMessage},
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, withBody(fmt.Errorf("chat completion failed: %w", err), capture)
	}

	if len(resp.Choices) == 0 {
		return nil, withBody(errors.New("no choices returned"), capture)
	}

	return &ChatResponse{
		Content: resp.Choices[0].Message.Content,
	}, nil
}

// applyDefaults applies client-level defaults to a request where
// the request does not specify its own values.
func (c *OpenAIClient) applyDefaults(req ChatRequest) ChatRequest {
	if req.Model == "" && c.model != "" {
		req.Model = c.model
	}
	return req
}

// responseError is a failed call that received a response body.
type responseError struct {
	err  error
	body string
}

func (e *responseError) Error() string { return e.err.Error() }

func (e *responseError) Unwrap() error { return e.err }

func withBody(err error, c *bodyCapture) error {
	if len(c.body) == 0 {
		return err
	}
	return &responseError{err: err, body: string(c.body)}
}

// ResponseBody returns the raw body that came back with a failed call,
// truncated to the first 8 KiB. It is empty when no response arrived.
func ResponseBody(err error) string {
	var respErr *responseError
	if errors.As(err, &respErr) {
		return respErr.body
	}
	return ""
}

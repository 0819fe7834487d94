package llm

import (
	"net/http"
	"strings"
)

// clientConfig holds configuration for an LLM client.
type clientConfig struct {
	baseURL    string
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Option is a functional option for configuring an LLM client.
type Option func(*clientConfig)

// WithBaseURL sets the base URL for the API (e.g. https://api.openai.com/v1).
// Requests go to the base URL followed by /chat/completions.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithEndpoint sets the exact URL chat completion requests are posted to,
// such as https://api.openai.com/v1/chat/completions. Path and query are
// used as given. It takes precedence over WithBaseURL.
func WithEndpoint(endpoint string) Option {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithAPIKey sets the API key sent as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the default model name for requests.
// Per-request model settings in ChatRequest take precedence.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithHTTPClient sets the HTTP client used for requests. The client's
// Timeout bounds every call made through the LLM client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// Package scorer turns a short label into a numeric score by asking an
// OpenAI-compatible model and classifying the reply.
package scorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/giantswarm/brix-meter/internal/llm"
	"github.com/giantswarm/brix-meter/internal/template"
)

// DefaultCredentialPrefix is the prefix every accepted API key must carry.
const DefaultCredentialPrefix = "sk-"

var (
	// ErrInvalidCredential is returned when the API key is empty or lacks the
	// expected prefix. No request is made.
	ErrInvalidCredential = errors.New("invalid API key")

	// ErrMissingEndpoint is returned when no API URL is given.
	ErrMissingEndpoint = errors.New("API URL must not be empty")

	// ErrTransport wraps any failure of the round trip itself: connection
	// errors, non-2xx statuses and undecodable bodies.
	ErrTransport = errors.New("scoring request failed")

	// ErrUnparsableReply is returned when the reply is not a number or range.
	ErrUnparsableReply = errors.New("unparsable reply")
)

// Connection holds the parameters needed to reach the scoring provider.
type Connection struct {
	URL    string `json:"url"`
	APIKey string `json:"-"`
	Model  string `json:"model"`
}

// Result is the outcome of a single Score call. Failures are reported
// through Err and Message, never as a returned error.
type Result struct {
	RawReply string  `json:"raw_reply"`
	Tier     Tier    `json:"tier"`
	Value    float64 `json:"value"`
	Message  string  `json:"message,omitempty"`
	Err      error   `json:"-"`
}

// OK reports whether the result carries a real score.
func (r Result) OK() bool {
	return r.Err == nil
}

// TemplateSource resolves a template name to its prompt.
type TemplateSource interface {
	Get(name string) template.Template
}

// ClientFactory builds an LLM client for a connection.
type ClientFactory func(conn Connection) llm.Client

// Option configures a Scorer.
type Option func(*Scorer)

// WithClientFactory overrides how LLM clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Scorer) {
		s.newClient = f
	}
}

// WithCredentialPrefix overrides the required API key prefix.
func WithCredentialPrefix(prefix string) Option {
	return func(s *Scorer) {
		s.credentialPrefix = prefix
	}
}

// Scorer runs the scoring pipeline. It holds no connection state; every call
// supplies its own Connection.
type Scorer struct {
	templates        TemplateSource
	newClient        ClientFactory
	credentialPrefix string
}

// NewScorer creates a new Scorer reading prompts from templates.
func NewScorer(templates TemplateSource, opts ...Option) *Scorer {
	s := &Scorer{
		templates:        templates,
		newClient:        newOpenAIClient,
		credentialPrefix: DefaultCredentialPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newOpenAIClient(conn Connection) llm.Client {
	return llm.NewOpenAIClient(
		llm.WithEndpoint(conn.URL),
		llm.WithAPIKey(conn.APIKey),
		llm.WithModel(conn.Model),
	)
}

// Score asks the model behind conn to score userText using the named
// template and classifies the reply. No request is made unless the API key
// and URL pass validation.
func (s *Scorer) Score(ctx context.Context, userText, templateName string, conn Connection) Result {
	if conn.APIKey == "" || !strings.HasPrefix(conn.APIKey, s.credentialPrefix) {
		return failure(fmt.Errorf("%w: provide a key starting with %q", ErrInvalidCredential, s.credentialPrefix), "")
	}
	if conn.URL == "" {
		return failure(ErrMissingEndpoint, "")
	}

	tpl := s.templates.Get(templateName)
	slog.Debug("scoring label",
		"template", tpl.Name,
		"model", conn.Model,
		"url", conn.URL,
	)

	raw, err := s.complete(ctx, tpl, userText, conn)
	if err != nil {
		slog.Warn("scoring request failed", "template", tpl.Name, "error", err)
		return failure(err, "")
	}

	value, err := ParseReply(raw)
	if err != nil {
		slog.Warn("could not parse reply", "reply", raw, "error", err)
		return failure(err, raw)
	}

	tier := Classify(value)
	slog.Info("label scored", "template", tpl.Name, "value", value, "tier", tier)

	return Result{
		RawReply: raw,
		Tier:     tier,
		Value:    value,
	}
}

// complete performs the single chat completion round trip and returns the
// trimmed reply.
func (s *Scorer) complete(ctx context.Context, tpl template.Template, userText string, conn Connection) (string, error) {
	client := s.newClient(conn)

	resp, err := client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         conn.Model,
		SystemMessage: tpl.Text,
		UserMessage:   userText,
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
		if body := llm.ResponseBody(err); body != "" {
			err = fmt.Errorf("%w | raw response: %s", err, body)
		}
		return "", err
	}

	return strings.TrimSpace(resp.Content), nil
}

func failure(err error, raw string) Result {
	msg := "error: " + err.Error()
	if raw != "" && !strings.Contains(msg, raw) {
		msg += " | raw response: " + raw
	}
	return Result{
		RawReply: raw,
		Tier:     TierUnavailable,
		Value:    0,
		Message:  msg,
		Err:      err,
	}
}

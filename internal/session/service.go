// Package session exposes the scoring and template operations to the outer
// surfaces (CLI, MCP tools, batch runs).
//
// Connection parameters are passed on every call. Start-up defaults fill in
// the URL and model when a caller leaves them empty, but they are fixed when
// the Service is built and never changed afterwards. The API key is never
// defaulted: every caller brings its own.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/giantswarm/brix-meter/internal/scorer"
	"github.com/giantswarm/brix-meter/internal/template"
)

const (
	// DefaultAPIURL is the chat completions endpoint used when none is configured.
	DefaultAPIURL = "https://api.openai.com/v1/chat/completions"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gpt-4o-mini"
)

// Defaults are the connection parameters used for fields a caller leaves empty.
type Defaults struct {
	URL   string
	Model string
}

// ScoreInput is a single scoring request.
type ScoreInput struct {
	Text         string
	TemplateName string
	Connection   scorer.Connection
}

// AddTemplateOutput is what a template editor needs to re-render.
type AddTemplateOutput struct {
	Names         []string `json:"names"`
	SelectedName  string   `json:"selected_name"`
	StatusMessage string   `json:"status_message"`
	Added         bool     `json:"added"`
}

// Service ties the template registry to the scorer.
type Service struct {
	registry *template.Registry
	scorer   *scorer.Scorer
	defaults Defaults
}

// NewService creates a new Service. Empty URL and Model defaults fall back
// to DefaultAPIURL and DefaultModel.
func NewService(registry *template.Registry, s *scorer.Scorer, defaults Defaults) *Service {
	if defaults.URL == "" {
		defaults.URL = DefaultAPIURL
	}
	if defaults.Model == "" {
		defaults.Model = DefaultModel
	}
	return &Service{
		registry: registry,
		scorer:   s,
		defaults: defaults,
	}
}

// Score scores in.Text. An empty URL or model takes the service default.
func (s *Service) Score(ctx context.Context, in ScoreInput) scorer.Result {
	return s.scorer.Score(ctx, in.Text, in.TemplateName, s.resolve(in.Connection))
}

func (s *Service) resolve(conn scorer.Connection) scorer.Connection {
	if conn.URL == "" {
		conn.URL = s.defaults.URL
	}
	if conn.Model == "" {
		conn.Model = s.defaults.Model
	}
	return conn
}

// AddTemplate registers a template and reports the updated name list.
func (s *Service) AddTemplate(name, text string) AddTemplateOutput {
	err := s.registry.Add(name, text)
	names := s.registry.List()

	if err != nil {
		slog.Info("template rejected", "name", name, "error", err)
		status := "❌ 添加失败：名称或内容不能为空"
		if errors.Is(err, template.ErrTemplateExists) {
			status = fmt.Sprintf("❌ 添加失败：模版 %s 已存在", name)
		}
		return AddTemplateOutput{
			Names:         names,
			SelectedName:  names[0],
			StatusMessage: status,
		}
	}

	slog.Info("template added", "name", name, "templates", len(names))
	return AddTemplateOutput{
		Names:         names,
		SelectedName:  name,
		StatusMessage: fmt.Sprintf("✅ 模版 **%s** 已添加", name),
		Added:         true,
	}
}

// ListTemplates returns the registered template names in insertion order.
func (s *Service) ListTemplates() []string {
	return s.registry.List()
}

// GetTemplate returns the template used for name.
func (s *Service) GetTemplate(name string) template.Template {
	return s.registry.Get(name)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/giantswarm/brix-meter/internal/scorer"
	"github.com/giantswarm/brix-meter/internal/session"
	"github.com/giantswarm/brix-meter/internal/template"
)

// appConfig is the resolved configuration shared by all subcommands.
type appConfig struct {
	APIURL        string `mapstructure:"api_url"`
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	TemplatesFile string `mapstructure:"templates_file"`
}

func loadAppConfig() (appConfig, error) {
	var cfg appConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// newServiceFromConfig builds the template registry, scorer and session
// service from the resolved configuration. The configured API key is not part
// of the service defaults; local commands pass it per call.
func newServiceFromConfig() (*session.Service, *template.Registry, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, nil, err
	}

	registry, err := template.NewDefaultRegistry()
	if err != nil {
		return nil, nil, err
	}
	if cfg.TemplatesFile != "" {
		if err := registry.LoadFile(cfg.TemplatesFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load templates: %w", err)
		}
	}

	svc := session.NewService(registry, scorer.NewScorer(registry), session.Defaults{
		URL:   cfg.APIURL,
		Model: cfg.Model,
	})
	return svc, registry, nil
}

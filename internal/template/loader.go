package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/default.yaml
var embeddedPrompts embed.FS

// DefaultName is the name of the seeded fallback template.
const DefaultName = "default_v0.0.3_extra"

// File is the on-disk format for template definitions.
type File struct {
	Templates []Template `yaml:"templates"`
}

// NewDefaultRegistry creates a registry seeded with the embedded default
// template.
func NewDefaultRegistry() (*Registry, error) {
	templates, err := parseFS(embeddedPrompts, "prompts/default.yaml")
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 || templates[0].Name != DefaultName {
		return nil, fmt.Errorf("embedded prompts must start with %q", DefaultName)
	}

	r := NewRegistry(templates[0])
	for _, t := range templates[1:] {
		if err := r.Add(t.Name, t.Text); err != nil {
			return nil, fmt.Errorf("failed to add embedded template %q: %w", t.Name, err)
		}
	}
	return r, nil
}

// LoadFile adds the templates defined in a YAML file, in file order. The file
// is only read; the registry never writes templates back.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read templates file: %w", err)
	}
	templates, err := parse(data, path)
	if err != nil {
		return err
	}

	for i, t := range templates {
		if err := r.Add(t.Name, t.Text); err != nil {
			return fmt.Errorf("template %d in %s: %w", i+1, path, err)
		}
	}
	return nil
}

func parseFS(fsys fs.FS, name string) ([]Template, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return parse(data, name)
}

func parse(data []byte, name string) ([]Template, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return f.Templates, nil
}

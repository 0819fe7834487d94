// Package template holds the named system prompts that define the scoring
// rubric sent to the model.
package template

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrTemplateAddRejected is returned by Add when the name or text is empty.
	ErrTemplateAddRejected = errors.New("template name and text must not be empty")

	// ErrTemplateExists is returned by Add when the name is already registered.
	// Templates are immutable once added.
	ErrTemplateExists = errors.New("template already exists")
)

// Template is a named system prompt.
type Template struct {
	Name string `yaml:"name" json:"name"`
	Text string `yaml:"text" json:"text"`
}

// Registry is an insertion-ordered, grow-only set of templates. It is safe
// for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	fallback  string
	order     []string
	templates map[string]Template
}

// NewRegistry creates a registry seeded with a single template. The seed is
// returned by Get for any unknown name.
func NewRegistry(seed Template) *Registry {
	return &Registry{
		fallback:  seed.Name,
		order:     []string{seed.Name},
		templates: map[string]Template{seed.Name: seed},
	}
}

// Get returns the template registered under name, or the fallback template
// when name is unknown.
func (r *Registry) Get(name string) Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.templates[name]; ok {
		return t
	}
	return r.templates[r.fallback]
}

// Default returns the fallback template.
func (r *Registry) Default() Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates[r.fallback]
}

// Add registers a new template. Registry state is unchanged on error.
func (r *Registry) Add(name, text string) error {
	if name == "" || text == "" {
		return ErrTemplateAddRejected
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[name]; ok {
		return fmt.Errorf("%w: %q", ErrTemplateExists, name)
	}
	r.templates[name] = Template{Name: name, Text: text}
	r.order = append(r.order, name)
	return nil
}

// List returns all template names in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds the known layout templates, addressed by template ID.
// Saving an existing ID overwrites it (last write wins); templates are
// curated offline, so this is a deliberate simplification. Iteration
// order is insertion order, which the matcher uses as a deterministic
// tie-break.
type Registry struct {
	order []string
	byID  map[string]*Template
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Template)}
}

// LoadRegistry creates a registry eagerly loaded from every template
// file (*.yml, *.yaml) in a directory, in file-name order.
func LoadRegistry(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Save validates and stores a template. An overwritten template keeps
// its original insertion position.
func (r *Registry) Save(t *Template) error {
	if t == nil {
		return fmt.Errorf("template: save nil template")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := r.byID[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.byID[t.ID] = t
	return nil
}

// Get retrieves a template by ID, or nil when unknown.
func (r *Registry) Get(id string) *Template {
	return r.byID[id]
}

// All returns the registered templates in insertion order.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.order)
}

// LoadFile loads one template document from a YAML file and saves it.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("template: read %s: %w", path, err)
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("template: parse %s: %w", path, err)
	}
	if err := r.Save(&t); err != nil {
		return fmt.Errorf("template: %s: %w", path, err)
	}
	return nil
}

// LoadDir loads every *.yml and *.yaml file in a directory, in
// file-name order so registry insertion order is reproducible.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("template: read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yml" || ext == ".yaml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile serializes a template to a YAML file, so curated templates
// can be produced programmatically and round-tripped through LoadFile.
func WriteFile(t *Template, path string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("template: marshal %q: %w", t.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("template: write %s: %w", path, err)
	}
	return nil
}

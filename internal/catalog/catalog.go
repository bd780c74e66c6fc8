// Package catalog holds the fixed, ordered list of project templates and the
// rule that turns a template identifier into a repository locator.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/x402-tools/create-x402/internal/branding"
	"github.com/x402-tools/create-x402/internal/config"
)

//go:embed templates.yaml
var rawTemplates []byte

// Template describes one selectable starter project.
type Template struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// Repo, when set, is used verbatim as the source locator instead of a
	// subdirectory of the examples repository.
	Repo string `yaml:"repo,omitempty"`
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

type document struct {
	Templates []Template `yaml:"templates"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// New builds a catalog from templates, keeping their order.
// Identifiers are assumed unique; Lookup returns the first of any duplicates.
func New(templates []Template) *Catalog {
	c := &Catalog{
		templates: make([]Template, len(templates)),
		byID:      make(map[string]int, len(templates)),
	}
	copy(c.templates, templates)
	for i, t := range c.templates {
		if _, ok := c.byID[t.ID]; !ok {
			c.byID[t.ID] = i
		}
	}
	return c
}

// Parse decodes a catalog from its YAML form.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing template catalog: %w", err)
	}
	if len(doc.Templates) == 0 {
		return nil, fmt.Errorf("template catalog is empty")
	}
	return New(doc.Templates), nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(rawTemplates)
	})
	return defaultCatalog, defaultErr
}

// Templates returns a copy of the templates in display order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Lookup returns the template with the given identifier.
func (c *Catalog) Lookup(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i], true
}

// Resolve returns the source locator for the template: its explicit Repo
// when present, otherwise examplesBase joined with the identifier.
func (c *Catalog) Resolve(id, examplesBase string) (string, error) {
	t, ok := c.Lookup(id)
	if !ok {
		return "", fmt.Errorf("unknown template %q", id)
	}
	return t.Locator(examplesBase), nil
}

// Locator applies the two-tier resolution rule to a single template.
func (t Template) Locator(examplesBase string) string {
	if t.Repo != "" {
		return t.Repo
	}
	return strings.TrimRight(examplesBase, "/") + "/" + strings.Trim(t.ID, "/")
}

// DefaultProjectName derives a project name from the last path segment of a
// template identifier ("servers/express" → "express").
func DefaultProjectName(id string) string {
	return path.Base(strings.Trim(id, "/"))
}

// ExamplesBase returns the locator of the shared examples tree, checking (in order):
// 1. <PREFIX>_EXAMPLES_REPO env var
// 2. config key "examples_repo"
// 3. branding.ExamplesRepo() (from branding.yaml)
func ExamplesBase() string {
	if v := os.Getenv(branding.EnvVar("EXAMPLES_REPO")); v != "" {
		return v
	}
	if v := config.Get(config.KeyExamplesRepo); v != "" {
		return v
	}
	return branding.ExamplesRepo()
}

package llm

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Prompts holds the parsed prompt templates, keyed by file name.
type Prompts struct {
	templates *template.Template
}

func LoadPrompts() (*Prompts, error) {
	templates, err := template.New("prompts").Option("missingkey=zero").ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("llm: parse prompt templates: %w", err)
	}
	return &Prompts{templates: templates}, nil
}

func (p *Prompts) Has(name string) bool {
	return p != nil && p.templates.Lookup(name) != nil
}

func (p *Prompts) Render(name string, payload Payload) (string, error) {
	if !p.Has(name) {
		return "", fmt.Errorf("llm: prompt template %q not found", name)
	}
	var out bytes.Buffer
	if err := p.templates.ExecuteTemplate(&out, name, payload); err != nil {
		return "", fmt.Errorf("llm: render prompt %q: %w", name, err)
	}
	return out.String(), nil
}

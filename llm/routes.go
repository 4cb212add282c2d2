package llm

import (
	"fmt"
	"strings"
)

const (
	ModelGPT4  = "gpt-4"
	ModelGPT4o = "gpt-4o"
)

const GenericMissingMessage = "Missing Prompt, Problem, Tree, Context, or Code in request body"

// Field is a payload key a route requires. NonBlank fields must be strings
// with visible characters, Present fields only have to exist (null counts),
// and the others have to be truthy.
type Field struct {
	Name     string
	NonBlank bool
	Present  bool
}

// Route describes one completion endpoint. TopLevelOnly routes read the body
// as sent and never unwrap "requestBody".
type Route struct {
	Version        string
	Template       string
	Model          string
	Temperature    float64
	Required       []Field
	MissingMessage string
	TopLevelOnly   bool
}

func (r Route) Path() string {
	return "/openai/" + r.Version + "/"
}

// Payload decodes body the way the route reads it.
func (r Route) Payload(body []byte) (Payload, error) {
	if r.TopLevelOnly {
		return decodeObject(body)
	}
	return Normalize(body)
}

// Missing reports the first required field the payload does not satisfy.
func (r Route) Missing(payload Payload) (string, bool) {
	for _, field := range r.Required {
		switch {
		case field.NonBlank:
			if strings.TrimSpace(payload.String(field.Name)) == "" {
				return field.Name, true
			}
		case field.Present:
			if _, ok := payload[field.Name]; !ok {
				return field.Name, true
			}
		case !payload.Truthy(field.Name):
			return field.Name, true
		}
	}
	return "", false
}

func (r Route) Validate() error {
	if strings.TrimSpace(r.Version) == "" {
		return fmt.Errorf("llm: route version is required")
	}
	if strings.TrimSpace(r.Template) == "" {
		return fmt.Errorf("llm: route %s template is required", r.Version)
	}
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("llm: route %s model is required", r.Version)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("llm: route %s temperature must be within [0,2]", r.Version)
	}
	return nil
}

func DefaultRoutes() []Route {
	return []Route{
		{
			Version:        "v1",
			Template:       "structure_steps.tmpl",
			Model:          ModelGPT4,
			Required:       []Field{{Name: "Prompt", NonBlank: true}, {Name: "Problem"}, {Name: "Tree", Present: true}},
			MissingMessage: "Missing Prompt, Problem, or Tree in request body",
			TopLevelOnly:   true,
		},
		{
			Version:        "v2",
			Template:       "check_tree.tmpl",
			Model:          ModelGPT4o,
			Required:       []Field{{Name: "Tree"}, {Name: "Problem"}},
			MissingMessage: GenericMissingMessage,
		},
		{
			Version:        "v3",
			Template:       "steps_from_code.tmpl",
			Model:          ModelGPT4,
			Temperature:    0.8,
			Required:       []Field{{Name: "Problem"}, {Name: "Code"}},
			MissingMessage: GenericMissingMessage,
		},
		{
			Version:        "v4",
			Template:       "code_from_tree.tmpl",
			Model:          ModelGPT4,
			Required:       []Field{{Name: "Tree"}, {Name: "Code"}},
			MissingMessage: GenericMissingMessage,
		},
		{
			Version:        "v5",
			Template:       "abstract_tree.tmpl",
			Model:          ModelGPT4o,
			Required:       []Field{{Name: "Tree"}},
			MissingMessage: GenericMissingMessage,
		},
		{
			Version:        "v6",
			Template:       "compare_abstraction.tmpl",
			Model:          ModelGPT4o,
			Required:       []Field{{Name: "solutionSteps"}, {Name: "actualSolutionSteps"}},
			MissingMessage: GenericMissingMessage,
		},
	}
}

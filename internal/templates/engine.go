package templates

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"
)

type Engine interface {
	Execute(name string, data any) (string, error)
}

type TextTemplateEngine struct {
	templates *template.Template
	funcs     template.FuncMap
}

// DefaultFuncs are available to every template.
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
	}
}

// NewEngine parses sources, keyed by template name.
func NewEngine(sources map[string]string, funcs template.FuncMap) (*TextTemplateEngine, error) {
	e := &TextTemplateEngine{
		templates: template.New("").Option("missingkey=error"),
		funcs:     funcs,
	}
	e.templates.Funcs(e.funcs)

	for _, name := range slices.Sorted(maps.Keys(sources)) {
		if _, err := e.templates.New(name).Parse(sources[name]); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
	}
	return e, nil
}

func (e *TextTemplateEngine) Execute(name string, data any) (string, error) {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

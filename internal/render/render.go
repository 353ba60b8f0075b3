// Package render turns a validated CV document into LaTeX text through a
// Go text/template, with unconditional escaping of all interpolated data.
package render

import (
	"strings"
	"text/template"
)

// Render executes a LaTeX template over the render context and returns the
// finished markup. The component is pure: reading template and document
// from disk is the caller's business.
func Render(ctx Context, templateText []byte) (string, error) {
	tmpl, err := parseTemplate(templateText)
	if err != nil {
		return "", err
	}
	data, err := BuildTemplateData(ctx)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return out.String(), nil
}

// parseTemplate parses LaTeX template text with the helper functions
// templates may call: escape for values not already escaped by the data
// builder, join for inline lists.
func parseTemplate(content []byte) (*template.Template, error) {
	tmpl, err := template.New("cv").Funcs(template.FuncMap{
		"escape": Escape,
		"join":   strings.Join,
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return tmpl, nil
}

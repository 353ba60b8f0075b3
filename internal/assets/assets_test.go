package assets

import (
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultSchema_IsWellFormedYAML(t *testing.T) {
	var schema map[string]any
	require.NoError(t, yaml.Unmarshal(DefaultSchema(), &schema))

	assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema["$schema"])
	assert.Equal(t, "object", schema["type"])

	required, ok := schema["required"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"name", "personal_info", "work_experience", "education", "languages"}, required)

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, name := range []string{"name", "personal_info", "job_applied_for", "work_experience", "education", "languages", "skills"} {
		assert.Contains(t, props, name)
	}
}

func TestDefaultSchema_CEFRAnchorsResolve(t *testing.T) {
	var schema map[string]any
	require.NoError(t, yaml.Unmarshal(DefaultSchema(), &schema))

	props := schema["properties"].(map[string]any)
	languages := props["languages"].(map[string]any)
	foreign := languages["properties"].(map[string]any)["foreign_languages"].(map[string]any)
	itemProps := foreign["items"].(map[string]any)["properties"].(map[string]any)

	for _, skill := range []string{"listening", "reading", "spoken_interaction", "spoken_production", "writing"} {
		node, ok := itemProps[skill].(map[string]any)
		require.True(t, ok, skill)
		enum, ok := node["enum"].([]any)
		require.True(t, ok, skill)
		assert.Equal(t, []any{"A1", "A2", "B1", "B2", "C1", "C2"}, enum)
	}
}

func TestDefaultTemplate_Parses(t *testing.T) {
	tmpl, err := template.New("cv").Funcs(template.FuncMap{
		"escape": func(s string) string { return s },
		"join":   strings.Join,
	}).Parse(string(DefaultTemplate()))
	require.NoError(t, err)

	var out strings.Builder
	err = tmpl.Execute(&out, map[string]any{"Name": "Erika Mustermann"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), `\begin{document}`)
	assert.Contains(t, out.String(), "Erika Mustermann")
	assert.Contains(t, out.String(), `\end{document}`)
}

// Package assets carries the built-in validation schema and LaTeX template,
// embedded at compile time so the binary works without a data directory.
package assets

import (
	"embed"
	"fmt"
)

//go:embed cv_schema.yml cv_template.tex
var assetFiles embed.FS

// DefaultSchema returns the built-in CV validation schema
// (JSON Schema draft-07, written as YAML).
func DefaultSchema() []byte {
	return mustRead("cv_schema.yml")
}

// DefaultTemplate returns the built-in LaTeX template.
func DefaultTemplate() []byte {
	return mustRead("cv_template.tex")
}

func mustRead(name string) []byte {
	data, err := assetFiles.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("embedded asset %s: %v", name, err))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

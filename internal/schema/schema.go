// Package schema loads the declarative CV validation schema (JSON Schema
// draft-07 written as YAML) and exposes it two ways: compiled for
// constraint checking and as a queryable node tree for traversal, field
// suggestions and finding order.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xeipuuv/gojsonschema"

	"github.com/mwalther/cvgen/internal/assets"
	"github.com/mwalther/cvgen/internal/document"
)

// Schema pairs the compiled validator with the node tree. Immutable after
// load; cached instances are shared across runs.
type Schema struct {
	path     string
	compiled *gojsonschema.Schema
	root     *Node
}

const cacheSize = 16

// cache holds compiled schemas keyed by absolute file path. Schema files
// are treated as immutable for the lifetime of the process.
var cache = mustCache()

func mustCache() *lru.Cache[string, *Schema] {
	c, err := lru.New[string, *Schema](cacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a schema file, compiling at most once per path.
func Load(path string) (*Schema, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to resolve schema path", Cause: err}
	}
	if s, ok := cache.Get(abs); ok {
		return s, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &LoadError{Path: abs, Message: "failed to read schema file", Cause: err}
	}
	s, err := loadBytes(abs, data)
	if err != nil {
		return nil, err
	}
	cache.Add(abs, s)
	return s, nil
}

// LoadBytes compiles a schema from raw YAML bytes. Results are not cached.
func LoadBytes(data []byte) (*Schema, error) {
	return loadBytes("", data)
}

func loadBytes(path string, data []byte) (*Schema, error) {
	doc, err := document.Parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "schema is not valid YAML", Cause: err}
	}
	if doc.Root().Kind() != document.KindMapping {
		return nil, &LoadError{Path: path, Message: "schema root must be a mapping"}
	}

	jsonBytes, err := doc.JSON()
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to convert schema to JSON", Cause: err}
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, &LoadError{Path: path, Message: "schema failed to compile", Cause: err}
	}

	root, err := buildTree(doc.Root())
	if err != nil {
		return nil, &LoadError{Path: path, Message: "invalid schema structure", Cause: err}
	}

	return &Schema{path: path, compiled: compiled, root: root}, nil
}

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// Default returns the built-in schema shipped with the binary.
func Default() *Schema {
	defaultOnce.Do(func() {
		s, err := LoadBytes(assets.DefaultSchema())
		if err != nil {
			panic(fmt.Sprintf("built-in schema is broken: %v", err))
		}
		defaultSchema = s
	})
	return defaultSchema
}

// Path returns the source file path, or "" for inline and built-in schemas.
func (s *Schema) Path() string {
	return s.path
}

// Root returns the top node of the schema tree.
func (s *Schema) Root() *Node {
	return s.root
}

// Validate runs the compiled JSON Schema against a document loader and
// returns the raw result for the validation layer to interpret.
func (s *Schema) Validate(doc gojsonschema.JSONLoader) (*gojsonschema.Result, error) {
	result, err := s.compiled.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	return result, nil
}

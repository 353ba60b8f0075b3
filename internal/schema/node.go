package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mwalther/cvgen/internal/document"
)

// Node is one position in the expected document shape. Nodes are built
// once per schema load and never mutated afterwards, so a Schema is safe
// to share across goroutines.
type Node struct {
	Name      string
	Kind      string // object, array, string, integer, number, boolean
	Required  bool
	Format    string
	Enum      []string
	MinLength int // -1 when unconstrained
	MaxLength int // -1 when unconstrained

	// Properties holds child nodes in schema declaration order, which is
	// also the order validation findings are reported in.
	Properties []*Node
	Items      *Node

	open  bool
	order int
	index map[string]*Node
}

// Child looks up a declared property by name.
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.index[name]
	return child, ok
}

// FieldNames returns the declared property names in declaration order.
// These are the suggestion candidates for unrecognized sibling fields.
func (n *Node) FieldNames() []string {
	names := make([]string, 0, len(n.Properties))
	for _, p := range n.Properties {
		names = append(names, p.Name)
	}
	return names
}

// AllowsUnknown reports whether fields beyond the declared properties are
// acceptable at this position: either additionalProperties admits them or
// the node declares no properties at all (free-form mappings such as skill
// categories).
func (n *Node) AllowsUnknown() bool {
	return n.open || len(n.Properties) == 0
}

func buildTree(root *document.Value) (*Node, error) {
	counter := 0
	return buildNode("", root, false, &counter)
}

func buildNode(name string, v *document.Value, required bool, counter *int) (*Node, error) {
	if v.Kind() != document.KindMapping {
		return nil, fmt.Errorf("schema node %q must be a mapping, got %s", name, v.Kind())
	}

	n := &Node{Name: name, Required: required, MinLength: -1, MaxLength: -1, order: *counter}
	*counter++

	if t, ok := v.Get("type"); ok {
		switch t.Kind() {
		case document.KindScalar:
			n.Kind = t.Text()
		case document.KindSequence:
			if len(t.Items()) > 0 {
				n.Kind = t.Items()[0].Text()
			}
		}
	}
	if f, ok := v.Get("format"); ok {
		n.Format = f.Text()
	}
	if e, ok := v.Get("enum"); ok {
		for _, item := range e.Items() {
			n.Enum = append(n.Enum, item.Text())
		}
	}
	if m, ok := v.Get("minLength"); ok {
		if i, err := strconv.Atoi(m.Text()); err == nil {
			n.MinLength = i
		}
	}
	if m, ok := v.Get("maxLength"); ok {
		if i, err := strconv.Atoi(m.Text()); err == nil {
			n.MaxLength = i
		}
	}

	var requiredNames map[string]bool
	if r, ok := v.Get("required"); ok {
		requiredNames = make(map[string]bool, r.Len())
		for _, item := range r.Items() {
			requiredNames[item.Text()] = true
		}
	}

	if props, ok := v.Get("properties"); ok {
		if props.Kind() != document.KindMapping {
			return nil, fmt.Errorf("schema node %q: properties must be a mapping", name)
		}
		n.index = make(map[string]*Node, props.Len())
		for _, f := range props.Fields() {
			child, err := buildNode(f.Name, f.Value, requiredNames[f.Name], counter)
			if err != nil {
				return nil, err
			}
			n.Properties = append(n.Properties, child)
			n.index[f.Name] = child
		}
	}

	if items, ok := v.Get("items"); ok && items.Kind() == document.KindMapping {
		child, err := buildNode("", items, false, counter)
		if err != nil {
			return nil, err
		}
		n.Items = child
	}

	if ap, ok := v.Get("additionalProperties"); ok {
		switch ap.Kind() {
		case document.KindMapping:
			n.open = true
		case document.KindScalar:
			n.open = ap.Text() == "true"
		}
	}

	return n, nil
}

// SplitPath breaks a field path in dot/bracket notation into segments:
// "work_experience[0].position" -> ["work_experience", "0", "position"].
// Plain dot-joined numeric segments are accepted too.
func SplitPath(path string) []string {
	normalized := strings.NewReplacer("[", ".", "]", "").Replace(path)
	parts := strings.Split(normalized, ".")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// Resolve walks the node tree along a field path and returns the matching
// node, or nil if the path leaves the declared shape. Numeric segments
// descend into array item schemas. The empty path and "(root)" address the
// root node.
func (s *Schema) Resolve(path string) *Node {
	n := s.root
	if path == "" || path == "(root)" {
		return n
	}
	for _, seg := range SplitPath(path) {
		if child, ok := n.Child(seg); ok {
			n = child
			continue
		}
		if isDigits(seg) && n.Items != nil {
			n = n.Items
			continue
		}
		return nil
	}
	return n
}

// ChildrenOf returns the declared child nodes at a path, or nil when the
// path is absent from the schema.
func (s *Schema) ChildrenOf(path string) []*Node {
	n := s.Resolve(path)
	if n == nil {
		return nil
	}
	return n.Properties
}

// FieldNames returns the declared field names at a path.
func (s *Schema) FieldNames(path string) []string {
	n := s.Resolve(path)
	if n == nil {
		return nil
	}
	return n.FieldNames()
}

// OrderKey maps a field path onto a sortable key: declaration ordinals for
// named segments, the index itself for array segments. Comparing keys
// lexicographically yields depth-first schema-declaration order with array
// elements kept in index order. Unresolvable tails sort after everything
// declared at the same prefix.
func (s *Schema) OrderKey(path string) []int {
	n := s.root
	key := []int{}
	if path == "" || path == "(root)" {
		return key
	}
	for _, seg := range SplitPath(path) {
		if child, ok := n.Child(seg); ok {
			key = append(key, child.order)
			n = child
			continue
		}
		if isDigits(seg) && n.Items != nil {
			i, _ := strconv.Atoi(seg)
			key = append(key, i, n.Items.order)
			n = n.Items
			continue
		}
		key = append(key, math.MaxInt32)
		break
	}
	return key
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

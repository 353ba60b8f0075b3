// Package document holds one parsed CV data file as a tree of mappings,
// sequences and scalars. The tree preserves mapping key order from the
// source YAML, which the validator relies on when reporting unrecognized
// fields in the order the author wrote them.
package document

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a Value node.
type Kind int

const (
	// KindNull is an explicit YAML null or an empty document.
	KindNull Kind = iota
	// KindScalar is a string, number, bool or timestamp leaf.
	KindScalar
	// KindMapping is an ordered set of named child values.
	KindMapping
	// KindSequence is an ordered list of child values.
	KindSequence
)

// String returns a lower-case name for the kind, used in messages.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "null"
	}
}

// Field is one mapping entry.
type Field struct {
	Name  string
	Value *Value
}

// Value is a single node of the document tree.
type Value struct {
	kind   Kind
	fields []Field
	index  map[string]*Value
	items  []*Value
	text   string
	tag    string
}

// Document is the root of one parsed data file.
type Document struct {
	root *Value
}

// Parse decodes YAML text into a Document. Mapping key order is preserved
// and anchors/aliases are resolved. A syntactically broken file is a parse
// error, not a validation finding.
func Parse(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return &Document{root: nullValue()}, nil
	}
	root, err := fromNode(node.Content[0])
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

func fromNode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		v := &Value{kind: KindMapping, index: make(map[string]*Value, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			name := n.Content[i].Value
			if _, dup := v.index[name]; dup {
				return nil, fmt.Errorf("duplicate mapping key %q at line %d", name, n.Content[i].Line)
			}
			child, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			v.fields = append(v.fields, Field{Name: name, Value: child})
			v.index[name] = child
		}
		return v, nil
	case yaml.SequenceNode:
		v := &Value{kind: KindSequence, items: make([]*Value, 0, len(n.Content))}
		for _, c := range n.Content {
			child, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			v.items = append(v.items, child)
		}
		return v, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nullValue(), nil
		}
		return &Value{kind: KindScalar, text: n.Value, tag: n.Tag}, nil
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

func nullValue() *Value {
	return &Value{kind: KindNull}
}

// Root returns the top node of the document. It is never nil.
func (d *Document) Root() *Value {
	return d.root
}

// Lookup descends through nested mappings following the given keys.
// The second result is false if any step is missing or not a mapping.
func (d *Document) Lookup(keys ...string) (*Value, bool) {
	v := d.root
	for _, k := range keys {
		child, ok := v.Get(k)
		if !ok {
			return nil, false
		}
		v = child
	}
	return v, true
}

// Clone returns a deep copy sharing no state with the receiver.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.clone()}
}

// Kind reports the node shape.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the node is an explicit null.
func (v *Value) IsNull() bool {
	return v.kind == KindNull
}

// Get looks up a mapping child by name.
func (v *Value) Get(name string) (*Value, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	child, ok := v.index[name]
	return child, ok
}

// Has reports whether a mapping child exists and is not null.
func (v *Value) Has(name string) bool {
	child, ok := v.Get(name)
	return ok && !child.IsNull()
}

// Fields returns mapping entries in source order. Nil for non-mappings.
func (v *Value) Fields() []Field {
	if v.kind != KindMapping {
		return nil
	}
	return v.fields
}

// Items returns sequence entries in source order. Nil for non-sequences.
func (v *Value) Items() []*Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Len returns the number of mapping fields or sequence items.
func (v *Value) Len() int {
	switch v.kind {
	case KindMapping:
		return len(v.fields)
	case KindSequence:
		return len(v.items)
	default:
		return 0
	}
}

// Text returns the scalar text exactly as written in the source.
// Timestamps keep their original spelling (for example "1984-06-02").
func (v *Value) Text() string {
	if v.kind != KindScalar {
		return ""
	}
	return v.text
}

// Set replaces or appends a mapping child, keeping existing order for
// replaced names. It does nothing on non-mappings.
func (v *Value) Set(name string, val *Value) {
	if v.kind != KindMapping {
		return
	}
	if _, ok := v.index[name]; ok {
		for i := range v.fields {
			if v.fields[i].Name == name {
				v.fields[i].Value = val
				break
			}
		}
	} else {
		v.fields = append(v.fields, Field{Name: name, Value: val})
	}
	if v.index == nil {
		v.index = make(map[string]*Value)
	}
	v.index[name] = val
}

// Delete removes a mapping child by name and reports whether it existed.
func (v *Value) Delete(name string) bool {
	if v.kind != KindMapping {
		return false
	}
	if _, ok := v.index[name]; !ok {
		return false
	}
	delete(v.index, name)
	for i := range v.fields {
		if v.fields[i].Name == name {
			v.fields = append(v.fields[:i], v.fields[i+1:]...)
			break
		}
	}
	return true
}

func (v *Value) clone() *Value {
	out := &Value{kind: v.kind, text: v.text, tag: v.tag}
	switch v.kind {
	case KindMapping:
		out.index = make(map[string]*Value, len(v.fields))
		out.fields = make([]Field, 0, len(v.fields))
		for _, f := range v.fields {
			c := f.Value.clone()
			out.fields = append(out.fields, Field{Name: f.Name, Value: c})
			out.index[f.Name] = c
		}
	case KindSequence:
		out.items = make([]*Value, 0, len(v.items))
		for _, it := range v.items {
			out.items = append(out.items, it.clone())
		}
	}
	return out
}

// Interface converts the tree into JSON-compatible Go values: mappings
// become map[string]any, sequences []any, scalars their resolved type.
// Timestamp scalars stay strings in their original spelling so that schema
// date formats validate the text the author wrote.
func (v *Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindScalar:
		return v.scalarInterface()
	case KindSequence:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			out[f.Name] = f.Value.Interface()
		}
		return out
	}
	return nil
}

func (v *Value) scalarInterface() any {
	switch v.tag {
	case "!!bool":
		if b, err := strconv.ParseBool(v.text); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return i
		}
	case "!!float":
		if f, err := strconv.ParseFloat(v.text, 64); err == nil {
			return f
		}
	}
	return v.text
}

// JSON renders the document as JSON bytes, the form handed to the schema
// validator.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.Marshal(d.root.Interface())
	if err != nil {
		return nil, fmt.Errorf("failed to encode document as JSON: %w", err)
	}
	return data, nil
}

// YAML renders the document back as YAML text, preserving field order.
func (d *Document) YAML() ([]byte, error) {
	data, err := yaml.Marshal(d.root.toNode())
	if err != nil {
		return nil, fmt.Errorf("failed to encode document as YAML: %w", err)
	}
	return data, nil
}

func (v *Value) toNode() *yaml.Node {
	switch v.kind {
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range v.fields {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
				f.Value.toNode())
		}
		return n
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.items {
			n.Content = append(n.Content, it.toNode())
		}
		return n
	case KindScalar:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: v.tag, Value: v.text}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

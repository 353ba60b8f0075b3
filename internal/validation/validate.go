package validation

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mwalther/cvgen/internal/document"
	"github.com/mwalther/cvgen/internal/schema"
	"github.com/mwalther/cvgen/internal/suggest"
)

// Validate checks a document against the schema. Schema-constraint
// violations become error findings sorted into schema declaration order;
// unrecognized fields become warning findings in document order, each
// unknown subtree reported once at its root.
func Validate(doc *document.Document, s *schema.Schema) (*Report, error) {
	docJSON, err := doc.JSON()
	if err != nil {
		return nil, &Error{Message: "failed to prepare document for validation", Cause: err}
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(docJSON))
	if err != nil {
		return nil, &Error{Message: "schema validation did not run", Cause: err}
	}

	// Paths already covered by an additionalProperties error must not be
	// re-reported as unknown-field warnings.
	reported := make(map[string]bool)

	type keyedFinding struct {
		finding Finding
		key     []int
	}
	keyed := make([]keyedFinding, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		path, message := describeResultError(re, s)
		if re.Type() == "additional_property_not_allowed" {
			reported[path] = true
		}
		keyed = append(keyed, keyedFinding{
			finding: Finding{Severity: SeverityError, Path: path, Message: message},
			key:     s.OrderKey(path),
		})
	}
	sort.SliceStable(keyed, func(i, j int) bool {
		return slices.Compare(keyed[i].key, keyed[j].key) < 0
	})

	report := &Report{Findings: make([]Finding, 0, len(keyed))}
	for _, kf := range keyed {
		report.Findings = append(report.Findings, kf.finding)
	}

	collectUnknownFields(doc.Root(), s.Root(), "", reported, report)
	return report, nil
}

// ValidateFile loads a YAML data file and validates it. An unreadable or
// unparseable file yields a failed report rather than an error, so broken
// input surfaces to the user the same way invalid input does.
func ValidateFile(path string, s *schema.Schema) (*document.Document, *Report, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, &Report{Findings: []Finding{{Severity: SeverityError, Message: err.Error()}}}, nil
	}
	report, err := Validate(doc, s)
	if err != nil {
		return nil, nil, err
	}
	return doc, report, nil
}

// describeResultError normalizes a gojsonschema error into a field path in
// dot/bracket notation and a user-facing message.
func describeResultError(re gojsonschema.ResultError, s *schema.Schema) (path, message string) {
	path = bracketPath(re.Field())
	switch re.Type() {
	case "required":
		property := detailString(re, "property")
		path = document.ChildPath(path, property)
		message = fmt.Sprintf("Required field '%s' is missing", property)
	case "invalid_type":
		message = fmt.Sprintf("Expected %s, got %s", detailString(re, "expected"), detailString(re, "given"))
	case "format":
		message = fmt.Sprintf("Invalid format: expected %s", detailString(re, "format"))
	case "enum":
		message = fmt.Sprintf("Value must be one of: %s", allowedValues(re, s, path))
	case "pattern":
		message = "Value does not match the required pattern"
	case "string_gte", "string_lte":
		message = fmt.Sprintf("String length validation failed: %s", re.Description())
	case "array_min_items", "array_max_items":
		message = fmt.Sprintf("Array size validation failed: %s", re.Description())
	case "additional_property_not_allowed":
		property := detailString(re, "property")
		path = document.ChildPath(path, property)
		message = fmt.Sprintf("Field '%s' is not allowed here", property)
	default:
		message = re.Description()
	}
	return path, message
}

// collectUnknownFields walks the document in source order alongside the
// schema tree. Unknown names at one level are reported before descending
// into known children; unknown subtrees are never entered, so each one
// produces a single warning at its root.
func collectUnknownFields(v *document.Value, n *schema.Node, path string, reported map[string]bool, report *Report) {
	if n == nil || v.Kind() != document.KindMapping || len(n.Properties) == 0 {
		return
	}

	if !n.AllowsUnknown() {
		for _, f := range v.Fields() {
			if _, known := n.Child(f.Name); known {
				continue
			}
			fieldPath := document.ChildPath(path, f.Name)
			if reported[fieldPath] {
				continue
			}
			finding := Finding{
				Severity: SeverityWarning,
				Path:     fieldPath,
				Message:  fmt.Sprintf("Unknown field '%s'", fieldPath),
			}
			if match, ok := suggest.Suggest(f.Name, n.FieldNames()); ok {
				finding.Suggestion = match
			}
			report.Findings = append(report.Findings, finding)
		}
	}

	for _, f := range v.Fields() {
		child, known := n.Child(f.Name)
		if !known {
			continue
		}
		fieldPath := document.ChildPath(path, f.Name)
		switch {
		case f.Value.Kind() == document.KindMapping:
			collectUnknownFields(f.Value, child, fieldPath, reported, report)
		case f.Value.Kind() == document.KindSequence && child.Items != nil:
			for i, item := range f.Value.Items() {
				collectUnknownFields(item, child.Items, document.IndexPath(fieldPath, i), reported, report)
			}
		}
	}
}

// bracketPath converts gojsonschema's dot-joined field paths into
// dot/bracket notation: "work_experience.0.position" becomes
// "work_experience[0].position". The root is the empty path.
func bracketPath(field string) string {
	if field == "" || field == "(root)" {
		return ""
	}
	var b strings.Builder
	for _, seg := range schema.SplitPath(field) {
		if isIndexSegment(seg) {
			b.WriteString("[")
			b.WriteString(seg)
			b.WriteString("]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndexSegment(s string) bool {
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

func detailString(re gojsonschema.ResultError, key string) string {
	v, ok := re.Details()[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// allowedValues prefers the schema tree's enum so values quote the way the
// author wrote them, falling back to the validator's own rendering.
func allowedValues(re gojsonschema.ResultError, s *schema.Schema, path string) string {
	if n := s.Resolve(path); n != nil && len(n.Enum) > 0 {
		quoted := make([]string, len(n.Enum))
		for i, v := range n.Enum {
			quoted[i] = "'" + v + "'"
		}
		return strings.Join(quoted, ", ")
	}
	return detailString(re, "allowed")
}

package document

import (
	"fmt"
	"os"
)

// LoadFile reads and parses a YAML data file from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ChildPath joins a parent path and a field name with a dot. The root has
// the empty path, so top-level fields are addressed by bare name.
func ChildPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// IndexPath addresses one element of a sequence, as in "work_experience[0]".
func IndexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

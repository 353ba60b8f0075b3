package schema

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// PhoneFormatChecker accepts phone numbers in the loose international
// notation CV files use: an optional leading +, then at least five digits
// that may be grouped with spaces, dots, dashes, slashes or parentheses.
type PhoneFormatChecker struct{}

// IsFormat implements gojsonschema.FormatChecker. Non-string values are
// left to the type validator.
func (PhoneFormatChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	rest := strings.TrimPrefix(strings.TrimSpace(s), "+")
	digits := 0
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '/' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 5
}

func init() {
	gojsonschema.FormatCheckers.Add("phone", PhoneFormatChecker{})
}

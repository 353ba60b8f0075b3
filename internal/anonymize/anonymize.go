// Package anonymize strips identifying fields from a CV document, the
// redaction step behind anonymous submissions.
package anonymize

import "github.com/mwalther/cvgen/internal/document"

// identityFields are the personal_info children that identify the person.
// Demographic fields (date_of_birth, nationality, gender) stay, as do all
// professional sections.
var identityFields = []string{"address", "phone", "mobile", "email", "homepage"}

// Anonymize returns a deep copy of the document with the personal name and
// all contact details removed. The input is never modified. The transform
// is idempotent: the fields are simply absent on a second pass.
func Anonymize(doc *document.Document) *document.Document {
	out := doc.Clone()
	root := out.Root()
	root.Delete("name")
	if info, ok := root.Get("personal_info"); ok {
		for _, name := range identityFields {
			info.Delete(name)
		}
	}
	return out
}

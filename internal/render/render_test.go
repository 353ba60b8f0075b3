package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalther/cvgen/internal/assets"
	"github.com/mwalther/cvgen/internal/document"
)

const fullCV = `
name: Erika Mustermann
personal_info:
  address: Heidestrasse 17, 51147 Koeln
  phone: "+49 221 1234567"
  mobile: "+49 171 9876543"
  email: erika@example.de
  homepage: https://erika.example.de
  date_of_birth: 1984-06-02
  nationality: German
  gender: female
job_applied_for: Senior Software Engineer
work_experience:
  - position: Software Engineer
    employer: ACME GmbH
    city: Koeln
    country: Germany
    start_date: 2019-04-01
    end_date: 2023-12-31
    activities:
      - Built data pipelines
      - Led a team of four
education:
  - title: MSc Computer Science
    organisation: University of Cologne
    start_date: 2010-10-01
languages:
  mother_tongue: German
  foreign_languages:
    - language: English
      listening: C1
      reading: C2
      spoken_interaction: B2
      spoken_production: B2
      writing: C1
skills:
  programming:
    - Go
    - Python
  databases:
    - PostgreSQL
`

func parse(t *testing.T, content string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(content))
	require.NoError(t, err)
	return doc
}

func renderDefault(t *testing.T, content string, anonymous bool) string {
	t.Helper()
	out, err := Render(Context{Doc: parse(t, content), Anonymous: anonymous}, assets.DefaultTemplate())
	require.NoError(t, err)
	return out
}

func TestEscape_SpecialCharacters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`50% & done_well`, `50\% \& done\_well`},
		{`C:\temp`, `C:\textbackslash{}temp`},
		{`{braces}`, `\{braces\}`},
		{`$5 #1`, `\$5 \#1`},
		{`a^b~c`, `a\textasciicircum{}b\textasciitilde{}c`},
		{`plain text stays`, `plain text stays`},
		{``, ``},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Escape(tc.in), tc.in)
	}
}

func TestEscape_BackslashIsNotReEscaped(t *testing.T) {
	// The braces introduced by the backslash replacement must come out
	// untouched.
	assert.Equal(t, `\textbackslash{}`, Escape(`\`))
	assert.Equal(t, `\textbackslash{}\{\}`, Escape(`\{}`))
}

func TestRender_FullDocument(t *testing.T) {
	out := renderDefault(t, fullCV, false)

	assert.Contains(t, out, "Erika Mustermann")
	assert.Contains(t, out, `Phone & +49 221 1234567`)
	assert.Contains(t, out, `Mobile & +49 171 9876543`)
	assert.Contains(t, out, "Application for {\\itshape Senior Software Engineer}")
	assert.Contains(t, out, "Software Engineer")
	assert.Contains(t, out, "ACME GmbH")
	assert.Contains(t, out, "Koeln, Germany")
	assert.Contains(t, out, `\item Built data pipelines`)
	assert.Contains(t, out, "MSc Computer Science")
	assert.Contains(t, out, "English & C1 & C2 & B2 & B2 & C1")
	assert.Contains(t, out, "programming:} Go, Python")
	assert.Contains(t, out, `\end{document}`)
}

func TestRender_EscapesUntrustedScalars(t *testing.T) {
	content := `
name: A & B_C 100%
work_experience:
  - position: C++ & Go developer_advocate
    employer: 50% GmbH
`
	out := renderDefault(t, content, false)

	assert.Contains(t, out, `A \& B\_C 100\%`)
	assert.Contains(t, out, `Go developer\_advocate`)
	assert.Contains(t, out, `50\% GmbH`)
	assert.NotContains(t, out, "A & B_C 100%")
}

func TestRender_EmptyWorkExperienceYieldsNoBlocks(t *testing.T) {
	content := `
name: A. Test
work_experience: []
education: []
`
	out := renderDefault(t, content, false)

	assert.NotContains(t, out, "Work experience")
	assert.NotContains(t, out, "Education and training")
	assert.Contains(t, out, "A. Test")
}

func TestRender_AnonymousModeSuppressesIdentity(t *testing.T) {
	out := renderDefault(t, fullCV, true)

	assert.Contains(t, out, WithheldName)
	assert.NotContains(t, out, "Erika Mustermann")
	assert.NotContains(t, out, "+49 221 1234567")
	assert.NotContains(t, out, "erika@example.de")
	assert.NotContains(t, out, "Heidestrasse")

	// Demographics and professional sections survive
	assert.Contains(t, out, "Nationality & German")
	assert.Contains(t, out, "ACME GmbH")
}

func TestRender_OptionalBlocksFollowPresence(t *testing.T) {
	minimal := `
name: A. Test
personal_info:
  phone: "+49 221 1234567"
`
	out := renderDefault(t, minimal, false)

	assert.Contains(t, out, "Phone &")
	assert.NotContains(t, out, "Mobile &")
	assert.NotContains(t, out, "Homepage &")
	assert.NotContains(t, out, "Application for")
	assert.NotContains(t, out, "Languages")
}

func TestRender_BrokenTemplate(t *testing.T) {
	_, err := Render(Context{Doc: parse(t, "name: X\n")}, []byte(`{{.Name`))

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Contains(t, tmplErr.Error(), "failed to parse template")
}

func TestRender_StructuralMismatch(t *testing.T) {
	content := `
name: A. Test
work_experience: not a list
`
	_, err := Render(Context{Doc: parse(t, content)}, assets.DefaultTemplate())

	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "work_experience", renderErr.Path)
	assert.True(t, errors.As(err, &renderErr))
}

func TestBuildTemplateData_IdentityOmittedWhenEmpty(t *testing.T) {
	data, err := BuildTemplateData(Context{Doc: parse(t, "name: A. Test\npersonal_info:\n  nationality: German\n")})
	require.NoError(t, err)

	assert.Nil(t, data.Identity)
	assert.Equal(t, "German", data.Nationality)
	assert.True(t, data.HasPersonalInfo())
}

func TestBuildTemplateData_SkillsKeepDocumentOrder(t *testing.T) {
	content := `
name: A. Test
skills:
  zebra_handling:
    - patience
  automation: scripting
`
	data, err := BuildTemplateData(Context{Doc: parse(t, content)})
	require.NoError(t, err)

	require.Len(t, data.Skills, 2)
	assert.Equal(t, `zebra\_handling`, data.Skills[0].Category)
	assert.Equal(t, []string{"patience"}, data.Skills[0].Entries)

	// A scalar category value renders as a single entry
	assert.Equal(t, "automation", data.Skills[1].Category)
	assert.Equal(t, []string{"scripting"}, data.Skills[1].Entries)
}

func TestBuildTemplateData_NonMappingRoot(t *testing.T) {
	_, err := BuildTemplateData(Context{Doc: parse(t, "- just\n- a\n- list\n")})

	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, renderErr.Error(), "document root must be a mapping")
}

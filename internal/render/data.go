package render

import "github.com/mwalther/cvgen/internal/document"

// WithheldName replaces the personal name in anonymous renderings.
const WithheldName = "[Name withheld for anonymity]"

// Context is the input to one rendering: the (possibly anonymized)
// document plus mode flags. It is consumed once and never persisted.
type Context struct {
	Doc       *document.Document
	Anonymous bool
}

// TemplateData is the fully escaped view of one CV handed to the template.
// Every string field is already LaTeX-safe.
type TemplateData struct {
	Anonymous     bool
	Name          string
	JobAppliedFor string

	// Identity is the contact block. It is nil in anonymous mode, which
	// suppresses the block regardless of what the document contains.
	Identity    *Identity
	DateOfBirth string
	Nationality string
	Gender      string

	WorkExperience   []Experience
	Education        []Education
	MotherTongue     string
	ForeignLanguages []LanguageSkill
	Skills           []SkillCategory
}

// Identity holds the contact details of the non-anonymous rendering.
type Identity struct {
	Address  string
	Phone    string
	Mobile   string
	Email    string
	Homepage string
}

// Experience is one work history entry.
type Experience struct {
	Position   string
	Employer   string
	Location   string
	StartDate  string
	EndDate    string
	Activities []string
}

// Education is one education or training entry.
type Education struct {
	Title        string
	Organisation string
	Location     string
	StartDate    string
	EndDate      string
	Subjects     []string
}

// LanguageSkill is one foreign language row with CEFR grades.
type LanguageSkill struct {
	Language          string
	Listening         string
	Reading           string
	SpokenInteraction string
	SpokenProduction  string
	Writing           string
}

// SkillCategory is one named skill group in document order.
type SkillCategory struct {
	Category string
	Entries  []string
}

// HasPersonalInfo gates the personal information table in the template.
func (d *TemplateData) HasPersonalInfo() bool {
	if d.Identity != nil {
		return true
	}
	return d.DateOfBirth != "" || d.Nationality != "" || d.Gender != ""
}

// HasLanguages gates the language section in the template.
func (d *TemplateData) HasLanguages() bool {
	return d.MotherTongue != "" || len(d.ForeignLanguages) > 0
}

// BuildTemplateData maps the document onto the template data model,
// escaping every scalar on the way in. Sections with the wrong shape (for
// example a scalar where a sequence is expected) fail with an *Error
// carrying the offending path; absent optional fields map to empty values.
func BuildTemplateData(ctx Context) (*TemplateData, error) {
	root := ctx.Doc.Root()
	if root.Kind() != document.KindMapping {
		return nil, &Error{Message: "document root must be a mapping"}
	}

	data := &TemplateData{Anonymous: ctx.Anonymous}
	if ctx.Anonymous {
		data.Name = WithheldName
	} else {
		data.Name = Escape(scalar(root, "name"))
	}
	data.JobAppliedFor = Escape(scalar(root, "job_applied_for"))

	if err := buildPersonalInfo(root, ctx.Anonymous, data); err != nil {
		return nil, err
	}

	work, err := experienceEntries(root)
	if err != nil {
		return nil, err
	}
	data.WorkExperience = work

	education, err := educationEntries(root)
	if err != nil {
		return nil, err
	}
	data.Education = education

	if err := buildLanguages(root, data); err != nil {
		return nil, err
	}
	if err := buildSkills(root, data); err != nil {
		return nil, err
	}

	return data, nil
}

func buildPersonalInfo(root *document.Value, anonymous bool, data *TemplateData) error {
	info, ok := root.Get("personal_info")
	if !ok || info.IsNull() {
		return nil
	}
	if info.Kind() != document.KindMapping {
		return &Error{Path: "personal_info", Message: "expected a mapping"}
	}

	if !anonymous {
		identity := &Identity{
			Address:  Escape(scalar(info, "address")),
			Phone:    Escape(scalar(info, "phone")),
			Mobile:   Escape(scalar(info, "mobile")),
			Email:    Escape(scalar(info, "email")),
			Homepage: Escape(scalar(info, "homepage")),
		}
		if *identity != (Identity{}) {
			data.Identity = identity
		}
	}

	data.DateOfBirth = Escape(scalar(info, "date_of_birth"))
	data.Nationality = Escape(scalar(info, "nationality"))
	data.Gender = Escape(scalar(info, "gender"))
	return nil
}

func experienceEntries(root *document.Value) ([]Experience, error) {
	section, ok := root.Get("work_experience")
	if !ok || section.IsNull() {
		return nil, nil
	}
	if section.Kind() != document.KindSequence {
		return nil, &Error{Path: "work_experience", Message: "expected a sequence"}
	}
	entries := make([]Experience, 0, section.Len())
	for i, item := range section.Items() {
		if item.Kind() != document.KindMapping {
			return nil, &Error{Path: document.IndexPath("work_experience", i), Message: "expected a mapping"}
		}
		entries = append(entries, Experience{
			Position:   Escape(scalar(item, "position")),
			Employer:   Escape(scalar(item, "employer")),
			Location:   location(item),
			StartDate:  Escape(scalar(item, "start_date")),
			EndDate:    Escape(scalar(item, "end_date")),
			Activities: stringList(item, "activities"),
		})
	}
	return entries, nil
}

func educationEntries(root *document.Value) ([]Education, error) {
	section, ok := root.Get("education")
	if !ok || section.IsNull() {
		return nil, nil
	}
	if section.Kind() != document.KindSequence {
		return nil, &Error{Path: "education", Message: "expected a sequence"}
	}
	entries := make([]Education, 0, section.Len())
	for i, item := range section.Items() {
		if item.Kind() != document.KindMapping {
			return nil, &Error{Path: document.IndexPath("education", i), Message: "expected a mapping"}
		}
		entries = append(entries, Education{
			Title:        Escape(scalar(item, "title")),
			Organisation: Escape(scalar(item, "organisation")),
			Location:     location(item),
			StartDate:    Escape(scalar(item, "start_date")),
			EndDate:      Escape(scalar(item, "end_date")),
			Subjects:     stringList(item, "subjects"),
		})
	}
	return entries, nil
}

func buildLanguages(root *document.Value, data *TemplateData) error {
	langs, ok := root.Get("languages")
	if !ok || langs.IsNull() {
		return nil
	}
	if langs.Kind() != document.KindMapping {
		return &Error{Path: "languages", Message: "expected a mapping"}
	}
	data.MotherTongue = Escape(scalar(langs, "mother_tongue"))

	foreign, ok := langs.Get("foreign_languages")
	if !ok || foreign.IsNull() {
		return nil
	}
	if foreign.Kind() != document.KindSequence {
		return &Error{Path: "languages.foreign_languages", Message: "expected a sequence"}
	}
	for i, item := range foreign.Items() {
		if item.Kind() != document.KindMapping {
			return &Error{Path: document.IndexPath("languages.foreign_languages", i), Message: "expected a mapping"}
		}
		data.ForeignLanguages = append(data.ForeignLanguages, LanguageSkill{
			Language:          Escape(scalar(item, "language")),
			Listening:         Escape(scalar(item, "listening")),
			Reading:           Escape(scalar(item, "reading")),
			SpokenInteraction: Escape(scalar(item, "spoken_interaction")),
			SpokenProduction:  Escape(scalar(item, "spoken_production")),
			Writing:           Escape(scalar(item, "writing")),
		})
	}
	return nil
}

func buildSkills(root *document.Value, data *TemplateData) error {
	skills, ok := root.Get("skills")
	if !ok || skills.IsNull() {
		return nil
	}
	if skills.Kind() != document.KindMapping {
		return &Error{Path: "skills", Message: "expected a mapping"}
	}
	for _, f := range skills.Fields() {
		category := SkillCategory{Category: Escape(f.Name)}
		switch f.Value.Kind() {
		case document.KindSequence:
			for _, item := range f.Value.Items() {
				category.Entries = append(category.Entries, Escape(item.Text()))
			}
		case document.KindScalar:
			category.Entries = append(category.Entries, Escape(f.Value.Text()))
		}
		data.Skills = append(data.Skills, category)
	}
	return nil
}

// scalar returns the text of a scalar child, or "" when the child is
// absent or not a scalar.
func scalar(v *document.Value, name string) string {
	child, ok := v.Get(name)
	if !ok {
		return ""
	}
	return child.Text()
}

func stringList(v *document.Value, name string) []string {
	child, ok := v.Get(name)
	if !ok || child.Kind() != document.KindSequence {
		return nil
	}
	out := make([]string, 0, child.Len())
	for _, item := range child.Items() {
		out = append(out, Escape(item.Text()))
	}
	return out
}

func location(v *document.Value) string {
	city := scalar(v, "city")
	country := scalar(v, "country")
	switch {
	case city != "" && country != "":
		return Escape(city + ", " + country)
	case city != "":
		return Escape(city)
	default:
		return Escape(country)
	}
}

package signup

import (
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
)

// FreelancerMinSkills is the number of skills a freelancer must pick before submitting.
const FreelancerMinSkills = 3

// Field names accepted by DetailsController.SetField.
const (
	FieldJobTitle       = "jobTitle"
	FieldSpecialization = "specialization"
	FieldCompanyName    = "companyName"
)

type FieldKind string

const (
	FieldKindText   FieldKind = "text"
	FieldKindSelect FieldKind = "select"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input of the details form.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Kind        FieldKind `json:"kind"`
	Required    bool      `json:"required"`
	Options     []Option  `json:"options,omitempty"`
}

// Variant is everything step 2 presents for one account type: copy, form
// schema and the tag picker's candidate list.
type Variant struct {
	AccountType AccountType `json:"accountType"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Fields      []Field     `json:"fields"`
	TagLabel    string      `json:"tagLabel"`
	TagHint     string      `json:"tagHint"`
	Candidates  []string    `json:"candidates"`
	MinTags     int         `json:"minTags"`
}

var freelancerSpecializations = []Option{
	{Value: "web-development", Label: "Web Development"},
	{Value: "mobile-development", Label: "Mobile Development"},
	{Value: "design", Label: "Design & Creative"},
	{Value: "writing", Label: "Writing & Translation"},
	{Value: "marketing", Label: "Sales & Marketing"},
	{Value: "data", Label: "Data Science & Analytics"},
}

var clientIndustries = []Option{
	{Value: "technology", Label: "Technology"},
	{Value: "healthcare", Label: "Healthcare"},
	{Value: "finance", Label: "Finance"},
	{Value: "education", Label: "Education"},
	{Value: "retail", Label: "Retail & E-commerce"},
	{Value: "other", Label: "Other"},
}

var freelancerSkills = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX Design",
	"Graphic Design",
	"Content Writing",
	"Copywriting",
	"SEO",
	"Social Media Marketing",
	"Data Analysis",
	"Video Editing",
}

var clientServices = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX Design",
	"SEO",
	"Branding",
	"Content Writing",
	"Social Media Marketing",
	"Data Analysis",
	"Video Production",
	"Virtual Assistance",
}

// VariantFor selects the step-2 presentation for an account type.
func VariantFor(t AccountType) (Variant, error) {
	switch t {
	case AccountTypeFreelancer:
		return Variant{
			AccountType: t,
			Title:       "Tell us about your work",
			Subtitle:    "Clients search by title, specialization and skills.",
			Fields: []Field{
				{Name: FieldJobTitle, Label: "Job title", Placeholder: "e.g. Full-stack developer", Kind: FieldKindText, Required: true},
				{Name: FieldSpecialization, Label: "Specialization", Kind: FieldKindSelect, Required: true, Options: copyOptions(freelancerSpecializations)},
			},
			TagLabel:   "Skills",
			TagHint:    "Select at least 3 skills",
			Candidates: copyStrings(freelancerSkills),
			MinTags:    FreelancerMinSkills,
		}, nil
	case AccountTypeClient:
		return Variant{
			AccountType: t,
			Title:       "Tell us about your company",
			Subtitle:    "We use this to match you with the right freelancers.",
			Fields: []Field{
				{Name: FieldCompanyName, Label: "Company name", Placeholder: "e.g. Acme Inc.", Kind: FieldKindText, Required: true},
				{Name: FieldSpecialization, Label: "Industry", Kind: FieldKindSelect, Required: true, Options: copyOptions(clientIndustries)},
			},
			TagLabel:   "Services needed",
			TagHint:    "Pick the services you are hiring for",
			Candidates: copyStrings(clientServices),
			MinTags:    0,
		}, nil
	default:
		return Variant{}, apperrors.Newf(apperrors.ErrCodeInvalidAccountType, "unknown account type %q", t)
	}
}

// Field looks up a field of the variant by name.
func (v Variant) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsCandidate reports whether item is one of the variant's tag candidates.
func (v Variant) IsCandidate(item string) bool {
	for _, c := range v.Candidates {
		if c == item {
			return true
		}
	}
	return false
}

// MissingFields lists required fields left empty in d, in schema order.
func (v Variant) MissingFields(d DetailsDraft) []string {
	var missing []string
	for _, f := range v.Fields {
		if f.Required && fieldValue(d, f.Name) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

func fieldValue(d DetailsDraft, name string) string {
	switch name {
	case FieldJobTitle:
		return d.JobTitle
	case FieldSpecialization:
		return d.Specialization
	case FieldCompanyName:
		return d.CompanyName
	}
	return ""
}

func (f Field) allows(value string) bool {
	if f.Kind != FieldKindSelect || value == "" {
		return true
	}
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func copyOptions(in []Option) []Option {
	out := make([]Option, len(in))
	copy(out, in)
	return out
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

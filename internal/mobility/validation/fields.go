package validation

import (
	"sort"

	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/models"
)

// Condition decides whether a field is required for the given form. It
// must not retain or modify the form.
type Condition func(spec FieldSpec, f *models.ApplicationForm) bool

// FieldSpec describes a field that may enter the required set. A non-nil
// Condition overrides the static Required flag.
type FieldSpec struct {
	Name      string
	Required  bool
	Condition Condition
}

// IsRequired evaluates the spec against f.
func (s FieldSpec) IsRequired(f *models.ApplicationForm) bool {
	if s.Condition != nil {
		return s.Condition(s, f)
	}
	return s.Required
}

func nationalityIsOther(_ FieldSpec, f *models.ApplicationForm) bool {
	return f.Nationality == models.NationalityOther
}

func choiceIsSet(choice string) Condition {
	return func(_ FieldSpec, f *models.ApplicationForm) bool {
		if choice == form.FieldChoice2 {
			return f.Choice2.SchoolName.IsSet()
		}
		return f.Choice1.SchoolName.IsSet()
	}
}

var personalSpecs = []FieldSpec{
	{Name: form.FieldFirstName, Required: true},
	{Name: form.FieldLastName, Required: true},
	{Name: form.FieldNationality, Required: true},
	{Name: form.FieldEmail, Required: true},
}

var slotConditions = map[models.Slot]Condition{
	models.SlotResidencePermit:         nationalityIsOther,
	models.SlotMotivationLetterChoice1: choiceIsSet(form.FieldChoice1),
	models.SlotMotivationLetterChoice2: choiceIsSet(form.FieldChoice2),
}

var fileSpecs = func() []FieldSpec {
	slots := form.Slots()
	specs := make([]FieldSpec, 0, len(slots))
	for _, s := range slots {
		specs = append(specs, FieldSpec{
			Name:      string(s.Slot),
			Required:  s.Required,
			Condition: slotConditions[s.Slot],
		})
	}
	return specs
}()

// FileSpecs returns the file slot specs with their conditions attached.
func FileSpecs() []FieldSpec {
	return append([]FieldSpec(nil), fileSpecs...)
}

// FieldSet is a set of field references ("firstName", "resumePdf",
// "choice1.academicPath").
type FieldSet map[string]struct{}

func (s FieldSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s FieldSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RequiredFields computes the fields that must hold a value for f to be
// submittable. Sub-fields of an unset choice are never required, whatever
// the policy says. Choices naming an unknown school contribute nothing;
// ValidateAll reports them.
func RequiredFields(f *models.ApplicationForm) FieldSet {
	set := FieldSet{}
	for _, s := range personalSpecs {
		if s.IsRequired(f) {
			set[s.Name] = struct{}{}
		}
	}
	for _, s := range fileSpecs {
		if s.IsRequired(f) {
			set[s.Name] = struct{}{}
		}
	}
	addChoiceFields(set, form.FieldChoice1, f.Choice1)
	addChoiceFields(set, form.FieldChoice2, f.Choice2)
	return set
}

func addChoiceFields(set FieldSet, name string, c models.SchoolChoice) {
	if !c.SchoolName.IsSet() {
		return
	}
	p, err := policy.For(c.SchoolName)
	if err != nil {
		return
	}
	if p.AcademicPath.Required {
		set[form.ChoiceField(name, form.SubAcademicPath)] = struct{}{}
	}
	if p.CareerPath.Required {
		set[form.ChoiceField(name, form.SubCareerPath)] = struct{}{}
	}
	if p.Electives.Required {
		set[form.ChoiceField(name, form.SubElectives)] = struct{}{}
	}
}

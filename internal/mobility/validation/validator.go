// Package validation decides which fields of an application are required,
// validates their values and tells whether the form can be submitted.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/models"
)

const msgRequired = "This field is required"

// Rule returns an error message for value, or "" when value is valid.
type Rule func(value string) string

// Required rejects blank values.
func Required(value string) string {
	if strings.TrimSpace(value) == "" {
		return msgRequired
	}
	return ""
}

// OrganizationalEmail accepts only addresses at domain. The domain is
// matched literally.
func OrganizationalEmail(domain string) Rule {
	pattern := regexp.MustCompile(`^[^\s@]+@` + regexp.QuoteMeta(domain) + `$`)
	msg := fmt.Sprintf("Email must be in format: firstname.lastname@%s", domain)
	return func(value string) string {
		if !pattern.MatchString(value) {
			return msg
		}
		return ""
	}
}

func knownNationality(value string) string {
	if value != "" && !models.Nationality(value).Valid() {
		return "Please select a valid nationality"
	}
	return ""
}

// Validator runs field rules. It holds no per-form state and is safe for
// concurrent use.
type Validator struct {
	domain string
	rules  map[string][]Rule
}

// NewValidator builds the validator for applicants of domain.
func NewValidator(domain string) *Validator {
	return &Validator{
		domain: domain,
		rules: map[string][]Rule{
			form.FieldFirstName:   {Required},
			form.FieldLastName:    {Required},
			form.FieldNationality: {Required, knownNationality},
			form.FieldEmail:       {Required, OrganizationalEmail(domain)},
		},
	}
}

func (v *Validator) Domain() string {
	return v.domain
}

// ValidateField returns the first failing rule's message for name, or "".
// Fields without rules are always valid.
func (v *Validator) ValidateField(name, value string) string {
	for _, rule := range v.rules[name] {
		if msg := rule(value); msg != "" {
			return msg
		}
	}
	return ""
}

// ValidateAll recomputes the full error map of f. Every key of
// form.InitialErrors is written.
func (v *Validator) ValidateAll(f *models.ApplicationForm) map[string]string {
	errs := form.InitialErrors()

	for _, name := range form.PersonalFields() {
		value, _ := form.Value(f, name)
		errs[name] = v.ValidateField(name, value)
	}

	for _, spec := range fileSpecs {
		if spec.IsRequired(f) && !f.File(models.Slot(spec.Name)).Present() {
			errs[spec.Name] = msgRequired
		}
	}

	errs[form.FieldChoice1] = validateChoice(f.Choice1, true)
	errs[form.FieldChoice2] = validateChoice(f.Choice2, false)
	return errs
}

func validateChoice(c models.SchoolChoice, mustBeSet bool) string {
	if !c.SchoolName.IsSet() {
		if mustBeSet {
			return "Please select a school"
		}
		return ""
	}

	p, err := policy.For(c.SchoolName)
	if err != nil {
		return err.Error()
	}

	checks := []struct {
		req   models.FieldRequirement
		value string
		multi bool
	}{
		{p.AcademicPath, c.AcademicPath, false},
		{p.CareerPath, c.CareerPath, false},
		{p.Electives, c.Electives, true},
	}
	for _, chk := range checks {
		value := strings.TrimSpace(chk.value)
		if chk.req.Required && value == "" {
			return fmt.Sprintf("%s is required for %s", chk.req.Label, policy.Label(c.SchoolName))
		}
		if len(chk.req.Options) == 0 || value == "" {
			continue
		}
		values := []string{value}
		if chk.multi {
			values = form.SplitElectives(value)
		}
		for _, val := range values {
			if !contains(chk.req.Options, val) {
				return fmt.Sprintf("%s %q is not offered by %s", chk.req.Label, val, policy.Label(c.SchoolName))
			}
		}
	}
	return ""
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// IsSubmittable reports whether f can be submitted given errs. It depends
// on its arguments only.
func IsSubmittable(f *models.ApplicationForm, errs map[string]string) bool {
	if !f.Choice1.SchoolName.IsSet() {
		return false
	}
	for name := range RequiredFields(f) {
		if !form.HasValue(f, name) {
			return false
		}
	}
	for _, msg := range errs {
		if msg != "" {
			return false
		}
	}
	return true
}

// Result bundles a full evaluation of a form.
type Result struct {
	Errors         map[string]string `json:"errors"`
	RequiredFields []string          `json:"requiredFields"`
	Submittable    bool              `json:"submittable"`
}

// Evaluate runs ValidateAll, RequiredFields and IsSubmittable on f.
func (v *Validator) Evaluate(f *models.ApplicationForm) Result {
	errs := v.ValidateAll(f)
	return Result{
		Errors:         errs,
		RequiredFields: RequiredFields(f).Sorted(),
		Submittable:    IsSubmittable(f, errs),
	}
}

// Package form defines the shape of an application: field names, file
// slots and the initial state shown when the form is opened.
package form

import (
	"path/filepath"
	"strings"

	"mobility-portal/internal/models"
)

// Personal and choice field names, as used in error maps and required sets.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldNationality = "nationality"
	FieldEmail       = "email"
	FieldChoice1     = "choice1"
	FieldChoice2     = "choice2"
)

// Choice sub-field suffixes.
const (
	SubAcademicPath = "academicPath"
	SubCareerPath   = "careerPath"
	SubElectives    = "electives"
)

// ChoiceField builds the reference of a choice sub-field, e.g.
// "choice2.careerPath".
func ChoiceField(choice, sub string) string {
	return choice + "." + sub
}

// PersonalFields lists the personal fields in display order.
func PersonalFields() []string {
	return []string{FieldFirstName, FieldLastName, FieldNationality, FieldEmail}
}

// SlotSpec is the static description of a file slot. Conditional slots are
// resolved by the validation package; Required here is the static flag.
type SlotSpec struct {
	Slot      models.Slot `json:"slot"`
	URLKey    string      `json:"urlKey"`
	Extension string      `json:"extension"`
	Required  bool        `json:"required"`
}

var slots = []SlotSpec{
	{models.SlotApplicationFormEcc, "applicationFormEccUrl", "docx", true},
	{models.SlotApplicationFormGec, "applicationFormGecUrl", "docx", true},
	{models.SlotResumePdf, "resumeUrl", "pdf", true},
	{models.SlotS5Transcripts, "s5TranscriptsUrl", "pdf", true},
	{models.SlotS6Transcripts, "s6TranscriptsUrl", "pdf", true},
	{models.SlotS7Transcripts, "s7TranscriptsUrl", "pdf", true},
	{models.SlotS8Transcripts, "s8TranscriptsUrl", "pdf", true},
	{models.SlotResidencePermit, "residencePermitUrl", "pdf", false},
	{models.SlotMotivationLetterChoice1, "motivationLetterChoice1Url", "pdf", false},
	{models.SlotMotivationLetterChoice2, "motivationLetterChoice2Url", "pdf", false},
	{models.SlotFrenchLevelCertificate, "frenchLevelCertificateUrl", "pdf", true},
	{models.SlotEnglishLevelCertificate, "englishLevelCertificateUrl", "pdf", true},
	{models.SlotPasseportPdf, "passeportUrl", "pdf", true},
	{models.SlotOtherFilesPdf, "otherFilesPdfUrl", "pdf", false},
}

// Slots returns every file slot in display order.
func Slots() []SlotSpec {
	return append([]SlotSpec(nil), slots...)
}

// LookupSlot finds the spec of a slot by name.
func LookupSlot(name string) (SlotSpec, bool) {
	for _, s := range slots {
		if string(s.Slot) == name {
			return s, true
		}
	}
	return SlotSpec{}, false
}

// MotivationLetterSlot returns the slot holding the letter for choice
// ("choice1" or "choice2").
func MotivationLetterSlot(choice string) models.Slot {
	if choice == FieldChoice2 {
		return models.SlotMotivationLetterChoice2
	}
	return models.SlotMotivationLetterChoice1
}

// AcceptsFile reports whether filename has the extension the slot expects.
func (s SlotSpec) AcceptsFile(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext == s.Extension
}

// New returns the form shown to a user opening the application page.
func New(email string) *models.ApplicationForm {
	return &models.ApplicationForm{
		Nationality: models.NationalityMoroccan,
		Email:       email,
		Choice1:     models.UnsetChoice(),
		Choice2:     models.UnsetChoice(),
		Files:       map[models.Slot]*models.File{},
	}
}

// FromRecord rebuilds the form a stored submission was made from. Files
// carry their stored URL and no content.
func FromRecord(data models.SubmissionData) *models.ApplicationForm {
	f := &models.ApplicationForm{
		FirstName:   data.FirstName,
		LastName:    data.LastName,
		Nationality: data.Nationality,
		Email:       data.Email,
		Choice1:     data.Choice1,
		Choice2:     data.Choice2,
		Files:       map[models.Slot]*models.File{},
	}
	for _, s := range slots {
		if url := data.FileURLs.Get(s.Slot); url != "" {
			f.Files[s.Slot] = &models.File{Name: string(s.Slot) + "." + s.Extension, URL: url}
		}
	}
	return f
}

// InitialErrors returns an error map with every key present and empty.
func InitialErrors() map[string]string {
	errs := make(map[string]string, len(slots)+6)
	for _, f := range PersonalFields() {
		errs[f] = ""
	}
	errs[FieldChoice1] = ""
	errs[FieldChoice2] = ""
	for _, s := range slots {
		errs[string(s.Slot)] = ""
	}
	return errs
}

// Value returns the scalar value of a personal or choice field reference,
// and false when ref names no scalar field.
func Value(f *models.ApplicationForm, ref string) (string, bool) {
	switch ref {
	case FieldFirstName:
		return f.FirstName, true
	case FieldLastName:
		return f.LastName, true
	case FieldNationality:
		return string(f.Nationality), true
	case FieldEmail:
		return f.Email, true
	}

	choice, sub, ok := strings.Cut(ref, ".")
	if !ok {
		return "", false
	}
	var c models.SchoolChoice
	switch choice {
	case FieldChoice1:
		c = f.Choice1
	case FieldChoice2:
		c = f.Choice2
	default:
		return "", false
	}
	switch sub {
	case "schoolName":
		return string(c.SchoolName), true
	case SubAcademicPath:
		return c.AcademicPath, true
	case SubCareerPath:
		return c.CareerPath, true
	case SubElectives:
		return c.Electives, true
	}
	return "", false
}

// HasValue reports whether ref holds a non-empty value: a non-blank scalar
// or a present file.
func HasValue(f *models.ApplicationForm, ref string) bool {
	if v, ok := Value(f, ref); ok {
		return strings.TrimSpace(v) != ""
	}
	if _, ok := LookupSlot(ref); ok {
		return f.File(models.Slot(ref)).Present()
	}
	return false
}

// SplitElectives splits a semicolon separated electives list, dropping
// blank entries.
func SplitElectives(electives string) []string {
	var out []string
	for _, e := range strings.Split(electives, ";") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

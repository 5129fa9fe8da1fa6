// internal/models/form.go
package models

// Slot names a file upload field of the application form.
type Slot string

const (
	SlotApplicationFormEcc      Slot = "applicationFormEcc"
	SlotApplicationFormGec      Slot = "applicationFormGec"
	SlotResumePdf               Slot = "resumePdf"
	SlotS5Transcripts           Slot = "s5Transcripts"
	SlotS6Transcripts           Slot = "s6Transcripts"
	SlotS7Transcripts           Slot = "s7Transcripts"
	SlotS8Transcripts           Slot = "s8Transcripts"
	SlotResidencePermit         Slot = "residencePermit"
	SlotMotivationLetterChoice1 Slot = "motivationLetterChoice1"
	SlotMotivationLetterChoice2 Slot = "motivationLetterChoice2"
	SlotFrenchLevelCertificate  Slot = "frenchLevelCertificate"
	SlotEnglishLevelCertificate Slot = "englishLevelCertificate"
	SlotPasseportPdf            Slot = "passeportPdf"
	SlotOtherFilesPdf           Slot = "otherFilesPdf"
)

// File is an uploaded document. Size is set by the client for validation
// previews; Data is only populated on submit. URL is set on files that are
// already stored.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
}

// Present reports whether f holds a non-empty or stored document.
func (f *File) Present() bool {
	return f != nil && (f.Size > 0 || len(f.Data) > 0 || f.URL != "")
}

// ApplicationForm is an in-progress application.
type ApplicationForm struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Nationality Nationality    `json:"nationality"`
	Email       string         `json:"email"`
	Choice1     SchoolChoice   `json:"choice1"`
	Choice2     SchoolChoice   `json:"choice2"`
	Files       map[Slot]*File `json:"files,omitempty"`
}

// File returns the document attached to slot, or nil.
func (f *ApplicationForm) File(slot Slot) *File {
	if f.Files == nil {
		return nil
	}
	return f.Files[slot]
}

// Attach sets or replaces the document in slot. A nil file clears it.
func (f *ApplicationForm) Attach(slot Slot, file *File) {
	if file == nil {
		delete(f.Files, slot)
		return
	}
	if f.Files == nil {
		f.Files = make(map[Slot]*File)
	}
	f.Files[slot] = file
}

// Clone copies the form. Files are shared since they are never mutated
// after attachment.
func (f *ApplicationForm) Clone() *ApplicationForm {
	out := *f
	out.Files = make(map[Slot]*File, len(f.Files))
	for k, v := range f.Files {
		out.Files[k] = v
	}
	return &out
}

// internal/models/submission.go
package models

// FileURLs holds one URL per uploaded slot. Slots that were not uploaded
// are left empty and omitted from JSON.
type FileURLs struct {
	ApplicationFormEccURL      string `json:"applicationFormEccUrl,omitempty"`
	ApplicationFormGecURL      string `json:"applicationFormGecUrl,omitempty"`
	ResumeURL                  string `json:"resumeUrl,omitempty"`
	S5TranscriptsURL           string `json:"s5TranscriptsUrl,omitempty"`
	S6TranscriptsURL           string `json:"s6TranscriptsUrl,omitempty"`
	S7TranscriptsURL           string `json:"s7TranscriptsUrl,omitempty"`
	S8TranscriptsURL           string `json:"s8TranscriptsUrl,omitempty"`
	ResidencePermitURL         string `json:"residencePermitUrl,omitempty"`
	MotivationLetterChoice1URL string `json:"motivationLetterChoice1Url,omitempty"`
	MotivationLetterChoice2URL string `json:"motivationLetterChoice2Url,omitempty"`
	FrenchLevelCertificateURL  string `json:"frenchLevelCertificateUrl,omitempty"`
	EnglishLevelCertificateURL string `json:"englishLevelCertificateUrl,omitempty"`
	PasseportURL               string `json:"passeportUrl,omitempty"`
	OtherFilesPdfURL           string `json:"otherFilesPdfUrl,omitempty"`
}

func (u *FileURLs) field(slot Slot) *string {
	switch slot {
	case SlotApplicationFormEcc:
		return &u.ApplicationFormEccURL
	case SlotApplicationFormGec:
		return &u.ApplicationFormGecURL
	case SlotResumePdf:
		return &u.ResumeURL
	case SlotS5Transcripts:
		return &u.S5TranscriptsURL
	case SlotS6Transcripts:
		return &u.S6TranscriptsURL
	case SlotS7Transcripts:
		return &u.S7TranscriptsURL
	case SlotS8Transcripts:
		return &u.S8TranscriptsURL
	case SlotResidencePermit:
		return &u.ResidencePermitURL
	case SlotMotivationLetterChoice1:
		return &u.MotivationLetterChoice1URL
	case SlotMotivationLetterChoice2:
		return &u.MotivationLetterChoice2URL
	case SlotFrenchLevelCertificate:
		return &u.FrenchLevelCertificateURL
	case SlotEnglishLevelCertificate:
		return &u.EnglishLevelCertificateURL
	case SlotPasseportPdf:
		return &u.PasseportURL
	case SlotOtherFilesPdf:
		return &u.OtherFilesPdfURL
	}
	return nil
}

// Set records url for slot. It reports false for an unknown slot.
func (u *FileURLs) Set(slot Slot, url string) bool {
	p := u.field(slot)
	if p == nil {
		return false
	}
	*p = url
	return true
}

// Get returns the URL stored for slot, or "".
func (u *FileURLs) Get(slot Slot) string {
	if p := u.field(slot); p != nil {
		return *p
	}
	return ""
}

// SubmissionData is the record written by the submission builder.
type SubmissionData struct {
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Nationality Nationality  `json:"nationality"`
	Email       string       `json:"email"`
	Choice1     SchoolChoice `json:"choice1"`
	Choice2     SchoolChoice `json:"choice2"`
	FileURLs
	// CreatedAt is RFC 3339 in UTC.
	CreatedAt string `json:"createdAt"`
}

// SubmissionMetaDb is a stored submission as returned by the record store.
type SubmissionMetaDb struct {
	SubmissionData
	DatabaseID string `json:"databaseId"`
}

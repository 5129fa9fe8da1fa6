package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobility-portal/internal/models"
)

func TestNew_InitialState(t *testing.T) {
	f := New("jane.doe@centrale-casablanca.ma")

	assert.Equal(t, models.NationalityMoroccan, f.Nationality)
	assert.Equal(t, "jane.doe@centrale-casablanca.ma", f.Email)
	assert.Equal(t, models.UnsetChoice(), f.Choice1)
	assert.Equal(t, models.UnsetChoice(), f.Choice2)
	assert.Empty(t, f.Files)
}

func TestInitialErrors_CoversEveryKey(t *testing.T) {
	errs := InitialErrors()

	for _, k := range []string{"firstName", "lastName", "nationality", "email", "choice1", "choice2"} {
		v, ok := errs[k]
		require.True(t, ok, k)
		assert.Empty(t, v)
	}
	for _, s := range Slots() {
		v, ok := errs[string(s.Slot)]
		require.True(t, ok, s.Slot)
		assert.Empty(t, v)
	}
}

func TestSlots_URLKeys(t *testing.T) {
	keys := map[models.Slot]string{}
	for _, s := range Slots() {
		keys[s.Slot] = s.URLKey
	}
	assert.Len(t, keys, 14)
	assert.Equal(t, "resumeUrl", keys[models.SlotResumePdf])
	assert.Equal(t, "passeportUrl", keys[models.SlotPasseportPdf])
	assert.Equal(t, "otherFilesPdfUrl", keys[models.SlotOtherFilesPdf])
}

func TestSlotSpec_AcceptsFile(t *testing.T) {
	ecc, ok := LookupSlot("applicationFormEcc")
	require.True(t, ok)
	assert.True(t, ecc.AcceptsFile("form.DOCX"))
	assert.False(t, ecc.AcceptsFile("form.pdf"))

	resume, ok := LookupSlot("resumePdf")
	require.True(t, ok)
	assert.True(t, resume.AcceptsFile("cv.pdf"))
	assert.False(t, resume.AcceptsFile("cv"))

	_, ok = LookupSlot("photo")
	assert.False(t, ok)
}

func TestHasValue(t *testing.T) {
	f := New("a@b.c")
	f.FirstName = "   "
	f.Choice1 = models.SchoolChoice{SchoolName: models.SchoolCentraleLyon, AcademicPath: "Energy"}
	f.Attach(models.SlotResumePdf, &models.File{Name: "cv.pdf", Size: 10})
	f.Attach(models.SlotPasseportPdf, &models.File{Name: "empty.pdf"})

	assert.False(t, HasValue(f, FieldFirstName))
	assert.True(t, HasValue(f, FieldEmail))
	assert.True(t, HasValue(f, ChoiceField(FieldChoice1, SubAcademicPath)))
	assert.False(t, HasValue(f, ChoiceField(FieldChoice1, SubCareerPath)))
	assert.True(t, HasValue(f, "resumePdf"))
	assert.False(t, HasValue(f, "passeportPdf"))
	assert.False(t, HasValue(f, "unknownField"))
}

func TestSplitElectives(t *testing.T) {
	assert.Equal(t, []string{"Robotics", "AI"}, SplitElectives(" Robotics ;AI;; "))
	assert.Nil(t, SplitElectives(""))
}

func TestFromRecord(t *testing.T) {
	data := models.SubmissionData{
		FirstName:   "Sara",
		Email:       "sara.alaoui@centrale-casablanca.ma",
		Nationality: models.NationalityOther,
		Choice1:     models.SchoolChoice{SchoolName: models.SchoolENIT},
		Choice2:     models.UnsetChoice(),
	}
	data.FileURLs.Set(models.SlotApplicationFormEcc, "https://files.test/ecc")
	data.FileURLs.Set(models.SlotResidencePermit, "https://files.test/permit")

	f := FromRecord(data)

	assert.Equal(t, "Sara", f.FirstName)
	assert.Equal(t, models.SchoolENIT, f.Choice1.SchoolName)
	assert.Len(t, f.Files, 2)
	ecc := f.File(models.SlotApplicationFormEcc)
	require.NotNil(t, ecc)
	assert.Equal(t, "applicationFormEcc.docx", ecc.Name)
	assert.Equal(t, "https://files.test/ecc", ecc.URL)
	assert.True(t, ecc.Present())
	assert.Nil(t, f.File(models.SlotResumePdf))
}

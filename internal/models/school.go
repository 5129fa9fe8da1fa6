// internal/models/school.go
package models

// School identifies an exchange destination program. The set of schools is
// closed; see policy.Schools for the full list.
type School string

const (
	SchoolCentraleSupelecGif    School = "s9_centrale_supelec_gif"
	SchoolCentraleSupelecMetz   School = "s9_centrale_supelec_metz"
	SchoolCentraleSupelecRennes School = "s9_centrale_supelec_rennes"
	SchoolCentraleNantes        School = "s9_centrale_nantes"
	SchoolCentraleLille         School = "s9_centrale_lille"
	SchoolCentraleMediterranee  School = "s9_centrale_mediterranee"
	SchoolCentraleLyon          School = "s9_centrale_lyon"
	SchoolCentralePekin         School = "s9_centrale_pekin"
	SchoolENIT                  School = "s9_enit"
	SchoolENISE                 School = "s9_enise"
	SchoolENSIMAG               School = "s9_ensimag"
	SchoolENSAE                 School = "s9_ensae"

	SchoolDDCentraleSupelec      School = "dd_centrale_supelec"
	SchoolDDCentraleLille        School = "dd_centrale_lille"
	SchoolDDCentraleMediterranee School = "dd_centrale_mediterranee"
	SchoolDDGeorgiaTech          School = "dd_georgia_tech"
	SchoolDDAudencia             School = "dd_audencia"
	SchoolDDPolitecnicoMilano    School = "dd_politecnico_milano"
	SchoolDDPolitecnicoTorino    School = "dd_politecnico_torino"
	SchoolDDUPPA                 School = "dd_uppa"

	// SchoolUnset is the "no choice" sentinel.
	SchoolUnset School = "unset"
)

// IsSet reports whether s is an actual school rather than the sentinel.
// The empty string counts as unset.
func (s School) IsSet() bool {
	return s != SchoolUnset && s != ""
}

type Nationality string

const (
	NationalityMoroccan Nationality = "moroccan"
	NationalityOther    Nationality = "other"
)

// Nationalities lists every nationality bucket in display order.
func Nationalities() []Nationality {
	return []Nationality{NationalityMoroccan, NationalityOther}
}

func (n Nationality) Valid() bool {
	return n == NationalityMoroccan || n == NationalityOther
}

func (n Nationality) Label() string {
	switch n {
	case NationalityMoroccan:
		return "Marocaine"
	case NationalityOther:
		return "Internationale"
	default:
		return string(n)
	}
}

// SchoolChoice is one ranked destination. Electives is a semicolon
// separated list.
type SchoolChoice struct {
	SchoolName   School `json:"schoolName"`
	AcademicPath string `json:"academicPath"`
	CareerPath   string `json:"careerPath"`
	Electives    string `json:"electives"`
}

// UnsetChoice returns an empty choice pointing at the sentinel school.
func UnsetChoice() SchoolChoice {
	return SchoolChoice{SchoolName: SchoolUnset}
}

// FieldRequirement describes one sub-field of a choice for a given school.
type FieldRequirement struct {
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// SchoolPolicy says which choice sub-fields a school asks for.
type SchoolPolicy struct {
	AcademicPath FieldRequirement `json:"academicPath"`
	CareerPath   FieldRequirement `json:"careerPath"`
	Electives    FieldRequirement `json:"electives"`
}

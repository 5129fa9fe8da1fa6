// Package policy is the school policy registry: for every exchange
// destination, which choice sub-fields the application must fill in.
package policy

import (
	"fmt"

	"mobility-portal/internal/models"
)

// UnknownSchoolError is returned for identifiers outside the registry.
type UnknownSchoolError struct {
	School string
}

func (e *UnknownSchoolError) Error() string {
	return fmt.Sprintf("unknown school %q", e.School)
}

type entry struct {
	school models.School
	label  string
	policy models.SchoolPolicy
}

func req(label string, options ...string) models.FieldRequirement {
	return models.FieldRequirement{Label: label, Required: true, Options: options}
}

var none = models.FieldRequirement{}

var (
	gec = models.SchoolPolicy{
		AcademicPath: req("Option"),
		CareerPath:   req("Filière Métier"),
	}
	voieOnly = models.SchoolPolicy{
		AcademicPath: req("Voie de Spécialisation"),
	}
	voieParcours = models.SchoolPolicy{
		AcademicPath: req("Voie de Spécialisation"),
		CareerPath:   req("Parcours"),
	}
)

// table is in display order. Every models.School constant must appear.
var table = []entry{
	{models.SchoolCentraleSupelecGif, "3A CentraleSupélec (Gif)", gec},
	{models.SchoolCentraleSupelecMetz, "3A CentraleSupélec (Metz)", gec},
	{models.SchoolCentraleSupelecRennes, "3A CentraleSupélec (Rennes)", models.SchoolPolicy{
		AcademicPath: req("Option", "Mathématiques", "Informatique", "Physique"),
		CareerPath:   req("Filière Métier"),
	}},
	{models.SchoolCentraleNantes, "3A Centrale Nantes", gec},
	{models.SchoolCentraleLille, "3A Centrale Lille", gec},
	{models.SchoolCentraleMediterranee, "3A Centrale Méditerranée", gec},
	{models.SchoolCentraleLyon, "3A Centrale Lyon", gec},
	{models.SchoolCentralePekin, "3A Centrale Pékin", models.SchoolPolicy{
		AcademicPath: req("Option"),
		CareerPath:   req("Filière Métier"),
		Electives:    req("Electives", "Robotics", "AI", "Energy"),
	}},

	{models.SchoolENIT, "3A ENIT (Ecole des Ingénieurs de Tunis)", models.SchoolPolicy{
		AcademicPath: req("Filière"),
		CareerPath:   req("Option"),
	}},
	{models.SchoolENISE, "3A ENISE (Ecole Nationale des Ingénieurs de Saint Etienne - Au sein de l’École Centrale de Lyon)", models.SchoolPolicy{
		AcademicPath: req("Master"),
		CareerPath:   req("Parcours"),
	}},
	{models.SchoolENSIMAG, "S9 ENSIMAG (Ecole Nationale Supérieure d’Informatique et de Mathématique Appliquée à Grenoble)", models.SchoolPolicy{
		AcademicPath: req("Filière"),
	}},
	{models.SchoolENSAE, "3A ENSAE (Ecole Nationale des Statistiques et de l’Administration Economique)", models.SchoolPolicy{
		AcademicPath: req("Filière"),
	}},

	{models.SchoolDDCentraleSupelec, "DD CentraleSupélec", voieOnly},
	{models.SchoolDDCentraleLille, "DD Centrale Lille", voieOnly},
	{models.SchoolDDCentraleMediterranee, "DD Centrale Méditerranée", voieParcours},
	{models.SchoolDDGeorgiaTech, "DD Georgia Tech University", voieParcours},
	{models.SchoolDDAudencia, "DD Audencia Business School", voieOnly},
	{models.SchoolDDPolitecnicoMilano, "DD Politecnico di Milano", voieOnly},
	{models.SchoolDDPolitecnicoTorino, "DD Politecnico di Torino", voieOnly},
	{models.SchoolDDUPPA, "DD Université de Pau et des Pays de l'Adour", voieParcours},

	{models.SchoolUnset, "Aucun", models.SchoolPolicy{AcademicPath: none, CareerPath: none, Electives: none}},
}

var index = func() map[models.School]int {
	m := make(map[models.School]int, len(table))
	for i, e := range table {
		m[e.school] = i
	}
	return m
}()

func copyRequirement(r models.FieldRequirement) models.FieldRequirement {
	if r.Options != nil {
		r.Options = append([]string(nil), r.Options...)
	}
	return r
}

// For returns the policy of school.
func For(school models.School) (models.SchoolPolicy, error) {
	i, ok := index[school]
	if !ok {
		return models.SchoolPolicy{}, &UnknownSchoolError{School: string(school)}
	}
	p := table[i].policy
	return models.SchoolPolicy{
		AcademicPath: copyRequirement(p.AcademicPath),
		CareerPath:   copyRequirement(p.CareerPath),
		Electives:    copyRequirement(p.Electives),
	}, nil
}

// Parse validates a raw identifier. The empty string parses as unset.
func Parse(raw string) (models.School, error) {
	if raw == "" {
		return models.SchoolUnset, nil
	}
	s := models.School(raw)
	if _, ok := index[s]; !ok {
		return "", &UnknownSchoolError{School: raw}
	}
	return s, nil
}

// Label returns the display name of school, or the raw id when unknown.
func Label(school models.School) string {
	if i, ok := index[school]; ok {
		return table[i].label
	}
	return string(school)
}

// Schools returns every registered school, unset included, in display order.
func Schools() []models.School {
	out := make([]models.School, len(table))
	for i, e := range table {
		out[i] = e.school
	}
	return out
}

// Entry is the exported view of one registry row.
type Entry struct {
	School models.School       `json:"id"`
	Label  string              `json:"label"`
	Policy models.SchoolPolicy `json:"policy"`
}

// Entries lists the registry for clients rendering the school picker.
func Entries() []Entry {
	out := make([]Entry, 0, len(table))
	for _, e := range table {
		p, _ := For(e.school)
		out = append(out, Entry{School: e.school, Label: e.label, Policy: p})
	}
	return out
}

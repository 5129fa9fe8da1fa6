package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/models"
)

func record(first, second models.School, n models.Nationality) models.SubmissionMetaDb {
	return models.SubmissionMetaDb{SubmissionData: models.SubmissionData{
		Nationality: n,
		Choice1:     models.SchoolChoice{SchoolName: first},
		Choice2:     models.SchoolChoice{SchoolName: second},
	}}
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Len(t, stats.BySchool, len(policy.Schools()))
	for _, s := range policy.Schools() {
		count, ok := stats.BySchool[s]
		assert.True(t, ok, s)
		assert.Zero(t, count)
	}
	assert.Equal(t, map[models.Nationality]int{
		models.NationalityMoroccan: 0,
		models.NationalityOther:    0,
	}, stats.ByNationality)
}

func TestAggregate_CountsFirstChoiceOnly(t *testing.T) {
	stats := Aggregate([]models.SubmissionMetaDb{
		record(models.SchoolCentraleLyon, models.SchoolENSIMAG, models.NationalityMoroccan),
		record(models.SchoolCentraleLyon, models.SchoolUnset, models.NationalityOther),
		record(models.SchoolDDGeorgiaTech, models.SchoolCentraleLyon, models.NationalityMoroccan),
	})

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.BySchool[models.SchoolCentraleLyon])
	assert.Equal(t, 1, stats.BySchool[models.SchoolDDGeorgiaTech])
	assert.Equal(t, 0, stats.BySchool[models.SchoolENSIMAG])
	assert.Equal(t, 2, stats.ByNationality[models.NationalityMoroccan])
	assert.Equal(t, 1, stats.ByNationality[models.NationalityOther])
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := record(models.SchoolENISE, models.SchoolUnset, models.NationalityOther)
	b := record(models.SchoolENIT, models.SchoolUnset, models.NationalityMoroccan)

	assert.Equal(t,
		Aggregate([]models.SubmissionMetaDb{a, b}),
		Aggregate([]models.SubmissionMetaDb{b, a}))
}

func TestAggregate_UnknownIDsKeepRegistryKeys(t *testing.T) {
	stats := Aggregate([]models.SubmissionMetaDb{
		record(models.School("em_lyon"), models.SchoolUnset, models.Nationality("french")),
		record(models.SchoolENSAE, models.SchoolUnset, models.NationalityOther),
	})

	assert.Equal(t, 2, stats.Total)
	assert.Len(t, stats.BySchool, len(policy.Schools()))
	assert.NotContains(t, stats.BySchool, models.School("em_lyon"))
	assert.Equal(t, 1, stats.BySchool[models.SchoolENSAE])
	assert.Len(t, stats.ByNationality, 2)
	assert.Equal(t, 1, stats.ByNationality[models.NationalityOther])
}

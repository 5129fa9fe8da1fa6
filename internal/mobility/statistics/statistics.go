// Package statistics summarizes stored submissions for staff dashboards.
package statistics

import (
	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/models"
)

// Statistics counts submissions. Every registered school and nationality
// has a key, zero when nobody picked it.
type Statistics struct {
	Total         int                        `json:"total"`
	BySchool      map[models.School]int      `json:"bySchool"`
	ByNationality map[models.Nationality]int `json:"byNationality"`
}

// Aggregate tallies records by first-choice school and by nationality.
// Second choices are not counted. A record with a school or nationality
// outside the registry counts toward Total only, so the map keys stay
// those of the registry.
func Aggregate(records []models.SubmissionMetaDb) Statistics {
	stats := Statistics{
		BySchool:      make(map[models.School]int),
		ByNationality: make(map[models.Nationality]int),
	}
	for _, s := range policy.Schools() {
		stats.BySchool[s] = 0
	}
	for _, n := range models.Nationalities() {
		stats.ByNationality[n] = 0
	}

	for _, r := range records {
		stats.Total++
		if _, ok := stats.BySchool[r.Choice1.SchoolName]; ok {
			stats.BySchool[r.Choice1.SchoolName]++
		}
		if _, ok := stats.ByNationality[r.Nationality]; ok {
			stats.ByNationality[r.Nationality]++
		}
	}
	return stats
}

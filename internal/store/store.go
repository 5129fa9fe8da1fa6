// Package store holds the submission record stores: Postgres, Elasticsearch
// and an in-memory mockup, plus a Redis read-through cache.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mobility-portal/internal/common/validation"
	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/models"
)

// SubmissionStore is the record store contract.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, data models.SubmissionData) (*models.SubmissionMetaDb, error)
	// GetMySubmission returns the latest submission of email, or nil
	// without error when there is none.
	GetMySubmission(ctx context.Context, email string) (*models.SubmissionMetaDb, error)
	ListAllSubmissions(ctx context.Context) ([]models.SubmissionMetaDb, error)
}

// ErrInvalidRecord wraps schema violations of a record being saved or read.
var ErrInvalidRecord = errors.New("invalid submission record")

var recordSchema = validation.MustCompile(buildRecordSchema())

func buildRecordSchema() map[string]interface{} {
	schools := make([]interface{}, 0, len(policy.Schools()))
	for _, s := range policy.Schools() {
		schools = append(schools, string(s))
	}
	nationalities := []interface{}{}
	for _, n := range models.Nationalities() {
		nationalities = append(nationalities, string(n))
	}

	choice := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"schoolName", "academicPath", "careerPath", "electives"},
		"properties": map[string]interface{}{
			"schoolName":   map[string]interface{}{"type": "string", "enum": schools},
			"academicPath": map[string]interface{}{"type": "string"},
			"careerPath":   map[string]interface{}{"type": "string"},
			"electives":    map[string]interface{}{"type": "string"},
		},
	}

	props := map[string]interface{}{
		"firstName":   map[string]interface{}{"type": "string", "minLength": 1},
		"lastName":    map[string]interface{}{"type": "string", "minLength": 1},
		"nationality": map[string]interface{}{"type": "string", "enum": nationalities},
		"email":       map[string]interface{}{"type": "string", "pattern": `^[^\s@]+@[^\s@]+$`},
		"choice1":     choice,
		"choice2":     choice,
		"createdAt":   map[string]interface{}{"type": "string", "format": "date-time"},
		"databaseId":  map[string]interface{}{"type": "string"},
	}
	for _, s := range form.Slots() {
		props[s.URLKey] = map[string]interface{}{"type": "string", "minLength": 1}
	}

	return map[string]interface{}{
		"type": "object",
		"required": []interface{}{
			"firstName", "lastName", "nationality", "email", "choice1", "choice2", "createdAt",
		},
		"properties":           props,
		"additionalProperties": false,
	}
}

// ValidateRecord checks a record against the stored document schema.
func ValidateRecord(record interface{}) error {
	if err := recordSchema.Validate(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// decodeRecord parses a stored document and attaches its database id.
func decodeRecord(raw []byte, id string) (*models.SubmissionMetaDb, error) {
	var data models.SubmissionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return &models.SubmissionMetaDb{SubmissionData: data, DatabaseID: id}, nil
}

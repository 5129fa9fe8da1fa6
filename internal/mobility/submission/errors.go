package submission

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mobility-portal/internal/models"
)

var (
	// ErrUploadFailure marks a submission aborted because a file could not
	// be stored. Files already uploaded for that submission id are orphaned.
	ErrUploadFailure = errors.New("upload failure")
	// ErrPersistFailure marks a submission whose files were stored but whose
	// record could not be saved.
	ErrPersistFailure = errors.New("persist failure")
)

// ValidationError is returned when a form that is not submittable reaches
// Submit. No collaborator is called in that case.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	var fields []string
	for k, v := range e.Errors {
		if v != "" {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)
	if len(fields) == 0 {
		return "application form is not submittable: required fields missing"
	}
	return "application form is not submittable: " + strings.Join(fields, ", ")
}

// Stage names the step of Submit that failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StageUpload   Stage = "upload"
	StagePersist  Stage = "persist"
)

// SubmissionError wraps the first failure of a Submit call.
type SubmissionError struct {
	Stage        Stage
	SubmissionID string
	// Slot is set for upload failures.
	Slot models.Slot
	Err  error
}

func (e *SubmissionError) Error() string {
	switch e.Stage {
	case StageUpload:
		return fmt.Sprintf("submission %s: upload of %s failed: %v", e.SubmissionID, e.Slot, e.Err)
	case StagePersist:
		return fmt.Sprintf("submission %s: saving record failed: %v", e.SubmissionID, e.Err)
	default:
		return fmt.Sprintf("submission rejected: %v", e.Err)
	}
}

// Unwrap exposes both the stage sentinel and the collaborator error.
func (e *SubmissionError) Unwrap() []error {
	switch e.Stage {
	case StageUpload:
		return []error{ErrUploadFailure, e.Err}
	case StagePersist:
		return []error{ErrPersistFailure, e.Err}
	default:
		return []error{e.Err}
	}
}

// Package errors provides the structured error type shared by the HTTP API
// and the Camunda workers, and its mapping to BPMN errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnknownSchool    ErrorCode = "UNKNOWN_SCHOOL"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeFileRejected     ErrorCode = "FILE_REJECTED"

	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"

	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"
	ErrCodeStorageFailed    ErrorCode = "STORAGE_FAILED"
	ErrCodeDatabaseFailed   ErrorCode = "DATABASE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeExternalService        ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error body returned by the API and attached to
// failed Camunda jobs.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func causeDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewValidationFailedError carries the field error map in Metadata["errors"].
func NewValidationFailedError(fieldErrors map[string]string) *StandardError {
	e := newError(ErrCodeValidationFailed, "The application form is not complete", "", false, nil)
	return e.WithMetadata("errors", fieldErrors)
}

func NewUnknownSchoolError(err error) *StandardError {
	return newError(ErrCodeUnknownSchool, "Unknown school", causeDetails(err), false, err)
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false, nil)
}

func NewFileRejectedError(slot, details string) *StandardError {
	e := newError(ErrCodeFileRejected, "File rejected", details, false, nil)
	return e.WithMetadata("slot", slot)
}

func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Authentication required", details, false, nil)
}

func NewForbiddenError(details string) *StandardError {
	return newError(ErrCodeForbidden, "Access denied", details, false, nil)
}

func NewNotFoundError(details string) *StandardError {
	return newError(ErrCodeNotFound, "Not found", details, false, nil)
}

// NewSubmissionFailedError is what applicants see for upload and persistence
// failures alike.
func NewSubmissionFailedError(err error) *StandardError {
	return newError(ErrCodeSubmissionFailed, "submission failed", causeDetails(err), true, err)
}

func NewStorageFailedError(err error) *StandardError {
	return newError(ErrCodeStorageFailed, "File storage unavailable", causeDetails(err), true, err)
}

func NewDatabaseFailedError(operation string, err error) *StandardError {
	e := newError(ErrCodeDatabaseFailed, "Database operation failed", causeDetails(err), true, err)
	return e.WithMetadata("operation", operation)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification could not be sent", causeDetails(err), true, err)
	return e.WithMetadata("channel", channel)
}

func NewExternalServiceError(service string, err error) *StandardError {
	e := newError(ErrCodeExternalService, "External service unavailable", causeDetails(err), true, err)
	return e.WithMetadata("service", service)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", causeDetails(err), false, err)
}

// AsStandardError unwraps err into a StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps an error code to the response status used by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeUnknownSchool, ErrCodeInvalidRequest, ErrCodeFileRejected:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeSubmissionFailed, ErrCodeStorageFailed, ErrCodeDatabaseFailed,
		ErrCodeNotificationSendFailed, ErrCodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// BPMNError is an error thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount returns how many times a job failing with code is retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseFailed, ErrCodeStorageFailed, ErrCodeNotificationSendFailed, ErrCodeExternalService:
		return 3
	case ErrCodeSubmissionFailed:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError for Camunda. BPMN error codes
// are the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case c == string(ErrCodeUnauthorized) || c == string(ErrCodeForbidden):
		return "AUTH"
	case strings.Contains(c, "VALIDATION") || strings.Contains(c, "INVALID") ||
		strings.Contains(c, "UNKNOWN") || strings.Contains(c, "REJECTED"):
		return "VALIDATION"
	case strings.Contains(c, "DATABASE"):
		return "DATABASE"
	case strings.Contains(c, "STORAGE") || strings.Contains(c, "SUBMISSION"):
		return "SUBMISSION"
	case strings.Contains(c, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(c, "EXTERNAL"):
		return "EXTERNAL"
	default:
		return "OTHER"
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsStandardError(t *testing.T) {
	cause := errors.New("pq: connection refused")
	wrapped := fmt.Errorf("save: %w", NewDatabaseFailedError("insert", cause))

	stdErr := AsStandardError(wrapped)
	assert.Equal(t, ErrCodeDatabaseFailed, stdErr.Code)
	assert.Equal(t, "insert", stdErr.Metadata["operation"])
	assert.ErrorIs(t, stdErr, cause)

	plain := AsStandardError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeValidationFailed))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeUnknownSchool))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeFileRejected))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeUnauthorized))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeSubmissionFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewNotificationSendFailedError("ses", errors.New("throttled")))
	assert.Equal(t, "NOTIFICATION_SEND_FAILED", bpmn.Code)
	assert.Equal(t, 3, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "ses", vars["channel"])
	assert.Equal(t, "throttled", vars["errorDetails"])
	assert.Equal(t, true, vars["retryable"])

	nonRetryable := ConvertToBPMNError(NewValidationFailedError(map[string]string{"email": "bad"}))
	assert.Equal(t, 0, nonRetryable.Retries)
	require.Contains(t, nonRetryable.ErrorVariables, "errors")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeForbidden))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeUnknownSchool))
	assert.Equal(t, "SUBMISSION", GetErrorCategory(ErrCodeStorageFailed))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeExternalService))
	assert.True(t, IsRetryableErrorCode(ErrCodeExternalService))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidationFailed))
}

package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

var fastRetry = RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestExecuteWithRetry_RetriesTransient(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastRetry, "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc error: code = Unavailable")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanent(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastRetry, "op", func(context.Context) error {
		calls++
		return errors.New("process definition not found")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.AsStandardError(err).Code)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastRetry, "op", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	assert.Equal(t, 3, calls)
	assert.Equal(t, apperrors.ErrCodeExternalService, apperrors.AsStandardError(err).Code)
}

func TestSubmissionProcess(t *testing.T) {
	var gotVars map[string]interface{}
	create := func(ctx context.Context, processID string, vars map[string]interface{}) (int64, error) {
		assert.Equal(t, "mobility-submission", processID)
		gotVars = vars
		return 2251799813685249, nil
	}
	p := newSubmissionProcess(create, "mobility-submission", time.Second, logger.NewTestLogger(t))

	rec := &models.SubmissionMetaDb{
		SubmissionData: models.SubmissionData{
			Email:       "sara.alaoui@centrale-casablanca.ma",
			Nationality: models.NationalityOther,
			Choice1:     models.SchoolChoice{SchoolName: models.SchoolENIT},
			Choice2:     models.UnsetChoice(),
			FileURLs:    models.FileURLs{ResumeURL: "https://files.test/sara/resumePdf"},
		},
		DatabaseID: "db-1",
	}
	key, err := p.SubmissionSaved(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, int64(2251799813685249), key)
	assert.Equal(t, "db-1", gotVars["databaseId"])
	assert.Equal(t, "s9_enit", gotVars["school1"])
	assert.Equal(t, "unset", gotVars["school2"])

	f, ok := gotVars["applicationForm"].(*models.ApplicationForm)
	require.True(t, ok)
	assert.Equal(t, rec.Email, f.Email)
	require.NotNil(t, f.File(models.SlotResumePdf))
	assert.Equal(t, "https://files.test/sara/resumePdf", f.File(models.SlotResumePdf).URL)
	assert.Nil(t, f.File(models.SlotPasseportPdf))
}

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"mobility-portal/internal/models"
)

func TestSubmissionRecorder(t *testing.T) {
	r := SubmissionRecorder{}

	before := testutil.ToFloat64(FileUploadsTotal.WithLabelValues("resumePdf", "failure"))
	r.RecordUpload(models.SlotResumePdf, errors.New("boom"), time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(FileUploadsTotal.WithLabelValues("resumePdf", "failure")))

	before = testutil.ToFloat64(FileUploadsTotal.WithLabelValues("resumePdf", "canceled"))
	r.RecordUpload(models.SlotResumePdf, fmt.Errorf("upload: %w", context.Canceled), time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(FileUploadsTotal.WithLabelValues("resumePdf", "canceled")))

	before = testutil.ToFloat64(SubmissionsTotal.WithLabelValues("success"))
	r.RecordSubmission("success", 2*time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(SubmissionsTotal.WithLabelValues("success")))
}

func TestObserveValidation(t *testing.T) {
	before := testutil.ToFloat64(ValidationRunsTotal.WithLabelValues("api", "false"))
	ObserveValidation("api", false)
	assert.Equal(t, before+1, testutil.ToFloat64(ValidationRunsTotal.WithLabelValues("api", "false")))
}

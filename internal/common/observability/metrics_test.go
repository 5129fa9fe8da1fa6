package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

func gatheredNames(t *testing.T, reg *promclient.Registry) map[string]bool {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func hasPrefix(names map[string]bool, prefix string) bool {
	for n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func TestObservability_ExportsInstruments(t *testing.T) {
	reg := promclient.NewRegistry()
	o := New("mobility-portal-test", reg, logger.NewTestLogger(t))
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "validate-application-form", "completed")
	o.RecordJobDuration(ctx, "validate-application-form", 12*time.Millisecond, "completed")
	o.RecordUpload(models.SlotResumePdf, nil, 30*time.Millisecond)
	o.RecordUpload(models.SlotS5Transcripts, errors.New("down"), time.Millisecond)
	o.RecordUploadBytes(ctx, models.SlotResumePdf, 2048)

	names := gatheredNames(t, reg)
	for _, prefix := range []string{"jobs_processed", "jobs_duration", "upload_duration", "upload_size"} {
		assert.True(t, hasPrefix(names, prefix), prefix)
	}
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	o := &Observability{}
	o.RecordJobProcessed(context.Background(), "x", "failed")
	o.RecordUpload(models.SlotResumePdf, nil, time.Second)
	o.Shutdown()
}

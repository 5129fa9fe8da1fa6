package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/models"
)

type instanceCreator func(ctx context.Context, processID string, vars map[string]interface{}) (int64, error)

// SubmissionProcess starts one process instance per saved submission.
type SubmissionProcess struct {
	processID string
	timeout   time.Duration
	retry     RetryConfig
	create    instanceCreator
	logger    logger.Logger
}

func NewSubmissionProcess(client zbc.Client, processID string, timeout time.Duration, log logger.Logger) *SubmissionProcess {
	create := func(ctx context.Context, processID string, vars map[string]interface{}) (int64, error) {
		cmd, err := client.NewCreateInstanceCommand().
			BPMNProcessId(processID).
			LatestVersion().
			VariablesFromMap(vars)
		if err != nil {
			return 0, fmt.Errorf("failed to encode process variables: %w", err)
		}
		resp, err := cmd.Send(ctx)
		if err != nil {
			return 0, err
		}
		return resp.GetProcessInstanceKey(), nil
	}
	return newSubmissionProcess(create, processID, timeout, log)
}

func newSubmissionProcess(create instanceCreator, processID string, timeout time.Duration, log logger.Logger) *SubmissionProcess {
	return &SubmissionProcess{
		processID: processID,
		timeout:   timeout,
		retry:     DefaultRetryConfig,
		create:    create,
		logger:    log.WithFields(map[string]interface{}{"processId": processID}),
	}
}

// SubmissionVariables are the process variables of a saved submission.
// applicationForm is the submitted form, with stored file URLs, for the
// validation task.
func SubmissionVariables(rec *models.SubmissionMetaDb) map[string]interface{} {
	return map[string]interface{}{
		"applicationForm": form.FromRecord(rec.SubmissionData),
		"databaseId":      rec.DatabaseID,
		"email":           rec.Email,
		"firstName":       rec.FirstName,
		"lastName":        rec.LastName,
		"nationality":     string(rec.Nationality),
		"school1":         string(rec.Choice1.SchoolName),
		"school2":         string(rec.Choice2.SchoolName),
		"createdAt":       rec.CreatedAt,
	}
}

// SubmissionSaved starts the process for rec and returns the instance key.
func (p *SubmissionProcess) SubmissionSaved(ctx context.Context, rec *models.SubmissionMetaDb) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	vars := SubmissionVariables(rec)
	var key int64
	err := ExecuteWithRetry(ctx, p.retry, "create-instance", func(ctx context.Context) error {
		var err error
		key, err = p.create(ctx, p.processID, vars)
		return err
	})
	if err != nil {
		return 0, err
	}

	p.logger.Info("submission process started", map[string]interface{}{
		"processInstanceKey": key,
		"databaseId":         rec.DatabaseID,
	})
	return key, nil
}

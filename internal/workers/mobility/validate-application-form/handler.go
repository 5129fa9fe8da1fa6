package validateapplicationform

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/common/metrics"
	"mobility-portal/internal/mobility/validation"
)

const (
	TaskType = "validate-application-form"
)

type Handler struct {
	config       *Config
	validator    *validation.Validator
	logger       logger.Logger
	errorHandler *errors.JobErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		validator:    validation.NewValidator(config.EmailDomain),
		logger:       log,
		errorHandler: errors.NewJobErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInvalidRequestError("parse input: "+err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// execute validates the form. An incomplete form is a normal outcome
// reported through the output, not a job failure.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ApplicationForm == nil {
		return nil, errors.NewInvalidRequestError("applicationForm is required")
	}

	result := h.validator.Evaluate(input.ApplicationForm)
	metrics.ObserveValidation("worker", result.Submittable)

	errs := map[string]string{}
	for k, v := range result.Errors {
		if v != "" {
			errs[k] = v
		}
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    result.Submittable,
		"errorCount": len(errs),
	})
	return &Output{
		IsValid:        result.Submittable,
		Errors:         errs,
		RequiredFields: result.RequiredFields,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

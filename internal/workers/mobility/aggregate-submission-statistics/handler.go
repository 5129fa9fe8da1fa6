package aggregatesubmissionstatistics

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/common/metrics"
	"mobility-portal/internal/mobility/statistics"
	"mobility-portal/internal/models"
)

const (
	TaskType = "aggregate-submission-statistics"
)

// Lister is the read side of the record store.
type Lister interface {
	ListAllSubmissions(ctx context.Context) ([]models.SubmissionMetaDb, error)
}

type Handler struct {
	config       *Config
	store        Lister
	logger       logger.Logger
	errorHandler *errors.JobErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, store Lister, log logger.Logger) *Handler {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		logger:       log,
		errorHandler: errors.NewJobErrorHandler(log),
		now:          time.Now,
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

	output, err := h.execute(ctx, &Input{})
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
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

func (h *Handler) execute(ctx context.Context, _ *Input) (*Output, error) {
	records, err := h.store.ListAllSubmissions(ctx)
	if err != nil {
		return nil, errors.NewDatabaseFailedError("list submissions", err)
	}

	stats := statistics.Aggregate(records)
	h.logger.Info("statistics computed", map[string]interface{}{"total": stats.Total})
	return &Output{
		Statistics: stats,
		ComputedAt: h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

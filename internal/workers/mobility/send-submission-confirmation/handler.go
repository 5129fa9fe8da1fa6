package sendsubmissionconfirmation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/common/metrics"
	"mobility-portal/internal/mobility/policy"
	"mobility-portal/internal/models"
)

const (
	TaskType = "send-submission-confirmation"
)

// Sender delivers the applicant email. *aws.Mailer implements it.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// Publisher notifies staff. *aws.TopicPublisher implements it.
type Publisher interface {
	Publish(ctx context.Context, subject, message string, attrs map[string]string) (string, error)
}

type Handler struct {
	config       *Config
	sender       Sender
	publisher    Publisher
	logger       logger.Logger
	errorHandler *errors.JobErrorHandler
	now          func() time.Time
}

// NewHandler builds the worker. sender and publisher may be nil when the
// matching channel is disabled.
func NewHandler(config *Config, sender Sender, publisher Publisher, log logger.Logger) *Handler {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sender:       sender,
		publisher:    publisher,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Email == "" || input.DatabaseID == "" {
		return nil, errors.NewInvalidRequestError("email and databaseId are required")
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	msg := message{
		Input:        *input,
		School1Label: schoolLabel(input.School1),
		School2Label: schoolLabel(input.School2),
	}

	sent := 0
	if h.config.EmailEnabled && h.sender != nil {
		id, err := h.sendApplicantEmail(ctx, msg)
		if err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		output.EmailMessageID = id
		sent++
	}

	if h.config.StaffEnabled && h.publisher != nil {
		id, err := h.notifyStaff(ctx, msg)
		if err != nil {
			// The applicant already has their email; a retry would resend it.
			h.logger.Error("staff notification failed", map[string]interface{}{
				"error":      err,
				"databaseId": input.DatabaseID,
			})
			if sent == 0 {
				return nil, errors.NewNotificationSendFailedError("sns", err)
			}
			output.Status = StatusPartial
			return output, nil
		}
		output.StaffMessageID = id
		sent++
	}

	if sent > 0 {
		output.Status = StatusSent
	}
	h.logger.Info("confirmation processed", map[string]interface{}{
		"databaseId": input.DatabaseID,
		"status":     output.Status,
	})
	return output, nil
}

func (h *Handler) sendApplicantEmail(ctx context.Context, msg message) (string, error) {
	subject, err := render(applicantSubject, msg)
	if err != nil {
		return "", fmt.Errorf("render subject: %w", err)
	}
	body, err := render(applicantBody, msg)
	if err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}
	return h.sender.Send(ctx, msg.Email, subject, body, "")
}

func (h *Handler) notifyStaff(ctx context.Context, msg message) (string, error) {
	body, err := render(staffBody, msg)
	if err != nil {
		return "", fmt.Errorf("render staff message: %w", err)
	}
	return h.publisher.Publish(ctx, "New mobility application", body, map[string]string{
		"databaseId":  msg.DatabaseID,
		"nationality": msg.Nationality,
		"school1":     msg.School1,
	})
}

// schoolLabel turns a stored school key into its display name; the unset
// sentinel renders as empty.
func schoolLabel(raw string) string {
	school := models.School(raw)
	if !school.IsSet() {
		return ""
	}
	return policy.Label(school)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Package metrics holds the Prometheus collectors of the portal and its
// Camunda workers, served on /metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mobility-portal/internal/models"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mobility_submissions_total",
			Help: "Submissions by outcome",
		},
		[]string{"outcome"},
	)

	FileUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mobility_file_uploads_total",
			Help: "Document uploads by slot and outcome",
		},
		[]string{"slot", "outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mobility_submission_duration_seconds",
			Help:    "End-to-end submission duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	ValidationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mobility_validation_runs_total",
			Help: "Form validations by source and result",
		},
		[]string{"source", "submittable"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mobility_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveValidation counts one validation run.
func ObserveValidation(source string, submittable bool) {
	ValidationRunsTotal.WithLabelValues(source, strconv.FormatBool(submittable)).Inc()
}

// ObserveRequest counts one served HTTP request.
func ObserveRequest(method, route string, status int) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// SubmissionRecorder feeds the submission collectors.
type SubmissionRecorder struct{}

func (SubmissionRecorder) RecordUpload(slot models.Slot, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		}
	}
	FileUploadsTotal.WithLabelValues(string(slot), outcome).Inc()
}

func (SubmissionRecorder) RecordSubmission(outcome string, d time.Duration) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
	SubmissionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Package observability exposes OpenTelemetry instruments through the
// Prometheus exporter.
package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	uploadDuration otelmetric.Float64Histogram
	uploadBytes    otelmetric.Int64Counter
}

// New registers the exporter with reg, or the default registry when reg
// is nil. On exporter failure the returned value records nothing.
func New(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	var opts []prometheus.Option
	if reg != nil {
		opts = append(opts, prometheus.WithRegisterer(reg))
	}
	exporter, err := prometheus.New(opts...)
	if err != nil {
		log.Warn("otel prometheus exporter disabled", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	uploadDuration, _ := meter.Float64Histogram(
		"upload.duration",
		otelmetric.WithDescription("Document upload duration"),
		otelmetric.WithUnit("ms"),
	)
	uploadBytes, _ := meter.Int64Counter(
		"upload.size",
		otelmetric.WithDescription("Bytes of documents accepted for upload"),
		otelmetric.WithUnit("By"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		jobCounter:     jobCounter,
		jobDuration:    jobDuration,
		uploadDuration: uploadDuration,
		uploadBytes:    uploadBytes,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// RecordUploadBytes counts the size of a document accepted by the API.
func (o *Observability) RecordUploadBytes(ctx context.Context, slot models.Slot, n int64) {
	if o.uploadBytes != nil {
		o.uploadBytes.Add(ctx, n, otelmetric.WithAttributes(attribute.String("slot", string(slot))))
	}
}

// RecordUpload satisfies the submission recorder contract.
func (o *Observability) RecordUpload(slot models.Slot, err error, d time.Duration) {
	if o.uploadDuration == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	o.uploadDuration.Record(context.Background(), float64(d.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("slot", string(slot)),
		attribute.String("status", status),
	))
}

// RecordSubmission is a no-op; submissions are counted by Prometheus
// collectors directly.
func (o *Observability) RecordSubmission(string, time.Duration) {}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}

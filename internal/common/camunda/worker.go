package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/logger"
)

// Workers keeps the opened job workers so they can be closed together.
type Workers struct {
	client  zbc.Client
	workers []worker.JobWorker
	logger  logger.Logger
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{client: client, logger: log}
}

// Start opens a job worker for taskType unless it is disabled.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler func(worker.JobClient, entities.Job)) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jw := w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()
	w.workers = append(w.workers, jw)

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Close stops every worker and waits for in-flight jobs.
func (w *Workers) Close() {
	for _, jw := range w.workers {
		jw.Close()
		jw.AwaitClose()
	}
	w.logger.Info("workers stopped", map[string]interface{}{"count": len(w.workers)})
}

package webhook

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultWorkerInterval = time.Second
	batchSize             = 10
)

type Worker struct {
	service  *Service
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewWorker(service *Service, logger *slog.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = defaultWorkerInterval
	}

	return &Worker{
		service:  service,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("webhook worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopped", "pending", w.service.Pending())
			return
		case <-w.stopCh:
			w.logger.Info("webhook worker stopped", "pending", w.service.Pending())
			return
		case <-ticker.C:
			w.processQueue(ctx)
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) processQueue(ctx context.Context) {
	for _, job := range w.service.due(w.service.now(), batchSize) {
		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *Job) {
	if err := w.service.Send(ctx, job); err != nil {
		w.scheduleRetry(job, err.Error())
		return
	}

	w.logger.Info("webhook job completed",
		"job_id", job.ID,
		"event_type", job.EventType,
		"attempts", job.Attempts+1,
	)
}

func (w *Worker) scheduleRetry(job *Job, errorMsg string) {
	job.LastError = errorMsg

	if job.Attempts+1 >= job.MaxAttempts {
		w.logger.Error("webhook job failed",
			"job_id", job.ID,
			"event_type", job.EventType,
			"attempts", job.Attempts+1,
			"error", errorMsg,
		)
		return
	}

	delay := time.Duration(1<<job.Attempts) * time.Second
	job.Attempts++
	job.NextRetryAt = w.service.now().Add(delay)
	w.service.requeue(job)

	w.logger.Info("webhook job scheduled for retry",
		"job_id", job.ID,
		"attempts", job.Attempts,
		"next_retry", job.NextRetryAt,
		"error", errorMsg,
	)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
	"github.com/shaiso/Modelka/internal/mq"
	"github.com/shaiso/Modelka/internal/repo"
	"github.com/shaiso/Modelka/internal/telemetry"
)

// Monitor поллит job record store, пока external executor
// не переведёт job в терминальный статус.
//
// Монитор только наблюдает: прогресс и статусы пишет external
// executor через API, а монитор ретранслирует их в лог и события.
type Monitor struct {
	jobs      JobStore
	publisher *mq.Publisher
	interval  time.Duration
	maxWait   time.Duration
	logger    *slog.Logger
}

// NewMonitor создаёт Monitor. Неположительные интервалы заменяются
// значениями по умолчанию.
func NewMonitor(jobs JobStore, publisher *mq.Publisher, interval, maxWait time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &Monitor{
		jobs:      jobs,
		publisher: publisher,
		interval:  interval,
		maxWait:   maxWait,
		logger:    logger,
	}
}

// Wait блокируется до терминального статуса job.
//
// Возвращает ErrMonitoringTimeout, если обучение не завершилось за
// maxWait, и ошибку контекста при отмене.
func (m *Monitor) Wait(ctx context.Context, jobID uuid.UUID) (*domain.TrainingJob, error) {
	logger := telemetry.WithJobID(m.logger, jobID.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(m.maxWait)
	defer deadline.Stop()

	lastProgress := -1

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-deadline.C:
			return nil, fmt.Errorf("%w after %s", ErrMonitoringTimeout, m.maxWait)

		case <-ticker.C:
			job, err := m.jobs.GetByID(ctx, jobID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
				}
				// Транзиентная ошибка store — пробуем на следующем тике.
				logger.Warn("failed to poll job status", "error", err)
				continue
			}

			if job.Progress != lastProgress {
				lastProgress = job.Progress
				m.observeProgress(ctx, logger, job)
			}

			if job.Status.IsTerminal() {
				logger.Info("training finished",
					"status", job.Status,
					"progress", job.Progress,
				)
				return job, nil
			}
		}
	}
}

// observeProgress логирует и публикует наблюдение прогресса.
func (m *Monitor) observeProgress(ctx context.Context, logger *slog.Logger, job *domain.TrainingJob) {
	logger.Debug("training progress",
		"progress", job.Progress,
		"current_epoch", job.CurrentEpoch,
		"total_epochs", job.TotalEpochs,
	)

	if m.publisher == nil {
		return
	}
	err := m.publisher.PublishJobProgress(ctx, mq.JobProgressPayload{
		JobID:        job.ID,
		Progress:     job.Progress,
		CurrentEpoch: job.CurrentEpoch,
		TotalEpochs:  job.TotalEpochs,
	})
	if err != nil {
		logger.Warn("failed to publish progress event", "error", err)
	}
}

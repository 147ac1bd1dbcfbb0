package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
	"github.com/shaiso/Modelka/internal/mq"
	"github.com/shaiso/Modelka/internal/repo"
	"github.com/shaiso/Modelka/internal/telemetry"
)

// Controller — admission-контроллер pipeline'а.
//
// Держит FIFO очередь принятых jobs и множество выполняющихся.
// Инвариант: |running| никогда не превышает maxConcurrent. Admission
// выполняется после каждого submit и после каждого завершения job;
// отмена выполняющегося job admission НЕ запускает — слот
// переиспользуется, когда горутина job'а завершится сама.
//
// Очередь живёт только в памяти: после рестарта процесса jobs
// нужно пересабмитить.
type Controller struct {
	jobs      JobStore
	runner    Runner
	conn      *mq.Connection
	publisher *mq.Publisher
	logger    *slog.Logger

	maxConcurrent int

	mu      sync.Mutex
	queue   []uuid.UUID
	running map[uuid.UUID]time.Time // job ID → время admission
	stopped bool

	runCtx    context.Context
	runCancel context.CancelFunc
	wg        sync.WaitGroup

	consumers []*mq.Consumer
}

// NewController создаёт Controller из конфигурации.
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Logger = logger

	maxConcurrent := cfg.MaxConcurrentJobs
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentJobs
	}

	runner := cfg.Runner
	if runner == nil {
		runner = NewExecutor(cfg)
	}

	runCtx, runCancel := context.WithCancel(context.Background())

	return &Controller{
		jobs:          cfg.Jobs,
		runner:        runner,
		conn:          cfg.Conn,
		publisher:     cfg.Publisher,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		running:       make(map[uuid.UUID]time.Time),
		runCtx:        runCtx,
		runCancel:     runCancel,
	}
}

// Start запускает consumer'ы команд submit/cancel.
//
// Без RabbitMQ controller работает в degraded-режиме: команды
// принимаются только прямыми вызовами Submit/Cancel (HTTP API
// pipeline-процесса).
func (c *Controller) Start(ctx context.Context) error {
	if c.conn == nil {
		c.logger.Warn("RabbitMQ is not available, accepting commands via direct calls only")
		return nil
	}

	if err := mq.SetupTopology(ctx, c.conn); err != nil {
		return fmt.Errorf("setup topology: %w", err)
	}

	c.consumers = []*mq.Consumer{
		mq.NewConsumer(c.conn, c.logger, mq.ConsumerConfig{
			Queue:   string(mq.QueueJobsSubmitted),
			Handler: c.handleJobSubmitted,
		}),
		mq.NewConsumer(c.conn, c.logger, mq.ConsumerConfig{
			Queue:   string(mq.QueueJobsCancel),
			Handler: c.handleJobCancel,
		}),
	}

	for _, consumer := range c.consumers {
		c.wg.Add(1)
		go func(consumer *mq.Consumer) {
			defer c.wg.Done()
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error("consumer stopped with error", "error", err)
			}
		}(consumer)
	}

	c.logger.Info("pipeline controller started", "max_concurrent_jobs", c.maxConcurrent)
	return nil
}

// Stop останавливает controller: новые submit отклоняются,
// выполняющиеся jobs прерываются отменой контекста.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	for _, consumer := range c.consumers {
		consumer.Stop()
	}
	c.runCancel()
	c.wg.Wait()

	c.logger.Info("pipeline controller stopped")
}

// Submit принимает job в очередь pipeline'а.
//
// Job должен существовать и быть в PENDING. Повторный submit job'а,
// который уже в очереди или выполняется, возвращает ErrAlreadyQueued.
func (c *Controller) Submit(ctx context.Context, jobID uuid.UUID) error {
	job, err := c.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return fmt.Errorf("get job: %w", err)
	}
	if job.Status != domain.JobStatusPending {
		return fmt.Errorf("%w: job %s is %s", ErrJobNotPending, jobID, job.Status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.isKnownLocked(jobID) {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, jobID)
	}

	c.queue = append(c.queue, jobID)
	telemetry.JobsSubmitted.Inc()
	telemetry.WithJobID(c.logger, jobID.String()).Info("job queued",
		"queue_length", len(c.queue),
	)

	c.admitLocked()
	return nil
}

// Cancel отменяет job в pipeline.
//
// Job в очереди просто выбрасывается (запись остаётся PENDING,
// его можно пересабмитить); выполняющийся job удаляется из running
// set, а его запись переводится в CANCELLED — шаги pipeline'а
// заметят статус кооперативно. Job, неизвестный controller'у,
// не трогается вовсе: повторный Cancel — no-op, запись в store
// не меняется.
func (c *Controller) Cancel(ctx context.Context, jobID uuid.UUID) error {
	logger := telemetry.WithJobID(c.logger, jobID.String())

	c.mu.Lock()
	for i, id := range c.queue {
		if id == jobID {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			c.updateGaugesLocked()
			c.mu.Unlock()

			logger.Info("queued job cancelled")
			return nil
		}
	}

	if _, isRunning := c.running[jobID]; !isRunning {
		c.mu.Unlock()
		logger.Debug("cancel for job outside the pipeline, ignoring")
		return nil
	}

	// Слот НЕ освобождается до завершения горутины job'а:
	// admission здесь не запускается.
	delete(c.running, jobID)
	c.updateGaugesLocked()
	c.mu.Unlock()

	if err := c.jobs.Cancel(ctx, jobID); err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	logger.Info("running job cancelled")
	return nil
}

// Status — снимок состояния pipeline'а.
type Status struct {
	QueueLength   int         `json:"queue_length"`
	RunningCount  int         `json:"running_count"`
	MaxConcurrent int         `json:"max_concurrent"`
	Queue         []uuid.UUID `json:"queue"`
	Running       []uuid.UUID `json:"running"`
}

// Status возвращает снимок очереди и выполняющихся jobs.
// Running упорядочен по времени admission.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := make([]uuid.UUID, len(c.queue))
	copy(queue, c.queue)

	running := make([]uuid.UUID, 0, len(c.running))
	for id := range c.running {
		running = append(running, id)
	}
	sort.Slice(running, func(i, j int) bool {
		return c.running[running[i]].Before(c.running[running[j]])
	})

	return Status{
		QueueLength:   len(queue),
		RunningCount:  len(running),
		MaxConcurrent: c.maxConcurrent,
		Queue:         queue,
		Running:       running,
	}
}

// isKnownLocked проверяет, что job уже в очереди или running set.
func (c *Controller) isKnownLocked(jobID uuid.UUID) bool {
	if _, ok := c.running[jobID]; ok {
		return true
	}
	for _, id := range c.queue {
		if id == jobID {
			return true
		}
	}
	return false
}

// admitLocked переводит jobs из головы очереди в running set,
// пока есть свободные слоты. Вызывать только под c.mu.
func (c *Controller) admitLocked() {
	for len(c.running) < c.maxConcurrent && len(c.queue) > 0 {
		jobID := c.queue[0]
		c.queue = c.queue[1:]
		c.running[jobID] = time.Now()

		c.wg.Add(1)
		go c.runJob(jobID)

		telemetry.WithJobID(c.logger, jobID.String()).Info("job admitted",
			"running", len(c.running),
			"queued", len(c.queue),
		)
	}
	c.updateGaugesLocked()
}

// runJob выполняет job и по завершении освобождает слот.
func (c *Controller) runJob(jobID uuid.UUID) {
	defer c.wg.Done()

	started := time.Now()
	err := c.runner.Run(c.runCtx, jobID)

	var status domain.JobStatus
	switch {
	case err == nil:
		status = domain.JobStatusCompleted
	case errors.Is(err, ErrJobCancelled):
		status = domain.JobStatusCancelled
	case errors.Is(err, context.Canceled):
		// Shutdown процесса: запись job'а не финализирована,
		// слот можно не освобождать.
		c.mu.Lock()
		delete(c.running, jobID)
		c.updateGaugesLocked()
		c.mu.Unlock()
		return
	default:
		status = domain.JobStatusFailed
	}

	telemetry.JobsFinished.WithLabelValues(string(status)).Inc()
	telemetry.JobDuration.Observe(time.Since(started).Seconds())

	c.publishFinished(jobID, status, err)

	c.mu.Lock()
	delete(c.running, jobID)
	c.admitLocked()
	c.mu.Unlock()
}

// publishFinished публикует событие о завершении pipeline'а (best effort).
func (c *Controller) publishFinished(jobID uuid.UUID, status domain.JobStatus, runErr error) {
	if c.publisher == nil {
		return
	}

	payload := mq.JobFinishedPayload{
		JobID:  jobID,
		Status: string(status),
	}
	if runErr != nil {
		payload.Error = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.publisher.PublishJobFinished(ctx, payload); err != nil {
		telemetry.WithJobID(c.logger, jobID.String()).
			Warn("failed to publish finished event", "error", err)
	}
}

// updateGaugesLocked обновляет метрики очереди. Вызывать под c.mu.
func (c *Controller) updateGaugesLocked() {
	telemetry.QueueDepth.Set(float64(len(c.queue)))
	telemetry.RunningJobs.Set(float64(len(c.running)))
}

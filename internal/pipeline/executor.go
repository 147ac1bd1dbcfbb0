package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
	"github.com/shaiso/Modelka/internal/repo"
	"github.com/shaiso/Modelka/internal/telemetry"
)

// Executor проводит один job через все шаги pipeline'а:
//
//  1. перевод PENDING → RUNNING в record store
//  2. разрешение обучающих данных (пусто — hard stop)
//  3. ожидание терминального статуса через Monitor
//  4. advisory-валидация метрик
//  5. проверка созданной версии модели
//  6. регистрация модели в registry
//
// Любая ошибка шагов конвертируется в FAILED ровно в одном месте —
// Run. Отмена контекста (shutdown процесса) статус job не трогает:
// запись остаётся RUNNING до ручного вмешательства.
type Executor struct {
	jobs           JobStore
	data           DataSource
	versions       VersionSource
	monitor        *Monitor
	validator      *Validator
	registry       *RegistrySync
	autoValidation bool
	logger         *slog.Logger
}

// NewExecutor собирает Executor из конфигурации.
func NewExecutor(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		jobs:           cfg.Jobs,
		data:           cfg.Data,
		versions:       cfg.Versions,
		monitor:        NewMonitor(cfg.Jobs, cfg.Publisher, cfg.PollInterval, cfg.MaxWait, logger),
		validator:      NewValidator(cfg.Thresholds),
		registry:       NewRegistrySync(cfg.Registry, logger),
		autoValidation: cfg.autoValidation(),
		logger:         logger,
	}
}

// Run выполняет pipeline для job и финализирует его статус.
func (e *Executor) Run(ctx context.Context, jobID uuid.UUID) error {
	logger := telemetry.WithJobID(e.logger, jobID.String())

	err := e.execute(ctx, logger, jobID)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("pipeline interrupted by shutdown", "error", err)
		return err
	}

	logger.Error("pipeline failed", "error", err)

	// Единственная точка конвертации ошибки в FAILED. Для уже
	// отменённого job вызов no-op: терминальные статусы write-once.
	if failErr := e.jobs.Fail(ctx, jobID, err.Error()); failErr != nil {
		logger.Error("failed to mark job as failed", "error", failErr)
	}
	return err
}

// execute — шаги pipeline'а. Возвращает первую ошибку.
func (e *Executor) execute(ctx context.Context, logger *slog.Logger, jobID uuid.UUID) error {
	// Шаг 1: старт.
	job, err := e.jobs.Start(ctx, jobID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		case errors.Is(err, repo.ErrInvalidState):
			return fmt.Errorf("%w: %s", ErrJobNotPending, jobID)
		default:
			return fmt.Errorf("start job: %w", err)
		}
	}
	logger.Info("job started", "model_id", job.ModelID)

	// Шаг 2: данные.
	points, err := e.resolveData(ctx, job)
	if err != nil {
		return fmt.Errorf("resolve training data: %w", err)
	}
	if len(points) == 0 {
		return fmt.Errorf("%w for job %s", ErrNoTrainingData, jobID)
	}
	logger.Info("training data resolved", "data_points", len(points))

	// Шаг 3: ожидание external executor'а.
	final, err := e.monitor.Wait(ctx, jobID)
	if err != nil {
		return err
	}

	switch final.Status {
	case domain.JobStatusCompleted:
		// Продолжаем финализацию.
	case domain.JobStatusFailed:
		return fmt.Errorf("%w: %s", ErrExecutionFailed, final.Error)
	case domain.JobStatusCancelled:
		return fmt.Errorf("%w: %s", ErrJobCancelled, jobID)
	default:
		return fmt.Errorf("unexpected final status %s", final.Status)
	}

	// Шаг 4: валидация. Advisory: провал не меняет статус job.
	if e.autoValidation {
		result := e.validator.Validate(final)
		telemetry.ValidationScore.Observe(float64(result.Score))

		if !result.Passed {
			logger.Warn("validation failed",
				"score", result.Score,
				"errors", result.Errors,
				"warnings", result.Warnings,
			)
		} else {
			logger.Info("validation passed",
				"score", result.Score,
				"warnings", result.Warnings,
			)
		}
	}

	// Шаг 5: артефакты.
	if final.ResultVersionID != nil {
		version, err := e.versions.GetVersion(ctx, *final.ResultVersionID)
		if err != nil {
			return fmt.Errorf("get model version %s: %w", final.ResultVersionID, err)
		}
		if version.ArtifactPath == "" {
			return fmt.Errorf("model version %s has no artifact path", version.ID)
		}
		logger.Info("model version verified",
			"version_id", version.ID,
			"version", version.Version,
			"artifact_path", version.ArtifactPath,
		)
	}

	// Шаг 6: registry.
	if err := e.registry.EnsureRegistered(ctx, final); err != nil {
		return fmt.Errorf("sync registry: %w", err)
	}

	logger.Info("pipeline completed", "duration", final.Duration())
	return nil
}

// resolveData возвращает data points для job: явный список ID имеет
// приоритет над декларативным запросом.
func (e *Executor) resolveData(ctx context.Context, job *domain.TrainingJob) ([]domain.DataPoint, error) {
	if len(job.DataPointIDs) > 0 {
		return e.data.GetByIDs(ctx, job.DataPointIDs)
	}

	query := domain.DataQuery{ModelID: &job.ModelID}
	if job.DataQuery != nil {
		query = *job.DataQuery
	}
	return e.data.ResolveQuery(ctx, query)
}

package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Modelka/internal/domain"
)

// JobRepo — репозиторий training jobs (job record store).
//
// Единственный источник истины о статусе job. Все переходы статусов
// выполняются guarded UPDATE'ами: терминальные статусы write-once,
// повторный Fail/Cancel по завершённому job — no-op.
type JobRepo struct {
	pool *pgxpool.Pool
}

// NewJobRepo создаёт новый JobRepo.
func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

const jobColumns = `
	id, model_id, status, progress, current_epoch, total_epochs,
	data_query, data_point_ids, config, training_metrics, validation_metrics,
	result_version_id, error, created_by, started_at, finished_at, created_at
`

// Create создаёт новый job в статусе PENDING.
func (r *JobRepo) Create(ctx context.Context, job *domain.TrainingJob) error {
	var queryJSON []byte
	if job.DataQuery != nil {
		var err error
		queryJSON, err = json.Marshal(job.DataQuery)
		if err != nil {
			return fmt.Errorf("marshal data query: %w", err)
		}
	}
	configJSON, err := json.Marshal(job.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	query := `
		INSERT INTO training_jobs
			(id, model_id, status, progress, current_epoch, total_epochs,
			 data_query, data_point_ids, config, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.ModelID,
		job.Status,
		job.Progress,
		job.CurrentEpoch,
		job.TotalEpochs,
		queryJSON,
		job.DataPointIDs,
		configJSON,
		job.CreatedBy,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID возвращает job по ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM training_jobs WHERE id = $1`
	return r.scanJob(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список jobs с фильтрацией.
func (r *JobRepo) List(ctx context.Context, filter JobFilter) ([]domain.TrainingJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM training_jobs
		WHERE ($1::uuid IS NULL OR model_id = $1)
		  AND ($2::text IS NULL OR status = $2::job_status)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		filter.ModelID,
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.TrainingJob
	for rows.Next() {
		job, err := r.scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// Start переводит job PENDING → RUNNING.
//
// Возвращает ErrInvalidState, если job не в PENDING,
// и ErrNotFound, если job не существует.
func (r *JobRepo) Start(ctx context.Context, id uuid.UUID) (*domain.TrainingJob, error) {
	query := `
		UPDATE training_jobs
		SET status = 'RUNNING', started_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + jobColumns
	job, err := r.scanJob(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, ErrNotFound) {
		// Либо job нет, либо он не в PENDING — различаем.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidState
	}
	return job, err
}

// UpdateProgress обновляет прогресс выполняющегося job.
// Игнорируется (no-op), если job уже не в RUNNING.
func (r *JobRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress, currentEpoch, totalEpochs int, metrics map[string]float64) error {
	metricsJSON, err := marshalMetrics(metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	query := `
		UPDATE training_jobs
		SET progress = $2,
		    current_epoch = $3,
		    total_epochs = $4,
		    training_metrics = COALESCE($5, training_metrics)
		WHERE id = $1 AND status = 'RUNNING'
	`
	_, err = r.pool.Exec(ctx, query, id, progress, currentEpoch, totalEpochs, metricsJSON)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// Complete переводит job RUNNING → COMPLETED с финальными метриками
// и созданной версией модели.
func (r *JobRepo) Complete(ctx context.Context, id uuid.UUID, training, validation map[string]float64, resultVersionID *uuid.UUID) error {
	trainingJSON, err := marshalMetrics(training)
	if err != nil {
		return fmt.Errorf("marshal training metrics: %w", err)
	}
	validationJSON, err := marshalMetrics(validation)
	if err != nil {
		return fmt.Errorf("marshal validation metrics: %w", err)
	}

	query := `
		UPDATE training_jobs
		SET status = 'COMPLETED',
		    progress = 100,
		    finished_at = now(),
		    training_metrics = COALESCE($2, training_metrics),
		    validation_metrics = COALESCE($3, validation_metrics),
		    result_version_id = $4
		WHERE id = $1 AND status = 'RUNNING'
	`
	result, err := r.pool.Exec(ctx, query, id, trainingJSON, validationJSON, resultVersionID)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInvalidState
	}
	return nil
}

// Fail переводит job в FAILED с текстом ошибки.
// No-op, если job уже в терминальном статусе (write-once).
func (r *JobRepo) Fail(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE training_jobs
		SET status = 'FAILED', error = $2, finished_at = now()
		WHERE id = $1 AND status IN ('PENDING', 'RUNNING')
	`
	_, err := r.pool.Exec(ctx, query, id, message)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// Cancel переводит job в CANCELLED.
// No-op, если job уже в терминальном статусе.
func (r *JobRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE training_jobs
		SET status = 'CANCELLED', finished_at = now()
		WHERE id = $1 AND status IN ('PENDING', 'RUNNING')
	`
	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	return nil
}

// --- Helpers ---

// JobFilter — параметры фильтрации jobs.
type JobFilter struct {
	ModelID *uuid.UUID
	Status  domain.JobStatus
	Limit   int
	Offset  int
}

// scanJob сканирует одну строку в TrainingJob.
func (r *JobRepo) scanJob(row pgx.Row) (*domain.TrainingJob, error) {
	var job domain.TrainingJob
	var queryJSON, configJSON, trainingJSON, validationJSON []byte
	var jobError *string

	err := row.Scan(
		&job.ID,
		&job.ModelID,
		&job.Status,
		&job.Progress,
		&job.CurrentEpoch,
		&job.TotalEpochs,
		&queryJSON,
		&job.DataPointIDs,
		&configJSON,
		&trainingJSON,
		&validationJSON,
		&job.ResultVersionID,
		&jobError,
		&job.CreatedBy,
		&job.StartedAt,
		&job.FinishedAt,
		&job.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if queryJSON != nil {
		if err := json.Unmarshal(queryJSON, &job.DataQuery); err != nil {
			return nil, fmt.Errorf("unmarshal data query: %w", err)
		}
	}
	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &job.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	if trainingJSON != nil {
		if err := json.Unmarshal(trainingJSON, &job.TrainingMetrics); err != nil {
			return nil, fmt.Errorf("unmarshal training metrics: %w", err)
		}
	}
	if validationJSON != nil {
		if err := json.Unmarshal(validationJSON, &job.ValidationMetrics); err != nil {
			return nil, fmt.Errorf("unmarshal validation metrics: %w", err)
		}
	}
	if jobError != nil {
		job.Error = *jobError
	}

	return &job, nil
}

// marshalMetrics сериализует метрики в JSON.
// Возвращает nil (SQL NULL) для nil-карты, чтобы COALESCE
// в UPDATE'ах сохранял прежнее значение.
func marshalMetrics(m map[string]float64) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

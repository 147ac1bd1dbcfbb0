package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Modelka/internal/domain"
)

// ModelRepo — репозиторий model registry и версий моделей.
type ModelRepo struct {
	pool *pgxpool.Pool
}

// NewModelRepo создаёт новый ModelRepo.
func NewModelRepo(pool *pgxpool.Pool) *ModelRepo {
	return &ModelRepo{pool: pool}
}

// GetVersion возвращает версию модели по ID.
func (r *ModelRepo) GetVersion(ctx context.Context, id uuid.UUID) (*domain.ModelVersion, error) {
	query := `
		SELECT id, model_id, version, artifact_path, metrics, created_at
		FROM model_versions
		WHERE id = $1
	`
	var mv domain.ModelVersion
	var metricsJSON []byte

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&mv.ID,
		&mv.ModelID,
		&mv.Version,
		&mv.ArtifactPath,
		&metricsJSON,
		&mv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan model version: %w", err)
	}

	if metricsJSON != nil {
		if err := json.Unmarshal(metricsJSON, &mv.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
	}
	return &mv, nil
}

// CreateVersion создаёт новую версию модели.
// Номер версии — следующий за максимальным для данной модели.
func (r *ModelRepo) CreateVersion(ctx context.Context, mv *domain.ModelVersion) error {
	metricsJSON, err := marshalMetrics(mv.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	query := `
		INSERT INTO model_versions (id, model_id, version, artifact_path, metrics, created_at)
		VALUES ($1, $2,
		        (SELECT COALESCE(MAX(version), 0) + 1 FROM model_versions WHERE model_id = $2),
		        $3, $4, $5)
		RETURNING version
	`
	err = r.pool.QueryRow(ctx, query, mv.ID, mv.ModelID, mv.ArtifactPath, metricsJSON, mv.CreatedAt).
		Scan(&mv.Version)
	if err != nil {
		return fmt.Errorf("insert model version: %w", err)
	}
	return nil
}

// GetModel возвращает запись registry по model ID.
func (r *ModelRepo) GetModel(ctx context.Context, modelID uuid.UUID) (*domain.RegistryEntry, error) {
	query := `
		SELECT model_id, name, model_type, framework, created_by, created_at, updated_at
		FROM model_registry
		WHERE model_id = $1
	`
	var entry domain.RegistryEntry
	var createdBy *string

	err := r.pool.QueryRow(ctx, query, modelID).Scan(
		&entry.ModelID,
		&entry.Name,
		&entry.ModelType,
		&entry.Framework,
		&createdBy,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan registry entry: %w", err)
	}

	if createdBy != nil {
		entry.CreatedBy = *createdBy
	}
	return &entry, nil
}

// CreateOrUpdateModel создаёт или обновляет запись registry (upsert).
func (r *ModelRepo) CreateOrUpdateModel(ctx context.Context, entry *domain.RegistryEntry) (*domain.RegistryEntry, error) {
	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	query := `
		INSERT INTO model_registry (model_id, name, model_type, framework, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (model_id) DO UPDATE
		SET name = EXCLUDED.name,
		    model_type = EXCLUDED.model_type,
		    framework = EXCLUDED.framework,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		entry.ModelID,
		entry.Name,
		entry.ModelType,
		entry.Framework,
		nullString(entry.CreatedBy),
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert registry entry: %w", err)
	}
	return entry, nil
}

package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
	"github.com/shaiso/Modelka/internal/repo"
)

// JobStore — job record store: единственный источник истины о
// статусе job. Контракт реализует repo.JobRepo.
//
// Start возвращает repo.ErrInvalidState, если job не в PENDING.
// Fail и Cancel — no-op для jobs в терминальном статусе.
type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingJob, error)
	Start(ctx context.Context, id uuid.UUID) (*domain.TrainingJob, error)
	Fail(ctx context.Context, id uuid.UUID, message string) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

// DataSource — разрешение обучающих данных (repo.DataRepo).
type DataSource interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.DataPoint, error)
	ResolveQuery(ctx context.Context, q domain.DataQuery) ([]domain.DataPoint, error)
}

// VersionSource — чтение версий моделей (repo.ModelRepo).
type VersionSource interface {
	GetVersion(ctx context.Context, id uuid.UUID) (*domain.ModelVersion, error)
}

// ModelRegistry — model registry (repo.ModelRepo).
type ModelRegistry interface {
	GetModel(ctx context.Context, modelID uuid.UUID) (*domain.RegistryEntry, error)
	CreateOrUpdateModel(ctx context.Context, entry *domain.RegistryEntry) (*domain.RegistryEntry, error)
}

// Runner — выполнение pipeline'а для одного job.
// Production-реализация — Executor.
type Runner interface {
	Run(ctx context.Context, jobID uuid.UUID) error
}

var (
	_ JobStore      = (*repo.JobRepo)(nil)
	_ DataSource    = (*repo.DataRepo)(nil)
	_ VersionSource = (*repo.ModelRepo)(nil)
	_ ModelRegistry = (*repo.ModelRepo)(nil)
)

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/Modelka/internal/domain"
	"github.com/shaiso/Modelka/internal/repo"
	"github.com/shaiso/Modelka/internal/telemetry"
)

// Значения по умолчанию для регистрации модели, когда job
// не указал их в конфигурации.
const (
	defaultModelType = "transformer"
	defaultFramework = "pytorch"
)

// RegistrySync гарантирует наличие записи модели в registry
// после успешного обучения.
type RegistrySync struct {
	registry ModelRegistry
	logger   *slog.Logger
}

// NewRegistrySync создаёт RegistrySync.
func NewRegistrySync(registry ModelRegistry, logger *slog.Logger) *RegistrySync {
	return &RegistrySync{
		registry: registry,
		logger:   logger,
	}
}

// EnsureRegistered проверяет, что модель job'а есть в registry,
// и создаёт запись, если её нет. Идемпотентен: существующая запись
// не модифицируется.
func (s *RegistrySync) EnsureRegistered(ctx context.Context, job *domain.TrainingJob) error {
	_, err := s.registry.GetModel(ctx, job.ModelID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("get model: %w", err)
	}

	modelType := job.Config.ModelType
	if modelType == "" {
		modelType = defaultModelType
	}
	framework := job.Config.Framework
	if framework == "" {
		framework = defaultFramework
	}

	entry := &domain.RegistryEntry{
		ModelID:   job.ModelID,
		Name:      job.ModelID.String(),
		ModelType: modelType,
		Framework: framework,
		CreatedBy: job.CreatedBy,
	}
	if _, err := s.registry.CreateOrUpdateModel(ctx, entry); err != nil {
		return fmt.Errorf("register model: %w", err)
	}

	telemetry.WithModelID(s.logger, job.ModelID.String()).Info("model registered",
		"model_type", modelType,
		"framework", framework,
	)
	return nil
}

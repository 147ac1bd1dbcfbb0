package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModelVersion — версия модели, произведённая успешным обучением.
type ModelVersion struct {
	// ID — уникальный идентификатор версии.
	ID uuid.UUID `json:"id"`

	// ModelID — модель, к которой относится версия.
	ModelID uuid.UUID `json:"model_id"`

	// Version — порядковый номер версии.
	Version int `json:"version"`

	// ArtifactPath — путь к артефакту в storage.
	// Например: "s3://models/abc/v3/weights.pt".
	ArtifactPath string `json:"artifact_path"`

	// Metrics — метрики версии на момент создания.
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// CreatedAt — время создания версии.
	CreatedAt time.Time `json:"created_at"`
}

// RegistryEntry — запись модели в model registry.
type RegistryEntry struct {
	// ModelID — идентификатор модели (ключ registry).
	ModelID uuid.UUID `json:"model_id"`

	// Name — человекочитаемое имя модели.
	Name string `json:"name"`

	// ModelType — тип модели ("transformer", "cnn", ...).
	ModelType string `json:"model_type"`

	// Framework — фреймворк ("pytorch", "tensorflow", ...).
	Framework string `json:"framework"`

	// CreatedBy — владелец записи.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedAt / UpdatedAt — времена создания и обновления.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

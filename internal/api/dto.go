package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
)

// Job DTOs

// CreateJobRequest — запрос на создание training job.
type CreateJobRequest struct {
	ModelID      uuid.UUID         `json:"model_id"`
	DataQuery    *domain.DataQuery `json:"data_query,omitempty"`
	DataPointIDs []uuid.UUID       `json:"data_point_ids,omitempty"`
	Config       domain.JobConfig  `json:"config"`
	TotalEpochs  int               `json:"total_epochs,omitempty"`
	CreatedBy    string            `json:"created_by,omitempty"`
}

// JobResponse — ответ с training job.
type JobResponse struct {
	ID                uuid.UUID          `json:"id"`
	ModelID           uuid.UUID          `json:"model_id"`
	Status            string             `json:"status"`
	Progress          int                `json:"progress"`
	CurrentEpoch      int                `json:"current_epoch"`
	TotalEpochs       int                `json:"total_epochs"`
	DataQuery         *domain.DataQuery  `json:"data_query,omitempty"`
	DataPointIDs      []uuid.UUID        `json:"data_point_ids,omitempty"`
	Config            domain.JobConfig   `json:"config"`
	TrainingMetrics   map[string]float64 `json:"training_metrics,omitempty"`
	ValidationMetrics map[string]float64 `json:"validation_metrics,omitempty"`
	ResultVersionID   *uuid.UUID         `json:"result_version_id,omitempty"`
	Error             string             `json:"error,omitempty"`
	CreatedBy         string             `json:"created_by,omitempty"`
	StartedAt         *time.Time         `json:"started_at,omitempty"`
	FinishedAt        *time.Time         `json:"finished_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// JobFromDomain конвертирует domain.TrainingJob в JobResponse.
func JobFromDomain(j domain.TrainingJob) JobResponse {
	return JobResponse{
		ID:                j.ID,
		ModelID:           j.ModelID,
		Status:            string(j.Status),
		Progress:          j.Progress,
		CurrentEpoch:      j.CurrentEpoch,
		TotalEpochs:       j.TotalEpochs,
		DataQuery:         j.DataQuery,
		DataPointIDs:      j.DataPointIDs,
		Config:            j.Config,
		TrainingMetrics:   j.TrainingMetrics,
		ValidationMetrics: j.ValidationMetrics,
		ResultVersionID:   j.ResultVersionID,
		Error:             j.Error,
		CreatedBy:         j.CreatedBy,
		StartedAt:         j.StartedAt,
		FinishedAt:        j.FinishedAt,
		CreatedAt:         j.CreatedAt,
	}
}

// Callbacks external trainer'а

// ReportProgressRequest — отчёт о прогрессе обучения.
type ReportProgressRequest struct {
	Progress     int                `json:"progress"`
	CurrentEpoch int                `json:"current_epoch"`
	TotalEpochs  int                `json:"total_epochs"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// CompleteJobRequest — финальный отчёт обучения.
//
// Success=true — job переводится в COMPLETED, создаётся версия
// модели (если указан artifact_path). Success=false — FAILED
// с текстом ошибки.
type CompleteJobRequest struct {
	Success           bool               `json:"success"`
	Error             string             `json:"error,omitempty"`
	TrainingMetrics   map[string]float64 `json:"training_metrics,omitempty"`
	ValidationMetrics map[string]float64 `json:"validation_metrics,omitempty"`
	ArtifactPath      string             `json:"artifact_path,omitempty"`
}

// Data DTOs

// CreateDataPointRequest — запрос на добавление data point.
type CreateDataPointRequest struct {
	ModelID uuid.UUID      `json:"model_id"`
	Label   string         `json:"label,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// DataPointResponse — ответ с data point.
type DataPointResponse struct {
	ID        uuid.UUID      `json:"id"`
	ModelID   uuid.UUID      `json:"model_id"`
	Label     string         `json:"label,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// DataPointFromDomain конвертирует domain.DataPoint в DataPointResponse.
func DataPointFromDomain(dp domain.DataPoint) DataPointResponse {
	return DataPointResponse{
		ID:        dp.ID,
		ModelID:   dp.ModelID,
		Label:     dp.Label,
		Payload:   dp.Payload,
		CreatedAt: dp.CreatedAt,
	}
}

// Model DTOs

// ModelResponse — ответ с записью registry.
type ModelResponse struct {
	ModelID   uuid.UUID `json:"model_id"`
	Name      string    `json:"name"`
	ModelType string    `json:"model_type"`
	Framework string    `json:"framework"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModelFromDomain конвертирует domain.RegistryEntry в ModelResponse.
func ModelFromDomain(e *domain.RegistryEntry) ModelResponse {
	return ModelResponse{
		ModelID:   e.ModelID,
		Name:      e.Name,
		ModelType: e.ModelType,
		Framework: e.Framework,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ModelVersionResponse — ответ с версией модели.
type ModelVersionResponse struct {
	ID           uuid.UUID          `json:"id"`
	ModelID      uuid.UUID          `json:"model_id"`
	Version      int                `json:"version"`
	ArtifactPath string             `json:"artifact_path"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ModelVersionFromDomain конвертирует domain.ModelVersion в ModelVersionResponse.
func ModelVersionFromDomain(v *domain.ModelVersion) ModelVersionResponse {
	return ModelVersionResponse{
		ID:           v.ID,
		ModelID:      v.ModelID,
		Version:      v.Version,
		ArtifactPath: v.ArtifactPath,
		Metrics:      v.Metrics,
		CreatedAt:    v.CreatedAt,
	}
}

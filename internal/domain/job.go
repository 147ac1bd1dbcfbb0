package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrainingJob — одна единица обучения модели.
//
// Job создаётся через API в статусе PENDING, попадает в очередь
// pipeline'а по явному submit и исполняется внешним training
// executor'ом. Оркестратор только стартует, мониторит и
// финализирует job через job record store.
type TrainingJob struct {
	// ID — уникальный идентификатор job.
	ID uuid.UUID `json:"id"`

	// ModelID — модель, для которой идёт обучение.
	ModelID uuid.UUID `json:"model_id"`

	// Status — текущий статус.
	Status JobStatus `json:"status"`

	// Progress — прогресс обучения, 0–100.
	Progress int `json:"progress"`

	// CurrentEpoch / TotalEpochs — позиция в обучении.
	CurrentEpoch int `json:"current_epoch"`
	TotalEpochs  int `json:"total_epochs"`

	// DataQuery — декларативный запрос на обучающие данные.
	// Используется, если DataPointIDs пуст.
	DataQuery *DataQuery `json:"data_query,omitempty"`

	// DataPointIDs — явный список data points для обучения.
	// Имеет приоритет над DataQuery.
	DataPointIDs []uuid.UUID `json:"data_point_ids,omitempty"`

	// Config — конфигурация модели/обучения.
	Config JobConfig `json:"config"`

	// TrainingMetrics / ValidationMetrics — метрики, которые
	// external executor отчитывает по ходу и по завершении.
	TrainingMetrics   map[string]float64 `json:"training_metrics,omitempty"`
	ValidationMetrics map[string]float64 `json:"validation_metrics,omitempty"`

	// ResultVersionID — версия модели, созданная при успешном
	// завершении. Nil, пока обучение не завершилось.
	ResultVersionID *uuid.UUID `json:"result_version_id,omitempty"`

	// Error — текст ошибки при статусе FAILED.
	Error string `json:"error,omitempty"`

	// CreatedBy — владелец job.
	CreatedBy string `json:"created_by"`

	// StartedAt — время перехода в RUNNING.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время перехода в терминальный статус.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания job.
	CreatedAt time.Time `json:"created_at"`
}

// JobConfig — параметры обучения, передаваемые executor'у.
type JobConfig struct {
	// ModelType — тип модели ("transformer", "cnn", ...).
	ModelType string `json:"model_type,omitempty"`

	// Framework — фреймворк обучения ("pytorch", "tensorflow", ...).
	Framework string `json:"framework,omitempty"`

	// Hyperparams — произвольные гиперпараметры.
	Hyperparams map[string]any `json:"hyperparams,omitempty"`
}

// Duration возвращает продолжительность обучения.
// Возвращает 0, если job ещё не завершён.
func (j *TrainingJob) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// IsFinished возвращает true, если job в терминальном статусе.
func (j *TrainingJob) IsFinished() bool {
	return j.Status.IsTerminal()
}

// Metrics возвращает объединённые training+validation метрики.
// Validation метрики имеют приоритет при совпадении ключей.
func (j *TrainingJob) Metrics() map[string]float64 {
	merged := make(map[string]float64, len(j.TrainingMetrics)+len(j.ValidationMetrics))
	for k, v := range j.TrainingMetrics {
		merged[k] = v
	}
	for k, v := range j.ValidationMetrics {
		merged[k] = v
	}
	return merged
}

// MarkRunning переводит job в статус RUNNING.
func (j *TrainingJob) MarkRunning() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// MarkCompleted переводит job в статус COMPLETED.
func (j *TrainingJob) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.FinishedAt = &now
	j.Progress = 100
}

// MarkFailed переводит job в статус FAILED с ошибкой.
func (j *TrainingJob) MarkFailed(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.FinishedAt = &now
	j.Error = err
}

// MarkCancelled переводит job в статус CANCELLED.
func (j *TrainingJob) MarkCancelled() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.FinishedAt = &now
}

package pipeline

import (
	"fmt"

	"github.com/shaiso/Modelka/internal/domain"
)

// Ключи метрик, которые external executor отчитывает в record store.
const (
	MetricFinalLoss      = "final_loss"
	MetricAccuracy       = "accuracy"
	MetricValidationLoss = "validation_loss"
)

// Пороги валидации по умолчанию.
const (
	DefaultMinAccuracy             = 0.85
	DefaultMaxLoss                 = 0.5
	DefaultMinDetectionImprovement = 5.0
)

// Thresholds — пороги оценки метрик завершённого обучения.
type Thresholds struct {
	// MinAccuracy — минимально допустимая accuracy.
	MinAccuracy float64

	// MaxLoss — максимально допустимый loss (final и validation).
	MaxLoss float64

	// MinDetectionImprovement — минимальное улучшение detection
	// rate относительно предыдущей версии, в процентных пунктах.
	MinDetectionImprovement float64
}

// DefaultThresholds возвращает пороги по умолчанию.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAccuracy:             DefaultMinAccuracy,
		MaxLoss:                 DefaultMaxLoss,
		MinDetectionImprovement: DefaultMinDetectionImprovement,
	}
}

// Validator оценивает метрики завершённого job по порогам.
//
// Результат advisory: проваленная валидация логируется, но не
// меняет статус job.
type Validator struct {
	thresholds Thresholds
}

// NewValidator создаёт Validator. Нулевые пороги заменяются defaults.
func NewValidator(t Thresholds) *Validator {
	if t.MinAccuracy <= 0 {
		t.MinAccuracy = DefaultMinAccuracy
	}
	if t.MaxLoss <= 0 {
		t.MaxLoss = DefaultMaxLoss
	}
	if t.MinDetectionImprovement <= 0 {
		t.MinDetectionImprovement = DefaultMinDetectionImprovement
	}
	return &Validator{thresholds: t}
}

// Validate считает оценку job по метрикам.
//
// Слагаемые (сумма ограничена 100):
//   - +30 — final_loss присутствует и <= MaxLoss, иначе error
//   - +40 — accuracy присутствует и >= MinAccuracy, иначе warning
//   - +30 — validation_loss присутствует и <= MaxLoss, иначе warning
//   - +20 — создана версия модели, иначе error
//
// Passed = отсутствие errors; warnings только снижают score.
//
// TODO: учитывать MinDetectionImprovement, когда external executor
// начнёт отчитывать detection_rate предыдущей и новой версии.
func (v *Validator) Validate(job *domain.TrainingJob) *domain.ValidationResult {
	metrics := job.Metrics()
	result := &domain.ValidationResult{Metrics: metrics}

	if loss, ok := metrics[MetricFinalLoss]; ok && loss <= v.thresholds.MaxLoss {
		result.Score += 30
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("final loss exceeds threshold %.2f", v.thresholds.MaxLoss))
	}

	if acc, ok := metrics[MetricAccuracy]; ok && acc >= v.thresholds.MinAccuracy {
		result.Score += 40
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("accuracy below threshold %.2f", v.thresholds.MinAccuracy))
	}

	if loss, ok := metrics[MetricValidationLoss]; ok && loss <= v.thresholds.MaxLoss {
		result.Score += 30
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("validation loss exceeds threshold %.2f", v.thresholds.MaxLoss))
	}

	if job.ResultVersionID != nil {
		result.Score += 20
	} else {
		result.Errors = append(result.Errors, "no resulting model version created")
	}

	if result.Score > 100 {
		result.Score = 100
	}
	result.Passed = len(result.Errors) == 0

	return result
}

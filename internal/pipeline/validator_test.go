package pipeline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
)

func completedJob(metrics map[string]float64, withVersion bool) *domain.TrainingJob {
	job := &domain.TrainingJob{
		ID:                uuid.New(),
		ModelID:           uuid.New(),
		Status:            domain.JobStatusCompleted,
		ValidationMetrics: metrics,
	}
	if withVersion {
		versionID := uuid.New()
		job.ResultVersionID = &versionID
	}
	return job
}

func TestValidatorAllThresholdsMet(t *testing.T) {
	v := NewValidator(DefaultThresholds())
	job := completedJob(map[string]float64{
		MetricFinalLoss:      0.3,
		MetricAccuracy:       0.92,
		MetricValidationLoss: 0.4,
	}, true)

	result := v.Validate(job)

	if !result.Passed {
		t.Errorf("passed: got false, want true (errors: %v)", result.Errors)
	}
	// 30+40+30+20 упирается в потолок 100.
	if result.Score != 100 {
		t.Errorf("score: got %d, want 100", result.Score)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings: got %v, want none", result.Warnings)
	}
}

func TestValidatorFinalLossExceedsThreshold(t *testing.T) {
	v := NewValidator(DefaultThresholds())
	job := completedJob(map[string]float64{
		MetricFinalLoss:      0.9,
		MetricAccuracy:       0.92,
		MetricValidationLoss: 0.4,
	}, true)

	result := v.Validate(job)

	if result.Passed {
		t.Error("passed: got true, want false")
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors: got %v, want exactly one", result.Errors)
	}
	if result.Score != 90 {
		t.Errorf("score: got %d, want 90", result.Score)
	}
}

func TestValidatorLowAccuracyIsAdvisory(t *testing.T) {
	v := NewValidator(DefaultThresholds())
	job := completedJob(map[string]float64{
		MetricFinalLoss:      0.3,
		MetricAccuracy:       0.5,
		MetricValidationLoss: 0.4,
	}, true)

	result := v.Validate(job)

	// Низкая accuracy — warning, не error.
	if !result.Passed {
		t.Errorf("passed: got false, want true (errors: %v)", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings: got %v, want exactly one", result.Warnings)
	}
	if result.Score != 80 {
		t.Errorf("score: got %d, want 80", result.Score)
	}
}

func TestValidatorMissingVersionIsError(t *testing.T) {
	v := NewValidator(DefaultThresholds())
	job := completedJob(map[string]float64{
		MetricFinalLoss:      0.3,
		MetricAccuracy:       0.92,
		MetricValidationLoss: 0.4,
	}, false)

	result := v.Validate(job)

	if result.Passed {
		t.Error("passed: got true, want false")
	}
	if result.Score != 100 {
		t.Errorf("score: got %d, want 100", result.Score)
	}
}

func TestValidatorNoMetricsAtAll(t *testing.T) {
	v := NewValidator(DefaultThresholds())
	job := completedJob(nil, false)

	result := v.Validate(job)

	if result.Passed {
		t.Error("passed: got true, want false")
	}
	if result.Score != 0 {
		t.Errorf("score: got %d, want 0", result.Score)
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors: got %v, want two", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("warnings: got %v, want two", result.Warnings)
	}
}

func TestValidatorCustomThresholds(t *testing.T) {
	v := NewValidator(Thresholds{MinAccuracy: 0.99, MaxLoss: 0.1})
	job := completedJob(map[string]float64{
		MetricFinalLoss:      0.3,
		MetricAccuracy:       0.92,
		MetricValidationLoss: 0.4,
	}, true)

	result := v.Validate(job)

	if result.Passed {
		t.Error("passed: got true, want false with stricter thresholds")
	}
	// Только версия модели даёт очки.
	if result.Score != 20 {
		t.Errorf("score: got %d, want 20", result.Score)
	}
}

func TestValidatorMergesTrainingAndValidationMetrics(t *testing.T) {
	v := NewValidator(DefaultThresholds())
	job := completedJob(map[string]float64{MetricValidationLoss: 0.4}, true)
	job.TrainingMetrics = map[string]float64{
		MetricFinalLoss: 0.3,
		MetricAccuracy:  0.92,
	}

	result := v.Validate(job)

	if !result.Passed {
		t.Errorf("passed: got false, want true (errors: %v)", result.Errors)
	}
	if result.Score != 100 {
		t.Errorf("score: got %d, want 100", result.Score)
	}
}

package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
)

type executorFixture struct {
	store    *fakeJobStore
	data     *fakeDataSource
	versions *fakeVersionSource
	registry *fakeRegistry
}

func newExecutorFixture(jobs ...*domain.TrainingJob) *executorFixture {
	return &executorFixture{
		store: newFakeJobStore(jobs...),
		data: &fakeDataSource{points: []domain.DataPoint{
			{ID: uuid.New(), Label: "sample"},
		}},
		versions: &fakeVersionSource{versions: make(map[uuid.UUID]*domain.ModelVersion)},
		registry: newFakeRegistry(),
	}
}

func (f *executorFixture) executor() *Executor {
	return NewExecutor(Config{
		Jobs:         f.store,
		Data:         f.data,
		Versions:     f.versions,
		Registry:     f.registry,
		PollInterval: time.Millisecond,
		MaxWait:      2 * time.Second,
		Logger:       testLogger(),
	})
}

// addVersion регистрирует версию модели в фейковом источнике.
func (f *executorFixture) addVersion(modelID uuid.UUID, artifactPath string) uuid.UUID {
	id := uuid.New()
	f.versions.versions[id] = &domain.ModelVersion{
		ID:           id,
		ModelID:      modelID,
		Version:      1,
		ArtifactPath: artifactPath,
	}
	return id
}

func goodMetrics() map[string]float64 {
	return map[string]float64{
		MetricFinalLoss:      0.3,
		MetricAccuracy:       0.92,
		MetricValidationLoss: 0.4,
	}
}

func TestExecutorFullRun(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)
	versionID := f.addVersion(job.ModelID, "/models/artifact.pt")

	f.store.whenRunning(job.ID, func() {
		f.store.complete(job.ID, goodMetrics(), &versionID)
	})

	if err := f.executor().Run(context.Background(), job.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := f.store.status(job.ID); got != domain.JobStatusCompleted {
		t.Errorf("job status: got %s, want COMPLETED", got)
	}
	// Модель зарегистрирована с defaults: в конфиге job'а нет типа.
	entry, err := f.registry.GetModel(context.Background(), job.ModelID)
	if err != nil {
		t.Fatalf("get model: %v", err)
	}
	if entry.ModelType != "transformer" || entry.Framework != "pytorch" {
		t.Errorf("registry defaults: got %s/%s", entry.ModelType, entry.Framework)
	}
}

func TestExecutorRegistrySyncIsIdempotent(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)
	versionID := f.addVersion(job.ModelID, "/models/artifact.pt")

	f.registry.entries[job.ModelID] = &domain.RegistryEntry{
		ModelID: job.ModelID,
		Name:    "existing",
	}

	f.store.whenRunning(job.ID, func() {
		f.store.complete(job.ID, goodMetrics(), &versionID)
	})

	if err := f.executor().Run(context.Background(), job.ID); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := f.registry.upsertCount(); got != 0 {
		t.Errorf("upserts for already registered model: got %d, want 0", got)
	}
}

func TestExecutorFailsWithoutTrainingData(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)
	f.data.points = nil

	err := f.executor().Run(context.Background(), job.ID)
	if !errors.Is(err, ErrNoTrainingData) {
		t.Fatalf("got %v, want ErrNoTrainingData", err)
	}

	final := f.store.get(job.ID)
	if final.Status != domain.JobStatusFailed {
		t.Errorf("job status: got %s, want FAILED", final.Status)
	}
	if !strings.Contains(final.Error, "no training data") {
		t.Errorf("job error: %q", final.Error)
	}
}

func TestExecutorPropagatesTrainingFailure(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)

	f.store.whenRunning(job.ID, func() {
		f.store.Fail(context.Background(), job.ID, "gpu exploded")
	})

	err := f.executor().Run(context.Background(), job.ID)
	if !errors.Is(err, ErrExecutionFailed) {
		t.Fatalf("got %v, want ErrExecutionFailed", err)
	}

	// Текст ошибки external executor'а не перезаписывается:
	// терминальный статус write-once.
	final := f.store.get(job.ID)
	if final.Error != "gpu exploded" {
		t.Errorf("job error: got %q, want original message", final.Error)
	}
}

func TestExecutorFailsOnMonitoringTimeout(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)

	// External executor никогда не завершает job.
	exec := NewExecutor(Config{
		Jobs:         f.store,
		Data:         f.data,
		Versions:     f.versions,
		Registry:     f.registry,
		PollInterval: time.Millisecond,
		MaxWait:      30 * time.Millisecond,
		Logger:       testLogger(),
	})

	err := exec.Run(context.Background(), job.ID)
	if !errors.Is(err, ErrMonitoringTimeout) {
		t.Fatalf("got %v, want ErrMonitoringTimeout", err)
	}

	final := f.store.get(job.ID)
	if final.Status != domain.JobStatusFailed {
		t.Errorf("job status: got %s, want FAILED", final.Status)
	}
	if !strings.Contains(final.Error, "monitoring timed out") {
		t.Errorf("job error: %q", final.Error)
	}
}

func TestExecutorObservesCancellation(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)

	f.store.whenRunning(job.ID, func() {
		f.store.Cancel(context.Background(), job.ID)
	})

	err := f.executor().Run(context.Background(), job.ID)
	if !errors.Is(err, ErrJobCancelled) {
		t.Fatalf("got %v, want ErrJobCancelled", err)
	}
	if got := f.store.status(job.ID); got != domain.JobStatusCancelled {
		t.Errorf("job status: got %s, want CANCELLED", got)
	}
}

func TestExecutorRejectsNonPendingJob(t *testing.T) {
	job := pendingJob()
	job.Status = domain.JobStatusCompleted
	f := newExecutorFixture(job)

	err := f.executor().Run(context.Background(), job.ID)
	if !errors.Is(err, ErrJobNotPending) {
		t.Fatalf("got %v, want ErrJobNotPending", err)
	}
	if got := f.store.status(job.ID); got != domain.JobStatusCompleted {
		t.Errorf("job status: got %s, want COMPLETED untouched", got)
	}
}

func TestExecutorFailsOnMissingArtifact(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)
	versionID := f.addVersion(job.ModelID, "")

	f.store.whenRunning(job.ID, func() {
		f.store.complete(job.ID, goodMetrics(), &versionID)
	})

	err := f.executor().Run(context.Background(), job.ID)
	if err == nil || !strings.Contains(err.Error(), "artifact path") {
		t.Fatalf("got %v, want artifact path error", err)
	}
}

func TestExecutorValidationIsAdvisory(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)
	versionID := f.addVersion(job.ModelID, "/models/artifact.pt")

	// Метрики проваливают валидацию, но pipeline завершается успешно.
	f.store.whenRunning(job.ID, func() {
		f.store.complete(job.ID, map[string]float64{MetricFinalLoss: 0.95}, &versionID)
	})

	if err := f.executor().Run(context.Background(), job.ID); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := f.store.status(job.ID); got != domain.JobStatusCompleted {
		t.Errorf("job status: got %s, want COMPLETED", got)
	}
}

func TestExecutorCompletesWithoutResultVersion(t *testing.T) {
	job := pendingJob()
	f := newExecutorFixture(job)

	f.store.whenRunning(job.ID, func() {
		f.store.complete(job.ID, goodMetrics(), nil)
	})

	if err := f.executor().Run(context.Background(), job.ID); err != nil {
		t.Fatalf("run: %v", err)
	}
}

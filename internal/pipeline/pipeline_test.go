package pipeline

// Общие фейки и помощники для тестов pipeline'а.
//
// fakeJobStore воспроизводит контракт repo.JobRepo, включая guarded
// переходы: терминальные статусы write-once, Fail/Cancel по
// завершённому job — no-op.

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
	"github.com/shaiso/Modelka/internal/repo"
)

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.TrainingJob
}

func newFakeJobStore(jobs ...*domain.TrainingJob) *fakeJobStore {
	s := &fakeJobStore{jobs: make(map[uuid.UUID]*domain.TrainingJob)}
	for _, job := range jobs {
		s.jobs[job.ID] = job
	}
	return s
}

func (s *fakeJobStore) GetByID(_ context.Context, id uuid.UUID) (*domain.TrainingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *fakeJobStore) Start(_ context.Context, id uuid.UUID) (*domain.TrainingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if job.Status != domain.JobStatusPending {
		return nil, repo.ErrInvalidState
	}
	job.MarkRunning()
	cp := *job
	return &cp, nil
}

func (s *fakeJobStore) Fail(_ context.Context, id uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.IsTerminal() {
		return nil
	}
	job.MarkFailed(message)
	return nil
}

func (s *fakeJobStore) Cancel(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.IsTerminal() {
		return nil
	}
	job.MarkCancelled()
	return nil
}

// complete имитирует external executor: RUNNING → COMPLETED
// с метриками и версией модели.
func (s *fakeJobStore) complete(id uuid.UUID, metrics map[string]float64, versionID *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != domain.JobStatusRunning {
		return
	}
	job.MarkCompleted()
	job.ValidationMetrics = metrics
	job.ResultVersionID = versionID
}

// whenRunning выполняет fn, как только job перейдёт в RUNNING.
// Имитация реакции external executor'а на старт обучения.
func (s *fakeJobStore) whenRunning(id uuid.UUID, fn func()) {
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if s.status(id) == domain.JobStatusRunning {
				fn()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func (s *fakeJobStore) status(id uuid.UUID) domain.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id].Status
}

func (s *fakeJobStore) get(id uuid.UUID) domain.TrainingJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[id]
}

type fakeDataSource struct {
	points []domain.DataPoint
	err    error
}

func (s *fakeDataSource) GetByIDs(context.Context, []uuid.UUID) ([]domain.DataPoint, error) {
	return s.points, s.err
}

func (s *fakeDataSource) ResolveQuery(context.Context, domain.DataQuery) ([]domain.DataPoint, error) {
	return s.points, s.err
}

type fakeVersionSource struct {
	versions map[uuid.UUID]*domain.ModelVersion
}

func (s *fakeVersionSource) GetVersion(_ context.Context, id uuid.UUID) (*domain.ModelVersion, error) {
	mv, ok := s.versions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *mv
	return &cp, nil
}

type fakeRegistry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*domain.RegistryEntry
	upserts int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{entries: make(map[uuid.UUID]*domain.RegistryEntry)}
}

func (r *fakeRegistry) GetModel(_ context.Context, modelID uuid.UUID) (*domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[modelID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *fakeRegistry) CreateOrUpdateModel(_ context.Context, entry *domain.RegistryEntry) (*domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.upserts++
	cp := *entry
	r.entries[entry.ModelID] = &cp
	return entry, nil
}

func (r *fakeRegistry) upsertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

// fakeRunner блокирует каждый Run до явного finish из теста.
type fakeRunner struct {
	mu      sync.Mutex
	order   []uuid.UUID
	release map[uuid.UUID]chan error
	startCh chan uuid.UUID
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		release: make(map[uuid.UUID]chan error),
		startCh: make(chan uuid.UUID, 16),
	}
}

func (r *fakeRunner) Run(ctx context.Context, jobID uuid.UUID) error {
	ch := make(chan error, 1)

	r.mu.Lock()
	r.order = append(r.order, jobID)
	r.release[jobID] = ch
	r.mu.Unlock()

	r.startCh <- jobID

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitStart блокируется до старта следующего job и возвращает его ID.
func (r *fakeRunner) waitStart(t *testing.T) uuid.UUID {
	t.Helper()
	select {
	case id := <-r.startCh:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("no job started within timeout")
		return uuid.Nil
	}
}

// assertNoStart проверяет, что ни один job не стартует за отведённое окно.
func (r *fakeRunner) assertNoStart(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case id := <-r.startCh:
		t.Fatalf("unexpected job start: %s", id)
	case <-time.After(window):
	}
}

// finish завершает выполняющийся Run с указанной ошибкой.
func (r *fakeRunner) finish(t *testing.T, jobID uuid.UUID, err error) {
	t.Helper()

	r.mu.Lock()
	ch, ok := r.release[jobID]
	r.mu.Unlock()
	if !ok {
		t.Fatalf("job %s was never started", jobID)
	}
	ch <- err
}

func pendingJob() *domain.TrainingJob {
	return &domain.TrainingJob{
		ID:           uuid.New(),
		ModelID:      uuid.New(),
		Status:       domain.JobStatusPending,
		DataPointIDs: []uuid.UUID{uuid.New()},
		CreatedBy:    "tester",
		CreatedAt:    time.Now(),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitForStatus поллит Status controller'а до выполнения условия.
func waitForStatus(t *testing.T, c *Controller, cond func(Status) bool) Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var st Status
	for time.Now().Before(deadline) {
		st = c.Status()
		if cond(st) {
			return st
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("status condition not reached, last: running=%d queued=%d", st.RunningCount, st.QueueLength)
	return st
}

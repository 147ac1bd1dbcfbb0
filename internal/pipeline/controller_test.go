package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
)

func newTestController(store *fakeJobStore, runner Runner, maxConcurrent int) *Controller {
	return NewController(Config{
		Jobs:              store,
		Runner:            runner,
		MaxConcurrentJobs: maxConcurrent,
		Logger:            testLogger(),
	})
}

func TestControllerAdmitsInFIFOOrder(t *testing.T) {
	j1, j2, j3 := pendingJob(), pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2, j3)
	runner := newFakeRunner()
	c := newTestController(store, runner, 1)

	ctx := context.Background()
	for _, job := range []*domain.TrainingJob{j1, j2, j3} {
		if err := c.Submit(ctx, job.ID); err != nil {
			t.Fatalf("submit %s: %v", job.ID, err)
		}
	}

	for i, want := range []uuid.UUID{j1.ID, j2.ID, j3.ID} {
		got := runner.waitStart(t)
		if got != want {
			t.Fatalf("start #%d: got %s, want %s", i+1, got, want)
		}
		runner.finish(t, got, nil)
	}

	waitForStatus(t, c, func(st Status) bool {
		return st.RunningCount == 0 && st.QueueLength == 0
	})
}

func TestControllerRespectsConcurrencyCeiling(t *testing.T) {
	j1, j2, j3, j4 := pendingJob(), pendingJob(), pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2, j3, j4)
	runner := newFakeRunner()
	c := newTestController(store, runner, 2)

	ctx := context.Background()
	for _, job := range []*domain.TrainingJob{j1, j2, j3, j4} {
		if err := c.Submit(ctx, job.ID); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	runner.waitStart(t)
	runner.waitStart(t)

	st := waitForStatus(t, c, func(st Status) bool {
		return st.RunningCount == 2 && st.QueueLength == 2
	})
	if st.Queue[0] != j3.ID || st.Queue[1] != j4.ID {
		t.Errorf("queued jobs: got %v, want [%s %s]", st.Queue, j3.ID, j4.ID)
	}

	// Очередь не двигается, пока заняты оба слота.
	runner.assertNoStart(t, 50*time.Millisecond)

	runner.finish(t, j1.ID, nil)
	if got := runner.waitStart(t); got != j3.ID {
		t.Fatalf("after slot freed: got %s, want %s", got, j3.ID)
	}
	waitForStatus(t, c, func(st Status) bool {
		return st.RunningCount == 2 && st.QueueLength == 1
	})

	runner.finish(t, j2.ID, nil)
	runner.finish(t, j3.ID, nil)
	runner.waitStart(t)
	runner.finish(t, j4.ID, nil)
	waitForStatus(t, c, func(st Status) bool {
		return st.RunningCount == 0 && st.QueueLength == 0
	})
}

func TestControllerDrainsQueueOnFailure(t *testing.T) {
	j1, j2 := pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2)
	runner := newFakeRunner()
	c := newTestController(store, runner, 1)

	ctx := context.Background()
	if err := c.Submit(ctx, j1.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.Submit(ctx, j2.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	runner.waitStart(t)
	runner.finish(t, j1.ID, errors.New("training blew up"))

	// Провал одного job не блокирует очередь.
	if got := runner.waitStart(t); got != j2.ID {
		t.Fatalf("next start: got %s, want %s", got, j2.ID)
	}
	runner.finish(t, j2.ID, nil)
}

func TestControllerSubmitRejectsNonPending(t *testing.T) {
	job := pendingJob()
	job.Status = domain.JobStatusCompleted
	store := newFakeJobStore(job)
	c := newTestController(store, newFakeRunner(), 1)

	err := c.Submit(context.Background(), job.ID)
	if !errors.Is(err, ErrJobNotPending) {
		t.Fatalf("got %v, want ErrJobNotPending", err)
	}
}

func TestControllerSubmitRejectsUnknownJob(t *testing.T) {
	c := newTestController(newFakeJobStore(), newFakeRunner(), 1)

	err := c.Submit(context.Background(), uuid.New())
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("got %v, want ErrJobNotFound", err)
	}
}

func TestControllerSubmitRejectsDuplicate(t *testing.T) {
	j1, j2 := pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2)
	runner := newFakeRunner()
	c := newTestController(store, runner, 1)

	ctx := context.Background()
	if err := c.Submit(ctx, j1.ID); err != nil {
		t.Fatalf("submit running: %v", err)
	}
	runner.waitStart(t)
	if err := c.Submit(ctx, j2.ID); err != nil {
		t.Fatalf("submit queued: %v", err)
	}

	// Дубликаты: и выполняющийся, и стоящий в очереди.
	if err := c.Submit(ctx, j1.ID); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("resubmit running: got %v, want ErrAlreadyQueued", err)
	}
	if err := c.Submit(ctx, j2.ID); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("resubmit queued: got %v, want ErrAlreadyQueued", err)
	}

	runner.finish(t, j1.ID, nil)
	runner.waitStart(t)
	runner.finish(t, j2.ID, nil)
}

func TestControllerCancelQueuedJob(t *testing.T) {
	j1, j2 := pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2)
	runner := newFakeRunner()
	c := newTestController(store, runner, 1)

	ctx := context.Background()
	if err := c.Submit(ctx, j1.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	runner.waitStart(t)
	if err := c.Submit(ctx, j2.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := c.Cancel(ctx, j2.ID); err != nil {
		t.Fatalf("cancel queued: %v", err)
	}

	st := c.Status()
	if st.QueueLength != 0 {
		t.Errorf("queue length: got %d, want 0", st.QueueLength)
	}
	// Запись остаётся PENDING: job можно пересабмитить позже.
	if got := store.status(j2.ID); got != domain.JobStatusPending {
		t.Errorf("cancelled queued job status: got %s, want PENDING", got)
	}

	runner.finish(t, j1.ID, nil)
}

func TestControllerCancelRunningJob(t *testing.T) {
	j1, j2 := pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2)
	runner := newFakeRunner()
	c := newTestController(store, runner, 1)

	ctx := context.Background()
	if err := c.Submit(ctx, j1.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	runner.waitStart(t)
	if err := c.Submit(ctx, j2.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := c.Cancel(ctx, j1.ID); err != nil {
		t.Fatalf("cancel running: %v", err)
	}
	if got := store.status(j1.ID); got != domain.JobStatusCancelled {
		t.Errorf("cancelled job status: got %s, want CANCELLED", got)
	}

	// Отмена слот не освобождает: следующий job стартует только
	// после завершения горутины отменённого.
	runner.assertNoStart(t, 50*time.Millisecond)

	runner.finish(t, j1.ID, ErrJobCancelled)
	if got := runner.waitStart(t); got != j2.ID {
		t.Fatalf("next start: got %s, want %s", got, j2.ID)
	}
	runner.finish(t, j2.ID, nil)
}

func TestControllerCancelIsIdempotent(t *testing.T) {
	c := newTestController(newFakeJobStore(), newFakeRunner(), 1)

	if err := c.Cancel(context.Background(), uuid.New()); err != nil {
		t.Fatalf("cancel unknown job: %v", err)
	}
}

func TestControllerDoubleCancelKeepsQueuedJobPending(t *testing.T) {
	j1, j2 := pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2)
	runner := newFakeRunner()
	c := newTestController(store, runner, 1)

	ctx := context.Background()
	if err := c.Submit(ctx, j1.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	runner.waitStart(t)
	if err := c.Submit(ctx, j2.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Повторная отмена уже выброшенного из очереди job'а — no-op:
	// запись не должна перейти в CANCELLED.
	if err := c.Cancel(ctx, j2.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := c.Cancel(ctx, j2.ID); err != nil {
		t.Fatalf("second cancel: %v", err)
	}

	if got := store.status(j2.ID); got != domain.JobStatusPending {
		t.Errorf("after second cancel: got %s, want PENDING", got)
	}

	// Job по-прежнему можно пересабмитить.
	if err := c.Submit(ctx, j2.ID); err != nil {
		t.Fatalf("resubmit after cancel: %v", err)
	}

	runner.finish(t, j1.ID, nil)
	runner.waitStart(t)
	runner.finish(t, j2.ID, nil)
}

func TestControllerSubmitAfterStop(t *testing.T) {
	job := pendingJob()
	store := newFakeJobStore(job)
	c := newTestController(store, newFakeRunner(), 1)

	c.Stop()

	err := c.Submit(context.Background(), job.ID)
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("got %v, want ErrStopped", err)
	}
}

func TestControllerStatusSnapshot(t *testing.T) {
	j1, j2, j3 := pendingJob(), pendingJob(), pendingJob()
	store := newFakeJobStore(j1, j2, j3)
	runner := newFakeRunner()
	c := newTestController(store, runner, 2)

	ctx := context.Background()
	for _, job := range []*domain.TrainingJob{j1, j2, j3} {
		if err := c.Submit(ctx, job.ID); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	runner.waitStart(t)
	runner.waitStart(t)

	st := waitForStatus(t, c, func(st Status) bool {
		return st.RunningCount == 2 && st.QueueLength == 1
	})
	if st.MaxConcurrent != 2 {
		t.Errorf("max concurrent: got %d, want 2", st.MaxConcurrent)
	}
	if len(st.Running) != 2 || len(st.Queue) != 1 {
		t.Errorf("snapshot slices: running=%d queue=%d", len(st.Running), len(st.Queue))
	}

	runner.finish(t, j1.ID, nil)
	runner.finish(t, j2.ID, nil)
	runner.waitStart(t)
	runner.finish(t, j3.ID, nil)
}

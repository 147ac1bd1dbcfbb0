package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Modelka/internal/domain"
)

func newTestMonitor(store *fakeJobStore, maxWait time.Duration) *Monitor {
	return NewMonitor(store, nil, time.Millisecond, maxWait, testLogger())
}

func TestMonitorReturnsOnTerminalStatus(t *testing.T) {
	job := pendingJob()
	store := newFakeJobStore(job)
	m := newTestMonitor(store, time.Second)

	ctx := context.Background()
	if _, err := store.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	versionID := uuid.New()
	go func() {
		time.Sleep(10 * time.Millisecond)
		store.complete(job.ID, map[string]float64{MetricAccuracy: 0.9}, &versionID)
	}()

	final, err := m.Wait(ctx, job.ID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if final.Status != domain.JobStatusCompleted {
		t.Errorf("status: got %s, want COMPLETED", final.Status)
	}
	if final.ResultVersionID == nil || *final.ResultVersionID != versionID {
		t.Errorf("result version: got %v, want %s", final.ResultVersionID, versionID)
	}
}

func TestMonitorObservesCancellation(t *testing.T) {
	job := pendingJob()
	store := newFakeJobStore(job)
	m := newTestMonitor(store, time.Second)

	ctx := context.Background()
	if _, err := store.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		store.Cancel(ctx, job.ID)
	}()

	final, err := m.Wait(ctx, job.ID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if final.Status != domain.JobStatusCancelled {
		t.Errorf("status: got %s, want CANCELLED", final.Status)
	}
}

func TestMonitorTimesOut(t *testing.T) {
	job := pendingJob()
	store := newFakeJobStore(job)
	m := newTestMonitor(store, 30*time.Millisecond)

	ctx := context.Background()
	if _, err := store.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// External executor молчит: job навсегда в RUNNING.
	_, err := m.Wait(ctx, job.ID)
	if !errors.Is(err, ErrMonitoringTimeout) {
		t.Fatalf("got %v, want ErrMonitoringTimeout", err)
	}
}

func TestMonitorReportsMissingJob(t *testing.T) {
	store := newFakeJobStore()
	m := newTestMonitor(store, time.Second)

	_, err := m.Wait(context.Background(), uuid.New())
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("got %v, want ErrJobNotFound", err)
	}
}

func TestMonitorHonorsContextCancellation(t *testing.T) {
	job := pendingJob()
	store := newFakeJobStore(job)
	m := newTestMonitor(store, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := store.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := m.Wait(ctx, job.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

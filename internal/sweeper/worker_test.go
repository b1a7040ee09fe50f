package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"quill/internal/service"
)

type stubSweeper struct {
	calls  atomic.Int64
	minAge atomic.Int64
	err    error
}

func (s *stubSweeper) SweepOrphans(_ context.Context, opts service.SweepOptions) (service.SweepResult, error) {
	s.calls.Add(1)
	s.minAge.Store(int64(opts.MinAge))
	return service.SweepResult{}, s.err
}

func TestWorker_RunOnceWhenNoInterval(t *testing.T) {
	t.Parallel()

	sw := &stubSweeper{}
	worker := NewWorker(sw, Config{Enabled: true, MinAge: time.Minute}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	worker.Run(ctx)

	if sw.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", sw.calls.Load())
	}
	if time.Duration(sw.minAge.Load()) != time.Minute {
		t.Fatalf("min age = %s, want 1m", time.Duration(sw.minAge.Load()))
	}
}

func TestWorker_RunRepeatedlyWithInterval(t *testing.T) {
	t.Parallel()

	sw := &stubSweeper{}
	worker := NewWorker(sw, Config{Enabled: true, Interval: 15 * time.Millisecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	worker.Run(ctx)

	if sw.calls.Load() < 2 {
		t.Fatalf("calls = %d, want >= 2", sw.calls.Load())
	}
}

func TestWorker_DisabledNeverSweeps(t *testing.T) {
	t.Parallel()

	sw := &stubSweeper{}
	worker := NewWorker(sw, Config{Enabled: false, Interval: time.Millisecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	worker.Run(ctx)

	if sw.calls.Load() != 0 {
		t.Fatalf("calls = %d, want 0", sw.calls.Load())
	}
}

func TestWorker_StartupDelayRespectsCancel(t *testing.T) {
	t.Parallel()

	sw := &stubSweeper{}
	worker := NewWorker(sw, Config{Enabled: true, StartupDelay: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	worker.Run(ctx)

	if sw.calls.Load() != 0 {
		t.Fatalf("calls = %d, want 0", sw.calls.Load())
	}
}

func TestWorker_TriggerRunsExtraPass(t *testing.T) {
	t.Parallel()

	sw := &stubSweeper{err: errors.New("list failed")}
	worker := NewWorker(sw, Config{Enabled: true}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for sw.calls.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	worker.Trigger()
	for sw.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if sw.calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", sw.calls.Load())
	}
}

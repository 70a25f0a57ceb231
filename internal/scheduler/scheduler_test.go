package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStartupJobsRunImmediately(t *testing.T) {
	s := New(zap.NewNop(), nil)

	var runs atomic.Int32
	job := NewJob("startup", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	// A spec far in the future so only the startup run can fire.
	if err := s.Add("0 0 1 1 *", job, true); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return runs.Load() == 1 })
}

func TestJobWithoutStartRunWaitsForTick(t *testing.T) {
	s := New(zap.NewNop(), nil)

	var runs atomic.Int32
	job := NewJob("yearly", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	if err := s.Add("0 0 1 1 *", job, false); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("job ran %d times before its tick", runs.Load())
	}
}

func TestFailingJobDoesNotBlockOthers(t *testing.T) {
	s := New(zap.NewNop(), nil)

	var healthy atomic.Int32
	if err := s.Add("0 0 1 1 *", NewJob("broken", func(context.Context) error {
		return errors.New("boom")
	}), true); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("0 0 1 1 *", NewJob("healthy", func(context.Context) error {
		healthy.Add(1)
		return nil
	}), true); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return healthy.Load() == 1 })
}

func TestPanickingJobIsRecovered(t *testing.T) {
	s := New(zap.NewNop(), nil)

	var after atomic.Int32
	if err := s.Add("@every 10ms", NewJob("panicky", func(context.Context) error {
		if after.Add(1) == 1 {
			panic("boom")
		}
		return nil
	}), false); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	// The chain must recover the first run and keep scheduling later ones.
	waitFor(t, 2*time.Second, func() bool { return after.Load() >= 2 })
}

func TestCanceledContextSkipsRuns(t *testing.T) {
	s := New(zap.NewNop(), nil)

	var runs atomic.Int32
	if err := s.Add("0 0 1 1 *", NewJob("skipped", func(context.Context) error {
		runs.Add(1)
		return nil
	}), true); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("job ran %d times under a canceled context", runs.Load())
	}
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(zap.NewNop(), nil)
	if err := s.Add("not a spec", NewJob("x", func(context.Context) error { return nil }), false); err == nil {
		t.Fatal("expected error for malformed spec")
	}
}

func TestNewJobName(t *testing.T) {
	job := NewJob("price_sweep", func(context.Context) error { return nil })
	if job.Name() != "price_sweep" {
		t.Fatalf("Name() = %q", job.Name())
	}
}

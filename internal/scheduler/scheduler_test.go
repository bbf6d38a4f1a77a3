package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_RejectsBadJobs(t *testing.T) {
	if _, err := New(Job{Name: "bad", Interval: 0, Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatalf("expected error for non-positive interval")
	}
	if _, err := New(Job{Name: "bad", Interval: time.Minute}); err == nil {
		t.Fatalf("expected error for nil Run")
	}
}

func TestStart_RunAtStartExecutesOnce(t *testing.T) {
	var runs atomic.Int32
	s, err := New(Job{
		Name:       "startup",
		Interval:   time.Hour, // ticker never fires during this test
		RunAtStart: true,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Start()
	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("startup run never executed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected exactly one startup run, got %d", got)
	}
}

func TestTicker_FiresRepeatedly(t *testing.T) {
	var runs atomic.Int32
	s, err := New(Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Start()
	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least two ticks, got %d", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestExecute_ToleratesSkipAndFailure(t *testing.T) {
	// Neither outcome may panic or abort the loop.
	s, err := New(
		Job{Name: "skips", Interval: time.Hour, RunAtStart: true, Run: func(context.Context) error {
			return ErrSkipped
		}},
		Job{Name: "fails", Interval: time.Hour, RunAtStart: true, Run: func(context.Context) error {
			return errors.New("boom")
		}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStop_BeforeStartIsNoop(t *testing.T) {
	s, err := New(Job{Name: "idle", Interval: time.Minute, Run: func(context.Context) error { return nil }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop before Start should be nil, got %v", err)
	}
}

func TestStop_TimesOutOnStuckJob(t *testing.T) {
	block := make(chan struct{})
	s, err := New(Job{
		Name:       "stuck",
		Interval:   time.Hour,
		RunAtStart: true,
		Run: func(context.Context) error {
			<-block
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	time.Sleep(20 * time.Millisecond) // let the startup run begin

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	close(block)
}

func TestStart_Twice_IsNoop(t *testing.T) {
	var runs atomic.Int32
	s, err := New(Job{
		Name:       "once",
		Interval:   time.Hour,
		RunAtStart: true,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	s.Start()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("startup run never executed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("double Start must not double the startup run, got %d", got)
	}
}

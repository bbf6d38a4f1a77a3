// Package scheduler runs background jobs on fixed intervals. It replaces the
// ad hoc module-level scheduler singleton of earlier prototypes with an
// instance that the application constructs, starts, and stops explicitly, so
// tests can run isolated instances side by side.
//
// Guarantees per job:
//   - One goroutine, one ticker: at most one tick is pending at a time, so a
//     process that was paused across several intervals catches up with a
//     single run, not one per missed tick.
//   - A tick arriving while the job still runs is consumed by the same
//     goroutine only after the run returns; jobs whose work must not overlap
//     (the reconciler) additionally gate themselves and report ErrSkipped.
//   - An optional startup run executes once before the first tick.
//
// No mid-run cancellation is imposed: Stop waits for in-flight runs to finish
// (bounded by the caller's context) rather than interrupting them.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrSkipped signals that a job declined to run because a previous execution
// is still in flight. The scheduler logs it quietly instead of as a failure.
var ErrSkipped = errors.New("run skipped")

// Job is one periodically executed task.
type Job struct {
	// Name identifies the job in logs.
	Name string
	// Interval between runs. Must be positive.
	Interval time.Duration
	// RunAtStart executes the job once immediately when the scheduler starts,
	// independent of the interval timer.
	RunAtStart bool
	// Run performs the work. Returning ErrSkipped (possibly wrapped) marks
	// the tick as coalesced away; any other error is logged as a failure.
	Run func(ctx context.Context) error
}

// Scheduler owns a set of interval jobs and their goroutines.
type Scheduler struct {
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// New constructs a Scheduler for the given jobs. Jobs with a non-positive
// interval are rejected.
func New(jobs ...Job) (*Scheduler, error) {
	for _, j := range jobs {
		if j.Interval <= 0 {
			return nil, errors.New("scheduler: job " + j.Name + " has non-positive interval")
		}
		if j.Run == nil {
			return nil, errors.New("scheduler: job " + j.Name + " has no Run func")
		}
	}
	return &Scheduler{jobs: jobs}, nil
}

// Start launches one goroutine per job. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go func(j Job) {
			defer s.wg.Done()
			s.runLoop(ctx, j)
		}(job)
	}
}

// Stop cancels all job loops and waits for in-flight runs to finish, bounded
// by ctx. It returns ctx.Err() if the wait is cut short.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runLoop(ctx context.Context, j Job) {
	log.Info().
		Str("job", j.Name).
		Dur("interval", j.Interval).
		Bool("run_at_start", j.RunAtStart).
		Msg("scheduler job started")

	if j.RunAtStart {
		s.execute(ctx, j)
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("job", j.Name).Msg("scheduler job stopped")
			return
		case <-ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j Job) {
	start := time.Now()
	err := j.Run(ctx)
	switch {
	case err == nil:
		log.Debug().Str("job", j.Name).Dur("took", time.Since(start)).Msg("job run finished")
	case errors.Is(err, ErrSkipped):
		log.Debug().Str("job", j.Name).Msg("job tick skipped, previous run still in flight")
	default:
		log.Error().Err(err).Str("job", j.Name).Msg("job run failed")
	}
}

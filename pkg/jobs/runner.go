package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job represents a background task submitted to the runner.
type Job struct {
	ID       string
	Type     string
	Enqueued time.Time
	Run      func(context.Context)
}

// Runner executes background jobs one at a time. Solve jobs must never
// overlap each other or editor writes, so concurrent submissions are refused
// instead of queued.
type Runner struct {
	logger *zap.Logger

	mu      sync.Mutex
	current *Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewRunner builds a runner.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Start prepares the runner for submissions. Safe to call once.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.started = true
	r.logger.Sugar().Infow("job runner started")
}

// Stop cancels the active job and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.started = false
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("job runner stopped")
}

// Submit starts the job on the background goroutine. It fails when the runner
// is stopped or another job is still in flight.
func (r *Runner) Submit(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return fmt.Errorf("job runner not started")
	}
	if r.current != nil {
		return fmt.Errorf("job %s (%s) still running", r.current.ID, r.current.Type)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	r.current = &job
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.current = nil
			r.mu.Unlock()
		}()
		r.logger.Sugar().Infow("job started", "job_id", job.ID, "type", job.Type)
		job.Run(r.ctx)
		r.logger.Sugar().Infow("job finished", "job_id", job.ID, "type", job.Type)
	}()
	return nil
}

// Busy reports whether a job is currently in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}
